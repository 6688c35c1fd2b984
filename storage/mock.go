package storage

import (
	"context"

	"github.com/ruteri/spl-token-provisioner/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockStorageBackend mocks the StorageBackend interface
type MockStorageBackend struct {
	mock.Mock
	BackendName string
}

// Store mocks the Store method
func (m *MockStorageBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.StoredContent, error) {
	args := m.Called(ctx, data, contentType)
	return args.Get(0).(interfaces.StoredContent), args.Error(1)
}

// Available mocks the Available method
func (m *MockStorageBackend) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// Name returns the configured backend name
func (m *MockStorageBackend) Name() string {
	return m.BackendName
}

// LocationURI returns a fixed mock URI
func (m *MockStorageBackend) LocationURI() string {
	return "mock:" + m.BackendName
}
