package identity

import (
	"context"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/mock"
)

// MockProvider mocks the IdentityProvider interface
type MockProvider struct {
	mock.Mock
}

// Resolve mocks the Resolve method
func (m *MockProvider) Resolve(ctx context.Context) (types.Account, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.Account), args.Error(1)
}

// Name returns a fixed mock name
func (m *MockProvider) Name() string {
	return "mock"
}
