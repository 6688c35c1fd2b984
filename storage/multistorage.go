package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/spl-token-provisioner/interfaces"
)

// MultiStorageBackend implements interfaces.StorageBackend by uploading to several
// backends for redundancy. The first successful upload provides the returned URI.
type MultiStorageBackend struct {
	backends []interfaces.StorageBackend
	log      *slog.Logger
}

// NewMultiStorageBackend creates a new multi-storage backend.
func NewMultiStorageBackend(backends []interfaces.StorageBackend, logger *slog.Logger) *MultiStorageBackend {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiStorageBackend{
		backends: backends,
		log:      logger,
	}
}

// Store saves data to all available backends.
func (m *MultiStorageBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.StoredContent, error) {
	start := time.Now()
	var result interfaces.StoredContent
	var success bool
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable", slog.String("backend_name", backend.Name()))
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), interfaces.ErrBackendUnavailable))
			continue
		}

		stored, err := backend.Store(ctx, data, contentType)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			m.log.Debug("Failed to store to backend",
				slog.String("backend_name", backend.Name()),
				"err", err)
			continue
		}

		if !success {
			result = stored
			success = true
			m.log.Info("Successfully stored content",
				slog.String("backend_name", backend.Name()),
				slog.String("content_id", stored.ID.String()),
				slog.String("uri", stored.URI),
				slog.Duration("duration", time.Since(start)))
		} else if !result.ID.Equal(stored.ID) {
			// same data must hash the same everywhere
			m.log.Warn("Inconsistent hashes from backends",
				slog.String("backend_name", backend.Name()),
				slog.String("expected_id", result.ID.String()),
				slog.String("actual_id", stored.ID.String()))
		}
	}

	if !success {
		m.log.Error("All backends failed to store data",
			slog.Int("failed_backends", len(errs)),
			slog.Duration("duration", time.Since(start)))
		return interfaces.StoredContent{}, fmt.Errorf("all backends failed to store data: %w", errors.Join(errs...))
	}

	return result, nil
}

// Available checks if any backend is available.
func (m *MultiStorageBackend) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns the name of this backend.
func (m *MultiStorageBackend) Name() string {
	return "multi-storage"
}

// LocationURI returns a combined location URI of all backends.
func (m *MultiStorageBackend) LocationURI() string {
	var locations []string
	for _, backend := range m.backends {
		locations = append(locations, backend.LocationURI())
	}

	return "multi:[" + strings.Join(locations, ",") + "]"
}
