package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ruteri/spl-token-provisioner/interfaces"
)

// FileBackend implements a storage backend using the local file system.
// Content is stored in a directory structure organized by content type.
// Intended for development: the returned file:// URIs are not reachable by wallets.
type FileBackend struct {
	baseDir     string
	prefixes    map[interfaces.ContentType]string
	log         *slog.Logger
	locationURI string
}

// NewFileBackend creates a new file storage backend using the specified base directory.
// It creates subdirectories for different content types if they don't exist.
func NewFileBackend(baseDir string, log *slog.Logger) (*FileBackend, error) {
	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	prefixes := map[interfaces.ContentType]string{
		interfaces.AssetType:    "assets",
		interfaces.MetadataType: "metadata",
	}

	for _, subdir := range prefixes {
		if err := os.MkdirAll(filepath.Join(absDir, subdir), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
		}
	}

	return &FileBackend{
		baseDir:     absDir,
		prefixes:    prefixes,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", absDir),
	}, nil
}

// Store saves data to the file system and returns its content identifier and file URI.
func (b *FileBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.StoredContent, error) {
	id := interfaces.ComputeID(data)
	filePath := b.getFilePath(id, contentType, mimeType(data, contentType))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return interfaces.StoredContent{ID: id}, fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return interfaces.StoredContent{ID: id}, fmt.Errorf("failed to write file: %w", err)
	}

	b.log.Debug("Stored content in file",
		slog.String("path", filePath),
		slog.String("contentID", id.String()))

	return interfaces.StoredContent{ID: id, URI: "file://" + filePath}, nil
}

// Available checks if the file backend is accessible by verifying the base directory exists.
func (b *FileBackend) Available(ctx context.Context) bool {
	_, err := os.Stat(b.baseDir)
	if err != nil {
		b.log.Debug("File backend unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *FileBackend) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.baseDir))
}

// LocationURI returns the URI that identifies this storage backend.
func (b *FileBackend) LocationURI() string {
	return b.locationURI
}

// getFilePath generates a file path for a content ID and type.
func (b *FileBackend) getFilePath(id interfaces.ContentID, contentType interfaces.ContentType, mime string) string {
	return filepath.Join(b.baseDir, b.prefixes[contentType], objectName(id, mime))
}
