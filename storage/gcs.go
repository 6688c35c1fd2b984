package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/ruteri/spl-token-provisioner/interfaces"
)

const gcsPublicHost = "https://storage.googleapis.com"

// GCSBackend implements a storage backend using Google Cloud Storage.
// The bucket is expected to grant public read access; objects are referenced
// through their storage.googleapis.com URL.
type GCSBackend struct {
	client      *gcs.Client
	bucketName  string
	prefix      string
	log         *slog.Logger
	locationURI string
}

// NewGCSBackend creates a GCS backend authenticated with application default credentials.
func NewGCSBackend(ctx context.Context, bucketName, prefix string, log *slog.Logger) (*GCSBackend, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	prefix = strings.Trim(prefix, "/")

	return &GCSBackend{
		client:      client,
		bucketName:  bucketName,
		prefix:      prefix,
		log:         log,
		locationURI: fmt.Sprintf("gs://%s/%s", bucketName, prefix),
	}, nil
}

// Store writes data to the bucket and returns its content identifier and public URL.
func (b *GCSBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.StoredContent, error) {
	start := time.Now()
	id := interfaces.ComputeID(data)
	mime := mimeType(data, contentType)
	key := b.objectKey(id, mime)

	w := b.client.Bucket(b.bucketName).Object(key).NewWriter(ctx)
	w.ContentType = mime
	w.CacheControl = "public, max-age=31536000, immutable"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return interfaces.StoredContent{ID: id}, fmt.Errorf("failed to write object to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		b.log.Error("Failed to upload object to GCS",
			slog.String("bucket", b.bucketName),
			slog.String("key", key),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return interfaces.StoredContent{ID: id}, fmt.Errorf("failed to upload object to GCS: %w", err)
	}

	b.log.Debug("Stored content in GCS",
		slog.String("bucket", b.bucketName),
		slog.String("key", key),
		slog.String("contentID", id.String()),
		slog.Duration("duration", time.Since(start)))

	return interfaces.StoredContent{ID: id, URI: b.objectURL(key)}, nil
}

func (b *GCSBackend) objectKey(id interfaces.ContentID, mime string) string {
	name := objectName(id, mime)
	if b.prefix == "" {
		return name
	}
	return path.Join(b.prefix, name)
}

func (b *GCSBackend) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", gcsPublicHost, b.bucketName, key)
}

// Available checks the bucket can be read.
func (b *GCSBackend) Available(ctx context.Context) bool {
	if _, err := b.client.Bucket(b.bucketName).Attrs(ctx); err != nil {
		b.log.Warn("GCS backend unavailable",
			slog.String("bucket", b.bucketName),
			"err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *GCSBackend) Name() string {
	return fmt.Sprintf("gcs-%s", b.bucketName)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *GCSBackend) LocationURI() string {
	return b.locationURI
}
