package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ruteri/spl-token-provisioner/interfaces"
)

// StorageBackendFactory creates storage backends from URI strings and manages
// multi-backend configurations for redundant uploads.
type StorageBackendFactory struct {
	log *slog.Logger
}

var _ interfaces.StorageBackendFactory = (*StorageBackendFactory)(nil)

// NewStorageBackendFactory creates a new factory instance that can create storage backends.
func NewStorageBackendFactory(logger *slog.Logger) *StorageBackendFactory {
	return &StorageBackendFactory{
		log: logger,
	}
}

// StorageBackendFor creates a storage backend from a location URI.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - file:// - Local filesystem storage
//   - s3:// - Amazon S3 or compatible object storage
//   - ipfs:// - IPFS distributed storage
//   - gs:// - Google Cloud Storage
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (sf *StorageBackendFactory) StorageBackendFor(locationURI interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	u, err := url.Parse(string(locationURI))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "ipfs":
		return sf.createIPFSBackend(u)
	case "s3":
		return sf.createS3Backend(u)
	case "gs":
		return sf.createGCSBackend(u)
	case "file":
		return sf.createFileBackend(u)
	default:
		return nil, fmt.Errorf("%w: unsupported backend scheme: %s", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// CreateMultiBackend creates a multi-storage backend from a list of location URIs.
// Content is stored to every available backend and the first successful upload
// determines the returned URI.
// Returns an error if no valid backends could be created from the provided URIs.
func (sf *StorageBackendFactory) CreateMultiBackend(locationURIs []interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	backends := make([]interfaces.StorageBackend, 0, len(locationURIs))

	for _, uri := range locationURIs {
		backend, err := sf.StorageBackendFor(uri)
		if err != nil {
			sf.log.Warn("Failed to create storage backend",
				"err", err,
				slog.String("locationURI", redactLocation(string(uri))))
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no valid storage backends created")
	}

	if len(backends) == 1 {
		return backends[0], nil
	}

	return NewMultiStorageBackend(backends, sf.log), nil
}

// createIPFSBackend creates an IPFS storage backend.
// URI format: ipfs://host:port/?gateway=https://ipfs.io&timeout=30s
// Without a gateway the returned content URIs use the ipfs:// scheme.
func (sf *StorageBackendFactory) createIPFSBackend(u *url.URL) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating IPFS backend", slog.String("uri", u.String()))

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing IPFS API host", interfaces.ErrInvalidLocationURI)
	}
	port := u.Port()
	if port == "" {
		port = "5001" // Default IPFS API port
	}

	query := u.Query()
	gateway := query.Get("gateway")

	timeout := query.Get("timeout")
	if timeout == "" {
		timeout = "30s"
	}

	return NewIPFSBackend(host, port, gateway, timeout, sf.log)
}

// createS3Backend creates an S3 or S3-compatible storage backend.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/path/?region=us-west-2&endpoint=custom.s3.com
// Credentials missing from the URI are taken from the AWS default chain.
func (sf *StorageBackendFactory) createS3Backend(u *url.URL) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating S3 backend", slog.String("uri", redactLocation(u.String())))

	bucketName := u.Host
	if bucketName == "" {
		return nil, fmt.Errorf("%w: missing S3 bucket", interfaces.ErrInvalidLocationURI)
	}

	path := strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1"
	}

	endpoint := query.Get("endpoint")

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
		sf.log.Debug("Using embedded S3 credentials")
	}

	return NewS3Backend(bucketName, path, region, endpoint, accessKey, secretKey, sf.log)
}

// createGCSBackend creates a Google Cloud Storage backend using application default credentials.
// URI format: gs://bucket-name/prefix/
func (sf *StorageBackendFactory) createGCSBackend(u *url.URL) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating GCS backend", slog.String("uri", u.String()))

	bucketName := u.Host
	if bucketName == "" {
		return nil, fmt.Errorf("%w: missing GCS bucket", interfaces.ErrInvalidLocationURI)
	}

	return NewGCSBackend(context.Background(), bucketName, strings.TrimPrefix(u.Path, "/"), sf.log)
}

// createFileBackend creates a file system storage backend.
// URI format: file:///absolute/path/ or file://./relative/path/
func (sf *StorageBackendFactory) createFileBackend(u *url.URL) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating file backend", slog.String("uri", u.String()))

	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI: %s", interfaces.ErrInvalidLocationURI, u.String())
	}

	return NewFileBackend(path, sf.log)
}

// redactLocation hides the password part of a location URI.
func redactLocation(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	return u.Redacted()
}
