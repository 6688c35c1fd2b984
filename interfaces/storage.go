package interfaces

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ContentID is a 32-byte SHA-256 hash uniquely identifying uploaded content.
type ContentID [32]byte

// ComputeID calculates content ID from data.
func ComputeID(data []byte) ContentID {
	hash := sha256.Sum256(data)
	return ContentID(hash)
}

// String returns hex representation.
func (id ContentID) String() string {
	return hex.EncodeToString(id[:])
}

// Equal compares two content IDs.
func (id ContentID) Equal(other ContentID) bool {
	return bytes.Equal(id[:], other[:])
}

// ContentType indicates what is being uploaded.
type ContentType int

const (
	// AssetType for binary assets such as the token image
	AssetType ContentType = iota
	// MetadataType for the off-chain JSON metadata document
	MetadataType
)

// String returns type name.
func (ct ContentType) String() string {
	switch ct {
	case AssetType:
		return "asset"
	case MetadataType:
		return "metadata"
	default:
		return "unknown"
	}
}

// StoredContent is the result of a successful upload.
type StoredContent struct {
	// ID is the SHA-256 of the uploaded bytes.
	ID ContentID
	// URI is the stable public reference written into token metadata.
	URI string
}

// StorageBackendLocation is a URI selecting and configuring a storage backend.
type StorageBackendLocation string

// Supported storage schemes.
var storageSchemes = []string{"file", "s3", "ipfs", "gs"}

// NewStorageBackendLocation validates a storage URI.
func NewStorageBackendLocation(uri string) (StorageBackendLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	for _, scheme := range storageSchemes {
		if strings.EqualFold(parsed.Scheme, scheme) {
			return StorageBackendLocation(uri), nil
		}
	}

	return "", fmt.Errorf("%w: unsupported storage scheme %q", ErrInvalidLocationURI, parsed.Scheme)
}

// String returns the original URI string.
func (loc StorageBackendLocation) String() string {
	return string(loc)
}

var (
	// ErrBackendUnavailable is returned when a storage backend is not accessible.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned when a storage location URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// StorageBackend uploads content and returns stable public URIs for it.
type StorageBackend interface {
	// Store uploads data and returns its content ID and public URI.
	Store(ctx context.Context, data []byte, contentType ContentType) (StoredContent, error)

	// Available checks if backend is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this backend.
	LocationURI() string
}

// StorageBackendFactory creates storage backends.
type StorageBackendFactory interface {
	// StorageBackendFor creates backend from URI.
	// Supports file://, s3://, ipfs://, gs://
	StorageBackendFor(locationURI StorageBackendLocation) (StorageBackend, error)

	// CreateMultiBackend creates aggregated storage backend.
	CreateMultiBackend(locationURIs []StorageBackendLocation) (StorageBackend, error)
}
