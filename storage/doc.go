// Package storage uploads token assets and metadata documents to pluggable backends.
//
// Every upload is content addressed: the object name is the hex SHA-256 of the
// bytes plus an extension derived from the MIME type. Backends return a stable
// public URI that is written into the token metadata.
//
// # Storage URI Format
//
// Backends are selected with URIs:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//
//   - file:///var/lib/tokens/
//   - ipfs://127.0.0.1:5001/?gateway=https://ipfs.io&timeout=30s
//   - s3://bucket-name/prefix/?region=us-west-2
//   - gs://bucket-name/prefix/
//
// # Fallback
//
// MultiStorageBackend tries its backends in order and returns the first
// successful upload. Unavailable backends are skipped.
package storage
