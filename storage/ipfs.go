package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/ruteri/spl-token-provisioner/interfaces"
)

type ipfsAddResponse struct {
	Hash string
}

type ipfsVersionResponse struct {
	Version string
}

// IPFSBackend implements a storage backend using the InterPlanetary File System (IPFS).
// Content is added and pinned through the node's HTTP API. Returned URIs point at
// the configured public gateway, or use the ipfs:// scheme when none is set.
type IPFSBackend struct {
	shell       *shell.Shell
	host        string
	port        string
	gateway     string
	timeout     time.Duration
	log         *slog.Logger
	locationURI string
}

// NewIPFSBackend creates a new IPFS storage backend connected to the specified host and port.
func NewIPFSBackend(host, port, gateway string, timeout string, log *slog.Logger) (*IPFSBackend, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	requestTimeout, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid IPFS timeout %q: %v", interfaces.ErrInvalidLocationURI, timeout, err)
	}

	gateway = strings.TrimSuffix(gateway, "/")

	uri := fmt.Sprintf("ipfs://%s/?timeout=%s", apiURL, timeout)
	if gateway != "" {
		uri = fmt.Sprintf("ipfs://%s/?gateway=%s&timeout=%s", apiURL, gateway, timeout)
	}

	sh := shell.NewShell(apiURL)
	sh.SetTimeout(requestTimeout)

	return &IPFSBackend{
		shell:       sh,
		host:        host,
		port:        port,
		gateway:     gateway,
		timeout:     requestTimeout,
		log:         log,
		locationURI: uri,
	}, nil
}

// Store adds and pins data on IPFS and returns its content identifier and URI.
// Returns ErrBackendUnavailable if the IPFS node is not accessible.
func (b *IPFSBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.StoredContent, error) {
	start := time.Now()
	id := interfaces.ComputeID(data)

	if !b.Available(ctx) {
		if err := ctx.Err(); err != nil {
			return interfaces.StoredContent{ID: id}, err
		}
		return interfaces.StoredContent{ID: id}, interfaces.ErrBackendUnavailable
	}

	var out ipfsAddResponse
	err := b.shell.Request("add").
		Option("pin", true).
		Option("cid-version", 1).
		FileBody(bytes.NewReader(data)).
		Exec(ctx, &out)
	if err == nil && out.Hash == "" {
		err = fmt.Errorf("empty CID in add response")
	}
	if err != nil {
		b.log.Error("Failed to add data to IPFS",
			slog.String("content_id", id.String()),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return interfaces.StoredContent{ID: id}, fmt.Errorf("failed to add data to IPFS: %w", err)
	}

	b.log.Debug("Stored content in IPFS",
		slog.String("ipfsCID", out.Hash),
		slog.String("contentID", id.String()),
		slog.String("contentType", contentType.String()),
		slog.Duration("duration", time.Since(start)))

	return interfaces.StoredContent{ID: id, URI: b.contentURI(out.Hash)}, nil
}

// Available checks if the IPFS node answers a version request.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	var out ipfsVersionResponse
	if err := b.shell.Request("version").Exec(ctx, &out); err != nil {
		b.log.Warn("IPFS node unavailable",
			slog.String("host", b.host),
			slog.String("port", b.port),
			"err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", b.host, b.port)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}

// contentURI builds the public URI for a CID.
func (b *IPFSBackend) contentURI(cid string) string {
	if b.gateway == "" {
		return "ipfs://" + cid
	}
	return fmt.Sprintf("%s/ipfs/%s", b.gateway, cid)
}
