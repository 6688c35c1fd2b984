package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ruteri/spl-token-provisioner/identity"
	"github.com/ruteri/spl-token-provisioner/interfaces"
	"github.com/ruteri/spl-token-provisioner/metrics"
)

const (
	// maxBodySize is the maximum allowed request body size (10MB).
	maxBodySize = 10 * 1024 * 1024

	// maxMemory is the part of a multipart form kept in memory.
	maxMemory = 1024 * 1024
)

// RequestError provides structured error information for HTTP responses.
// It includes both an HTTP status code and the underlying error.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error returns the error message from the underlying error.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Provisioner runs a provisioning workflow.
type Provisioner interface {
	Provision(ctx context.Context, req interfaces.ProvisionRequest) (*interfaces.Receipt, error)
}

// Handler processes HTTP requests for the provisioning API.
// Runs are serialized: a request waits until the previous run has finished.
type Handler struct {
	provisioner Provisioner
	metrics     *metrics.MetricsServer
	log         *slog.Logger

	mu sync.Mutex
}

// NewHandler creates a new HTTP request handler around provisioner.
func NewHandler(provisioner Provisioner, log *slog.Logger) *Handler {
	return &Handler{
		provisioner: provisioner,
		log:         log,
	}
}

// HandleProvision provisions a token from a multipart form.
//
// URL format: POST /api/provision
// Form fields:
//   - name, symbol, description: token display fields
//   - decimals: integer precision
//   - amount: initial supply in display units
//   - owner: optional base58 address receiving the supply (defaults to the signer)
//   - image: token image file
//
// Response: the provisioning receipt as JSON.
func (h *Handler) HandleProvision(w http.ResponseWriter, r *http.Request) {
	req, reqErr := h.parseProvisionRequest(w, r)
	if reqErr != nil {
		h.log.Warn("Invalid provisioning request", "err", reqErr)
		http.Error(w, reqErr.Error(), reqErr.StatusCode)
		return
	}

	h.mu.Lock()
	start := time.Now()
	receipt, err := h.provisioner.Provision(r.Context(), req)
	if h.metrics != nil {
		h.metrics.ObserveRun(err, time.Since(start))
	}
	h.mu.Unlock()

	if err != nil {
		status := statusForError(err)
		h.log.Error("Provisioning failed", "err", err,
			slog.String("symbol", req.Token.Symbol),
			slog.Int("status", status))
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(receipt); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) parseProvisionRequest(w http.ResponseWriter, r *http.Request) (interfaces.ProvisionRequest, *RequestError) {
	var req interfaces.ProvisionRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return req, badRequest("invalid multipart form: %v", err)
	}

	req.Token = interfaces.TokenSpec{
		Name:        r.FormValue("name"),
		Symbol:      r.FormValue("symbol"),
		Description: r.FormValue("description"),
	}

	decimals, err := strconv.ParseUint(r.FormValue("decimals"), 10, 8)
	if err != nil {
		return req, badRequest("invalid decimals: %v", err)
	}
	req.Token.Decimals = uint8(decimals)

	req.Token.Amount, err = strconv.ParseUint(r.FormValue("amount"), 10, 64)
	if err != nil {
		return req, badRequest("invalid amount: %v", err)
	}

	if err := req.Token.Validate(); err != nil {
		return req, &RequestError{StatusCode: http.StatusBadRequest, Err: err}
	}

	if owner := r.FormValue("owner"); owner != "" {
		pk, err := identity.ParsePublicKey(owner)
		if err != nil {
			return req, badRequest("invalid owner: %v", err)
		}
		req.Owner = &pk
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return req, badRequest("missing image: %v", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, badRequest("failed to read image: %v", err)
	}
	if len(data) == 0 {
		return req, badRequest("empty image")
	}
	req.Image = interfaces.Asset{FileName: header.Filename, Data: data}

	return req, nil
}

// statusForError maps provisioning errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrInvalidTokenSpec):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrUpload),
		errors.Is(err, interfaces.ErrAccountLookup),
		errors.Is(err, interfaces.ErrSubmission),
		errors.Is(err, interfaces.ErrLedgerUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(format string, args ...any) *RequestError {
	return &RequestError{StatusCode: http.StatusBadRequest, Err: fmt.Errorf(format, args...)}
}
