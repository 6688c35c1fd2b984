package interfaces

import "errors"

// Error kinds surfaced by a provisioning run. Causes are wrapped with
// fmt.Errorf("%w: %v", kind, cause) so callers can match with errors.Is.
var (
	// ErrIdentity is returned when the signing identity cannot be obtained or funded.
	ErrIdentity = errors.New("identity unavailable")

	// ErrUpload is returned when the asset or metadata upload fails.
	ErrUpload = errors.New("upload failed")

	// ErrAccountLookup is returned when probing the holder account fails for a reason
	// other than the account being absent or foreign-owned.
	ErrAccountLookup = errors.New("account lookup failed")

	// ErrSubmission is returned when the ledger rejects or fails to confirm the transaction.
	ErrSubmission = errors.New("transaction submission failed")

	// ErrInvalidTokenSpec is returned for token fields that cannot be put on chain.
	ErrInvalidTokenSpec = errors.New("invalid token spec")

	// ErrLedgerUnavailable is returned when rent or blockhash data cannot be read.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
)
