package interfaces

import (
	"context"

	"github.com/blocto/solana-go-sdk/types"
)

// IdentityProvider supplies the keypair that signs and pays for all operations.
type IdentityProvider interface {
	// Resolve loads or creates the signing keypair.
	Resolve(ctx context.Context) (types.Account, error)

	// Name returns identifier for logging.
	Name() string
}
