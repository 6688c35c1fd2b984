package interfaces

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// AccountStatus classifies the result of probing a token account.
type AccountStatus int

const (
	// AccountExists means a token-program-owned account of the right size exists.
	AccountExists AccountStatus = iota
	// AccountNotFound means nothing is stored at the address.
	AccountNotFound
	// AccountWrongOwner means the address holds an account not owned by the token program.
	AccountWrongOwner
)

// String returns the classification name.
func (s AccountStatus) String() string {
	switch s {
	case AccountExists:
		return "exists"
	case AccountNotFound:
		return "not-found"
	case AccountWrongOwner:
		return "wrong-owner"
	default:
		return "unknown"
	}
}

// Ledger is the RPC capability the provisioner needs from the cluster.
type Ledger interface {
	// MinimumBalanceForRentExemption returns the rent-exempt reserve for an account of size bytes.
	MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)

	// LatestBlockhash returns a recent blockhash to build transactions against.
	LatestBlockhash(ctx context.Context) (string, error)

	// TokenAccountStatus probes a token account. Absence and foreign ownership are
	// reported as a status, only unexpected failures as errors.
	TokenAccountStatus(ctx context.Context, address common.PublicKey) (AccountStatus, error)

	// SendAndConfirm submits a signed transaction and blocks until it is final or fails.
	SendAndConfirm(ctx context.Context, tx types.Transaction) (string, error)

	// Confirm blocks until the signature reaches the configured commitment or fails.
	Confirm(ctx context.Context, signature string) error

	// Balance returns the lamport balance of an address.
	Balance(ctx context.Context, address common.PublicKey) (uint64, error)

	// RequestAirdrop asks the cluster faucet for lamports and returns the airdrop signature.
	RequestAirdrop(ctx context.Context, address common.PublicKey, lamports uint64) (string, error)
}
