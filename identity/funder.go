package identity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/ruteri/spl-token-provisioner/interfaces"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL uint64 = 1_000_000_000

// Funder resolves an identity through another provider and airdrops to it from
// the cluster faucet when its balance is below the minimum.
type Funder struct {
	provider   interfaces.IdentityProvider
	ledger     interfaces.Ledger
	minBalance uint64
	airdrop    uint64
	log        *slog.Logger
}

// NewFunder tops up the identity with 1 SOL whenever it holds less than 1 SOL.
func NewFunder(provider interfaces.IdentityProvider, ledger interfaces.Ledger, log *slog.Logger) *Funder {
	return &Funder{
		provider:   provider,
		ledger:     ledger,
		minBalance: LamportsPerSOL,
		airdrop:    LamportsPerSOL,
		log:        log,
	}
}

// Resolve returns the wrapped provider's account after funding it if needed.
func (f *Funder) Resolve(ctx context.Context) (types.Account, error) {
	account, err := f.provider.Resolve(ctx)
	if err != nil {
		return types.Account{}, err
	}

	balance, err := f.ledger.Balance(ctx, account.PublicKey)
	if err != nil {
		return types.Account{}, fmt.Errorf("read balance: %w", err)
	}

	log := f.log.With(slog.String("pubkey", account.PublicKey.ToBase58()))
	log.Debug("Identity balance", slog.Uint64("lamports", balance))

	if balance >= f.minBalance {
		return account, nil
	}

	log.Info("Airdropping SOL",
		slog.Uint64("balance", balance),
		slog.Uint64("lamports", f.airdrop))

	sig, err := f.ledger.RequestAirdrop(ctx, account.PublicKey, f.airdrop)
	if err != nil {
		return types.Account{}, fmt.Errorf("airdrop: %w", err)
	}

	if err := f.ledger.Confirm(ctx, sig); err != nil {
		return types.Account{}, fmt.Errorf("confirm airdrop %s: %w", sig, err)
	}

	if newBalance, err := f.ledger.Balance(ctx, account.PublicKey); err != nil {
		log.Warn("Failed to read balance after airdrop", "err", err)
	} else {
		log.Info("Airdrop confirmed",
			slog.String("signature", sig),
			slog.Uint64("balance", newBalance))
	}

	return account, nil
}

// Name wraps the inner provider name.
func (f *Funder) Name() string {
	return "funded:" + f.provider.Name()
}
