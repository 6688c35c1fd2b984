// Package ledger implements interfaces.Ledger over a Solana JSON-RPC node.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/ruteri/spl-token-provisioner/interfaces"
)

var (
	// ErrInvalidTokenAccount is returned when a token-program account at the holder
	// address does not have the layout of a token account.
	ErrInvalidTokenAccount = errors.New("invalid token account")

	// ErrTransactionFailed is returned when the cluster reports an execution error.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrConfirmationTimeout is returned when a signature does not reach the
	// configured commitment within the confirmation window.
	ErrConfirmationTimeout = errors.New("confirmation timed out")
)

// Options configures a Client.
type Options struct {
	// Commitment the signature must reach before Confirm returns.
	Commitment rpc.Commitment
	// ConfirmTimeout bounds Confirm. A blockhash expires after roughly this long.
	ConfirmTimeout time.Duration
	// PollInterval between signature status requests.
	PollInterval time.Duration
}

// DefaultOptions waits for finality for up to two minutes.
var DefaultOptions = Options{
	Commitment:     rpc.CommitmentFinalized,
	ConfirmTimeout: 2 * time.Minute,
	PollInterval:   time.Second,
}

// rpcClient is the subset of the JSON-RPC API the Client uses.
type rpcClient interface {
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)
	LatestBlockhash(ctx context.Context) (string, error)
	GetAccountInfo(ctx context.Context, base58Addr string) (client.AccountInfo, error)
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	SignatureStatus(ctx context.Context, signature string) (*signatureStatus, error)
	GetBalance(ctx context.Context, base58Addr string) (uint64, error)
	RequestAirdrop(ctx context.Context, base58Addr string, lamports uint64) (string, error)
}

// signatureStatus is a transaction status as reported by getSignatureStatuses.
type signatureStatus struct {
	Slot       uint64
	Commitment rpc.Commitment
	Err        any
}

// Client implements interfaces.Ledger.
type Client struct {
	rpc  rpcClient
	opts Options
	log  *slog.Logger
}

// New creates a Client talking to the JSON-RPC endpoint.
func New(endpoint string, opts Options, log *slog.Logger) *Client {
	return newClient(&sdkClient{Client: client.NewClient(endpoint)}, endpoint, opts, log)
}

func newClient(node rpcClient, endpoint string, opts Options, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	if opts.Commitment == "" {
		opts.Commitment = DefaultOptions.Commitment
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = DefaultOptions.ConfirmTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultOptions.PollInterval
	}

	return &Client{
		rpc:  node,
		opts: opts,
		log:  log.With(slog.String("endpoint", endpoint)),
	}
}

// MinimumBalanceForRentExemption returns the rent-exempt reserve for size bytes.
func (c *Client) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, size)
	if err != nil {
		return 0, fmt.Errorf("getMinimumBalanceForRentExemption: %w", err)
	}
	return lamports, nil
}

// LatestBlockhash returns the most recent blockhash.
func (c *Client) LatestBlockhash(ctx context.Context) (string, error) {
	blockhash, err := c.rpc.LatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("getLatestBlockhash: %w", err)
	}
	return blockhash, nil
}

// TokenAccountStatus fetches the account at address and classifies it.
func (c *Client) TokenAccountStatus(ctx context.Context, address common.PublicKey) (interfaces.AccountStatus, error) {
	info, err := c.rpc.GetAccountInfo(ctx, address.ToBase58())
	if err != nil {
		return 0, fmt.Errorf("getAccountInfo %s: %w", address.ToBase58(), err)
	}

	status, err := classifyTokenAccount(info)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", address.ToBase58(), err)
	}

	c.log.Debug("Token account probed",
		slog.String("address", address.ToBase58()),
		slog.String("status", status.String()))
	return status, nil
}

// classifyTokenAccount maps raw account state to an AccountStatus.
// A missing account comes back from the node as a zero value.
func classifyTokenAccount(info client.AccountInfo) (interfaces.AccountStatus, error) {
	if info.Owner == (common.PublicKey{}) && info.Lamports == 0 && len(info.Data) == 0 {
		return interfaces.AccountNotFound, nil
	}
	if info.Owner != common.TokenProgramID {
		return interfaces.AccountWrongOwner, nil
	}
	if uint64(len(info.Data)) != token.TokenAccountSize {
		return 0, fmt.Errorf("%w: %d bytes of data", ErrInvalidTokenAccount, len(info.Data))
	}
	return interfaces.AccountExists, nil
}

// SendAndConfirm submits tx and waits for it to reach the configured commitment.
func (c *Client) SendAndConfirm(ctx context.Context, tx types.Transaction) (string, error) {
	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("sendTransaction: %w", err)
	}

	c.log.Info("Transaction submitted", slog.String("signature", sig))

	if err := c.Confirm(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// Confirm polls the signature status until it reaches the configured commitment,
// the cluster reports an execution error, or the confirmation window elapses.
func (c *Client) Confirm(ctx context.Context, signature string) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.opts.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		status, err := c.rpc.SignatureStatus(ctx, signature)
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("getSignatureStatuses %s: %w", signature, err)
		}

		if status != nil {
			if status.Err != nil {
				return fmt.Errorf("%w: %s: %v", ErrTransactionFailed, signature, status.Err)
			}
			if commitmentReached(status.Commitment, c.opts.Commitment) {
				c.log.Info("Transaction confirmed",
					slog.String("signature", signature),
					slog.Uint64("slot", status.Slot),
					slog.String("commitment", string(status.Commitment)),
					slog.Duration("duration", time.Since(start)))
				return nil
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s not %s after %s", ErrConfirmationTimeout, signature, c.opts.Commitment, c.opts.ConfirmTimeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

var commitmentRank = map[rpc.Commitment]int{
	rpc.CommitmentProcessed: 1,
	rpc.CommitmentConfirmed: 2,
	rpc.CommitmentFinalized: 3,
}

func commitmentReached(have, want rpc.Commitment) bool {
	return have != "" && commitmentRank[have] >= commitmentRank[want]
}

// Balance returns the lamport balance of address.
func (c *Client) Balance(ctx context.Context, address common.PublicKey) (uint64, error) {
	lamports, err := c.rpc.GetBalance(ctx, address.ToBase58())
	if err != nil {
		return 0, fmt.Errorf("getBalance %s: %w", address.ToBase58(), err)
	}
	return lamports, nil
}

// RequestAirdrop asks the cluster faucet for lamports.
func (c *Client) RequestAirdrop(ctx context.Context, address common.PublicKey, lamports uint64) (string, error) {
	sig, err := c.rpc.RequestAirdrop(ctx, address.ToBase58(), lamports)
	if err != nil {
		return "", fmt.Errorf("requestAirdrop %s: %w", address.ToBase58(), err)
	}
	return sig, nil
}

// sdkClient adapts *client.Client to rpcClient.
type sdkClient struct {
	*client.Client
}

func (s *sdkClient) LatestBlockhash(ctx context.Context) (string, error) {
	res, err := s.Client.GetLatestBlockhash(ctx)
	if err != nil {
		return "", err
	}
	return res.Blockhash, nil
}

func (s *sdkClient) SignatureStatus(ctx context.Context, signature string) (*signatureStatus, error) {
	res, err := s.Client.GetSignatureStatus(ctx, signature)
	if err != nil || res == nil {
		return nil, err
	}

	status := &signatureStatus{Slot: res.Slot, Err: res.Err}
	if res.ConfirmationStatus != nil {
		status.Commitment = *res.ConfirmationStatus
	}
	return status, nil
}

var _ interfaces.Ledger = (*Client)(nil)
