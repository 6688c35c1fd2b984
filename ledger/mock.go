package ledger

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/ruteri/spl-token-provisioner/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockLedger mocks the Ledger interface
type MockLedger struct {
	mock.Mock
}

// MinimumBalanceForRentExemption mocks the MinimumBalanceForRentExemption method
func (m *MockLedger) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	args := m.Called(ctx, size)
	return args.Get(0).(uint64), args.Error(1)
}

// LatestBlockhash mocks the LatestBlockhash method
func (m *MockLedger) LatestBlockhash(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// TokenAccountStatus mocks the TokenAccountStatus method
func (m *MockLedger) TokenAccountStatus(ctx context.Context, address common.PublicKey) (interfaces.AccountStatus, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(interfaces.AccountStatus), args.Error(1)
}

// SendAndConfirm mocks the SendAndConfirm method
func (m *MockLedger) SendAndConfirm(ctx context.Context, tx types.Transaction) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

// Confirm mocks the Confirm method
func (m *MockLedger) Confirm(ctx context.Context, signature string) error {
	args := m.Called(ctx, signature)
	return args.Error(0)
}

// Balance mocks the Balance method
func (m *MockLedger) Balance(ctx context.Context, address common.PublicKey) (uint64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(uint64), args.Error(1)
}

// RequestAirdrop mocks the RequestAirdrop method
func (m *MockLedger) RequestAirdrop(ctx context.Context, address common.PublicKey, lamports uint64) (string, error) {
	args := m.Called(ctx, address, lamports)
	return args.String(0), args.Error(1)
}

var _ interfaces.Ledger = (*MockLedger)(nil)
