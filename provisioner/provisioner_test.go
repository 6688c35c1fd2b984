package provisioner

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/ruteri/spl-token-provisioner/identity"
	"github.com/ruteri/spl-token-provisioner/interfaces"
	"github.com/ruteri/spl-token-provisioner/ledger"
	"github.com/ruteri/spl-token-provisioner/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBlockhash = "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N"

type fixture struct {
	payer    types.Account
	mint     types.Account
	ledger   *ledger.MockLedger
	storage  *storage.MockStorageBackend
	identity *identity.MockProvider

	// populated by the mocks
	tx       types.Transaction
	metadata []byte
}

var (
	imageURI    = "https://ipfs.io/ipfs/bafyimage"
	metadataURI = "https://ipfs.io/ipfs/bafymetadata"
)

func testRequest() interfaces.ProvisionRequest {
	return interfaces.ProvisionRequest{
		Token: interfaces.TokenSpec{
			Name:        "Moldova coin",
			Symbol:      "MDLC",
			Description: "Description",
			Decimals:    2,
			Amount:      100,
		},
		Image: interfaces.Asset{FileName: "mdlc.png", Data: []byte("\x89PNG\r\n\x1a\nimage")},
	}
}

func newFixture() *fixture {
	f := &fixture{
		payer:    types.NewAccount(),
		mint:     types.NewAccount(),
		ledger:   &ledger.MockLedger{},
		storage:  &storage.MockStorageBackend{BackendName: "test"},
		identity: &identity.MockProvider{},
	}
	f.identity.On("Resolve", mock.Anything).Return(f.payer, nil)
	return f
}

// expectUploads sets up successful image and metadata uploads.
func (f *fixture) expectUploads() {
	f.storage.On("Store", mock.Anything, mock.Anything, interfaces.AssetType).
		Return(interfaces.StoredContent{URI: imageURI}, nil)
	f.storage.On("Store", mock.Anything, mock.Anything, interfaces.MetadataType).
		Run(func(args mock.Arguments) { f.metadata = args.Get(1).([]byte) }).
		Return(interfaces.StoredContent{URI: metadataURI}, nil)
}

// expectLedger sets up rent and holder lookup results.
func (f *fixture) expectLedger(status interfaces.AccountStatus) {
	f.ledger.On("MinimumBalanceForRentExemption", mock.Anything, uint64(token.MintAccountSize)).Return(uint64(1461600), nil)
	f.ledger.On("TokenAccountStatus", mock.Anything, mock.Anything).Return(status, nil)
}

// expectSubmission sets up a successful submission capturing the transaction.
func (f *fixture) expectSubmission() {
	f.ledger.On("LatestBlockhash", mock.Anything).Return(testBlockhash, nil)
	f.ledger.On("SendAndConfirm", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { f.tx = args.Get(1).(types.Transaction) }).
		Return("5xSignature", nil)
}

func (f *fixture) provisioner() *Provisioner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(f.ledger, f.storage, f.identity, logger, Options{
		Cluster: "devnet",
		NewMint: func() types.Account { return f.mint },
	})
}

func programIDs(tx types.Transaction) []common.PublicKey {
	var ids []common.PublicKey
	for _, ix := range tx.Message.Instructions {
		ids = append(ids, tx.Message.Accounts[ix.ProgramIDIndex])
	}
	return ids
}

func TestProvision_HolderAbsent(t *testing.T) {
	f := newFixture()
	f.expectUploads()
	f.expectLedger(interfaces.AccountNotFound)
	f.expectSubmission()

	receipt, err := f.provisioner().Provision(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "5xSignature", receipt.Signature)
	assert.Equal(t, f.mint.PublicKey.ToBase58(), receipt.Mint)
	assert.Equal(t, f.payer.PublicKey.ToBase58(), receipt.Owner)
	assert.Equal(t, imageURI, receipt.ImageURI)
	assert.Equal(t, metadataURI, receipt.MetadataURI)
	assert.Equal(t, uint64(10000), receipt.BaseAmount)
	assert.True(t, receipt.CreatedHolderAccount)
	assert.Equal(t, []string{
		"create-mint-account",
		"initialize-mint",
		"create-metadata-account",
		"create-holder-account",
		"mint-to-holder",
	}, receipt.Instructions)
	assert.Equal(t, "https://explorer.solana.com/tx/5xSignature?cluster=devnet", receipt.ExplorerURL)

	holder, _, err := common.FindAssociatedTokenAddress(f.payer.PublicKey, f.mint.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, holder.ToBase58(), receipt.HolderAccount)

	assert.Equal(t, []common.PublicKey{
		common.SystemProgramID,
		common.TokenProgramID,
		common.MetaplexTokenMetaProgramID,
		common.SPLAssociatedTokenAccountProgramID,
		common.TokenProgramID,
	}, programIDs(f.tx))
	assert.Len(t, f.tx.Signatures, 2)
	assert.Equal(t, f.payer.PublicKey, f.tx.Message.Accounts[0])

	f.ledger.AssertNumberOfCalls(t, "SendAndConfirm", 1)
	f.ledger.AssertExpectations(t)
	f.storage.AssertExpectations(t)
}

func TestProvision_HolderExists(t *testing.T) {
	f := newFixture()
	f.expectUploads()
	f.expectLedger(interfaces.AccountExists)
	f.expectSubmission()

	receipt, err := f.provisioner().Provision(context.Background(), testRequest())
	require.NoError(t, err)

	assert.False(t, receipt.CreatedHolderAccount)
	assert.Equal(t, []string{
		"create-mint-account",
		"initialize-mint",
		"create-metadata-account",
		"mint-to-holder",
	}, receipt.Instructions)
	assert.NotContains(t, programIDs(f.tx), common.SPLAssociatedTokenAccountProgramID)
}

func TestProvision_HolderWrongOwner(t *testing.T) {
	f := newFixture()
	f.expectUploads()
	f.expectLedger(interfaces.AccountWrongOwner)
	f.expectSubmission()

	receipt, err := f.provisioner().Provision(context.Background(), testRequest())
	require.NoError(t, err)
	assert.True(t, receipt.CreatedHolderAccount)
}

func TestProvision_MintAmount(t *testing.T) {
	f := newFixture()
	f.expectUploads()
	f.expectLedger(interfaces.AccountExists)
	f.expectSubmission()

	_, err := f.provisioner().Provision(context.Background(), testRequest())
	require.NoError(t, err)

	instructions := f.tx.Message.Instructions
	mintTo := instructions[len(instructions)-1]
	require.Len(t, mintTo.Data, 9)
	assert.Equal(t, byte(7), mintTo.Data[0])
	assert.Equal(t, uint64(10000), binary.LittleEndian.Uint64(mintTo.Data[1:]))

	initializeMint := instructions[1]
	// InitializeMint: [0, decimals, mint authority, option freeze authority]
	assert.Equal(t, byte(0), initializeMint.Data[0])
	assert.Equal(t, byte(2), initializeMint.Data[1])
}

func TestProvision_MetadataDocument(t *testing.T) {
	f := newFixture()
	f.expectUploads()
	f.expectLedger(interfaces.AccountExists)
	f.expectSubmission()

	_, err := f.provisioner().Provision(context.Background(), testRequest())
	require.NoError(t, err)

	var document map[string]string
	require.NoError(t, json.Unmarshal(f.metadata, &document))
	assert.Equal(t, map[string]string{
		"name":        "Moldova coin",
		"symbol":      "MDLC",
		"description": "Description",
		"image":       imageURI,
	}, document)
}

func TestProvision_OwnerOverride(t *testing.T) {
	f := newFixture()
	f.expectUploads()
	f.expectLedger(interfaces.AccountNotFound)
	f.expectSubmission()

	owner := types.NewAccount().PublicKey
	req := testRequest()
	req.Owner = &owner

	receipt, err := f.provisioner().Provision(context.Background(), req)
	require.NoError(t, err)

	holder, _, err := common.FindAssociatedTokenAddress(owner, f.mint.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, owner.ToBase58(), receipt.Owner)
	assert.Equal(t, holder.ToBase58(), receipt.HolderAccount)
	f.ledger.AssertCalled(t, "TokenAccountStatus", mock.Anything, holder)
	// owner does not sign
	assert.Len(t, f.tx.Signatures, 2)
}

func TestProvision_UploadsAreBounded(t *testing.T) {
	f := newFixture()
	hasDeadline := mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})
	f.storage.On("Store", hasDeadline, mock.Anything, interfaces.AssetType).Return(interfaces.StoredContent{URI: imageURI}, nil)
	f.storage.On("Store", hasDeadline, mock.Anything, interfaces.MetadataType).Return(interfaces.StoredContent{URI: metadataURI}, nil)
	f.expectLedger(interfaces.AccountExists)
	f.expectSubmission()

	_, err := f.provisioner().Provision(context.Background(), testRequest())
	require.NoError(t, err)
	f.storage.AssertExpectations(t)
}

func TestProvision_Failures(t *testing.T) {
	testErr := errors.New("test error")

	tests := []struct {
		name        string
		setup       func(f *fixture)
		request     func() interfaces.ProvisionRequest
		expectedErr error
		// calls that must not happen
		notCalled []string
	}{
		{
			name: "identity unavailable",
			setup: func(f *fixture) {
				f.identity = &identity.MockProvider{}
				f.identity.On("Resolve", mock.Anything).Return(types.Account{}, testErr)
			},
			expectedErr: interfaces.ErrIdentity,
			notCalled:   []string{"MinimumBalanceForRentExemption", "TokenAccountStatus", "SendAndConfirm"},
		},
		{
			name: "rent schedule unavailable",
			setup: func(f *fixture) {
				f.ledger.On("MinimumBalanceForRentExemption", mock.Anything, mock.Anything).Return(uint64(0), testErr)
			},
			expectedErr: interfaces.ErrLedgerUnavailable,
			notCalled:   []string{"TokenAccountStatus", "SendAndConfirm"},
		},
		{
			name: "image upload fails",
			setup: func(f *fixture) {
				f.ledger.On("MinimumBalanceForRentExemption", mock.Anything, mock.Anything).Return(uint64(1461600), nil)
				f.storage.On("Store", mock.Anything, mock.Anything, interfaces.AssetType).Return(interfaces.StoredContent{}, testErr)
			},
			expectedErr: interfaces.ErrUpload,
			notCalled:   []string{"TokenAccountStatus", "LatestBlockhash", "SendAndConfirm"},
		},
		{
			name: "metadata upload fails",
			setup: func(f *fixture) {
				f.ledger.On("MinimumBalanceForRentExemption", mock.Anything, mock.Anything).Return(uint64(1461600), nil)
				f.storage.On("Store", mock.Anything, mock.Anything, interfaces.AssetType).Return(interfaces.StoredContent{URI: imageURI}, nil)
				f.storage.On("Store", mock.Anything, mock.Anything, interfaces.MetadataType).Return(interfaces.StoredContent{}, testErr)
			},
			expectedErr: interfaces.ErrUpload,
			notCalled:   []string{"TokenAccountStatus", "LatestBlockhash", "SendAndConfirm"},
		},
		{
			name: "holder lookup fails",
			setup: func(f *fixture) {
				f.expectUploads()
				f.ledger.On("MinimumBalanceForRentExemption", mock.Anything, mock.Anything).Return(uint64(1461600), nil)
				f.ledger.On("TokenAccountStatus", mock.Anything, mock.Anything).Return(interfaces.AccountStatus(0), testErr)
			},
			expectedErr: interfaces.ErrAccountLookup,
			notCalled:   []string{"LatestBlockhash", "SendAndConfirm"},
		},
		{
			name: "blockhash unavailable",
			setup: func(f *fixture) {
				f.expectUploads()
				f.expectLedger(interfaces.AccountExists)
				f.ledger.On("LatestBlockhash", mock.Anything).Return("", testErr)
			},
			expectedErr: interfaces.ErrLedgerUnavailable,
			notCalled:   []string{"SendAndConfirm"},
		},
		{
			name: "submission rejected",
			setup: func(f *fixture) {
				f.expectUploads()
				f.expectLedger(interfaces.AccountExists)
				f.ledger.On("LatestBlockhash", mock.Anything).Return(testBlockhash, nil)
				f.ledger.On("SendAndConfirm", mock.Anything, mock.Anything).Return("", testErr)
			},
			expectedErr: interfaces.ErrSubmission,
		},
		{
			name:  "invalid token spec",
			setup: func(f *fixture) {},
			request: func() interfaces.ProvisionRequest {
				req := testRequest()
				req.Token.Symbol = "WAYTOOLONGSYMBOL"
				return req
			},
			expectedErr: interfaces.ErrInvalidTokenSpec,
			notCalled:   []string{"MinimumBalanceForRentExemption", "SendAndConfirm"},
		},
		{
			name:  "empty image",
			setup: func(f *fixture) {},
			request: func() interfaces.ProvisionRequest {
				req := testRequest()
				req.Image.Data = nil
				return req
			},
			expectedErr: interfaces.ErrInvalidTokenSpec,
			notCalled:   []string{"MinimumBalanceForRentExemption", "SendAndConfirm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)

			req := testRequest()
			if tt.request != nil {
				req = tt.request()
			}

			receipt, err := f.provisioner().Provision(context.Background(), req)
			assert.Nil(t, receipt)
			assert.True(t, errors.Is(err, tt.expectedErr), "unexpected error: %v", err)

			for _, method := range tt.notCalled {
				f.ledger.AssertNumberOfCalls(t, method, 0)
			}
		})
	}
}
