// Package provisioner creates a fungible SPL token with Metaplex metadata and mints
// its initial supply in a single transaction.
package provisioner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/google/uuid"
	"github.com/ruteri/spl-token-provisioner/interfaces"
	"github.com/ruteri/spl-token-provisioner/ledger"
)

// DefaultUploadTimeout bounds each storage upload.
const DefaultUploadTimeout = 60 * time.Second

// Options configures a Provisioner.
type Options struct {
	// UploadTimeout bounds each of the image and metadata uploads.
	UploadTimeout time.Duration
	// Cluster name or RPC URL used to build explorer links. Empty disables links.
	Cluster string
	// NewMint generates the mint keypair. Defaults to types.NewAccount.
	NewMint func() types.Account
}

// Provisioner runs the token provisioning workflow against its collaborators.
type Provisioner struct {
	ledger   interfaces.Ledger
	storage  interfaces.StorageBackend
	identity interfaces.IdentityProvider
	opts     Options
	log      *slog.Logger
}

// metadataDocument is the off-chain JSON the metadata account points to.
type metadataDocument struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// New creates a Provisioner.
func New(ledgerClient interfaces.Ledger, storage interfaces.StorageBackend, identity interfaces.IdentityProvider, log *slog.Logger, opts Options) *Provisioner {
	if log == nil {
		log = slog.Default()
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = DefaultUploadTimeout
	}
	if opts.NewMint == nil {
		opts.NewMint = types.NewAccount
	}

	return &Provisioner{
		ledger:   ledgerClient,
		storage:  storage,
		identity: identity,
		opts:     opts,
		log:      log,
	}
}

// Provision creates the mint, uploads the image and metadata, and submits one
// transaction that initializes the mint, creates its metadata account, creates
// the holder account if needed and mints the initial supply to it.
//
// Nothing is submitted unless every preceding step succeeds. Uploaded content
// is not removed on failure.
func (p *Provisioner) Provision(ctx context.Context, req interfaces.ProvisionRequest) (*interfaces.Receipt, error) {
	start := time.Now()
	log := p.log.With(slog.String("run_id", uuid.NewString()))

	if err := req.Token.Validate(); err != nil {
		return nil, err
	}
	baseAmount, err := req.Token.BaseAmount()
	if err != nil {
		return nil, err
	}
	if len(req.Image.Data) == 0 {
		return nil, fmt.Errorf("%w: image is empty", interfaces.ErrInvalidTokenSpec)
	}

	payer, err := p.identity.Resolve(ctx)
	if err != nil {
		log.Error("Failed to resolve identity", slog.String("provider", p.identity.Name()), "err", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrIdentity, err)
	}

	rent, err := p.ledger.MinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrLedgerUnavailable, err)
	}

	mint := p.opts.NewMint()

	owner := payer.PublicKey
	if req.Owner != nil {
		owner = *req.Owner
	}

	metadataAccount, err := token_metadata.GetTokenMetaPubkey(mint.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("derive metadata address: %w", err)
	}

	holder, _, err := common.FindAssociatedTokenAddress(owner, mint.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("derive holder address: %w", err)
	}

	log = log.With(
		slog.String("payer", payer.PublicKey.ToBase58()),
		slog.String("mint", mint.PublicKey.ToBase58()))
	log.Info("Provisioning token",
		slog.String("name", req.Token.Name),
		slog.String("symbol", req.Token.Symbol),
		slog.Uint64("base_amount", baseAmount),
		slog.String("owner", owner.ToBase58()),
		slog.String("holder", holder.ToBase58()))

	image, err := p.upload(ctx, req.Image.Data, interfaces.AssetType)
	if err != nil {
		log.Error("Failed to upload image", slog.String("file", req.Image.FileName), "err", err)
		return nil, fmt.Errorf("%w: image: %v", interfaces.ErrUpload, err)
	}
	log.Info("Image uploaded", slog.String("uri", image.URI))

	document, err := json.Marshal(metadataDocument{
		Name:        req.Token.Name,
		Symbol:      req.Token.Symbol,
		Description: req.Token.Description,
		Image:       image.URI,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	metadata, err := p.upload(ctx, document, interfaces.MetadataType)
	if err != nil {
		log.Error("Failed to upload metadata", "err", err)
		return nil, fmt.Errorf("%w: metadata: %v", interfaces.ErrUpload, err)
	}
	if len(metadata.URI) > interfaces.MaxURILength {
		return nil, fmt.Errorf("%w: metadata URI longer than %d bytes: %s", interfaces.ErrInvalidTokenSpec, interfaces.MaxURILength, metadata.URI)
	}
	log.Info("Metadata uploaded", slog.String("uri", metadata.URI))

	batch := &Batch{}
	batch.Append(CreateMintAccount, system.CreateAccount(system.CreateAccountParam{
		From:     payer.PublicKey,
		New:      mint.PublicKey,
		Owner:    common.TokenProgramID,
		Lamports: rent,
		Space:    token.MintAccountSize,
	}))
	batch.Append(InitializeMint, token.InitializeMint(token.InitializeMintParam{
		Decimals:   req.Token.Decimals,
		Mint:       mint.PublicKey,
		MintAuth:   payer.PublicKey,
		FreezeAuth: &payer.PublicKey,
	}))
	batch.Append(CreateMetadataAccount, token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
		Metadata:                metadataAccount,
		Mint:                    mint.PublicKey,
		MintAuthority:           payer.PublicKey,
		Payer:                   payer.PublicKey,
		UpdateAuthority:         payer.PublicKey,
		UpdateAuthorityIsSigner: true,
		IsMutable:               true,
		Data: token_metadata.DataV2{
			Name:                 req.Token.Name,
			Symbol:               req.Token.Symbol,
			Uri:                  metadata.URI,
			SellerFeeBasisPoints: 0,
		},
		CollectionDetails: nil,
	}))

	status, err := p.ledger.TokenAccountStatus(ctx, holder)
	if err != nil {
		log.Error("Failed to look up holder account", slog.String("holder", holder.ToBase58()), "err", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrAccountLookup, err)
	}
	if status == interfaces.AccountNotFound || status == interfaces.AccountWrongOwner {
		log.Debug("Creating holder account", slog.String("status", status.String()))
		batch.Append(CreateHolderAccount, associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 payer.PublicKey,
			Owner:                  owner,
			Mint:                   mint.PublicKey,
			AssociatedTokenAccount: holder,
		}))
	}

	batch.Append(MintToHolder, token.MintTo(token.MintToParam{
		Mint:   mint.PublicKey,
		To:     holder,
		Auth:   payer.PublicKey,
		Amount: baseAmount,
	}))

	if err := batch.Validate(); err != nil {
		return nil, err
	}

	blockhash, err := p.ledger.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrLedgerUnavailable, err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{payer, mint},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        payer.PublicKey,
			RecentBlockhash: blockhash,
			Instructions:    batch.Instructions(),
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sign transaction: %v", interfaces.ErrSubmission, err)
	}

	signature, err := p.ledger.SendAndConfirm(ctx, tx)
	if err != nil {
		log.Error("Transaction failed", slog.String("signature", signature), "err", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrSubmission, err)
	}

	receipt := &interfaces.Receipt{
		Signature:            signature,
		Mint:                 mint.PublicKey.ToBase58(),
		MetadataAccount:      metadataAccount.ToBase58(),
		HolderAccount:        holder.ToBase58(),
		Owner:                owner.ToBase58(),
		ImageURI:             image.URI,
		MetadataURI:          metadata.URI,
		Decimals:             req.Token.Decimals,
		BaseAmount:           baseAmount,
		CreatedHolderAccount: batch.Has(CreateHolderAccount),
		Instructions:         batch.Names(),
	}
	if p.opts.Cluster != "" {
		receipt.ExplorerURL = ledger.ExplorerURL(signature, p.opts.Cluster)
	}

	log.Info("Token provisioned",
		slog.String("signature", signature),
		slog.Bool("created_holder", receipt.CreatedHolderAccount),
		slog.Duration("duration", time.Since(start)))

	return receipt, nil
}

// upload stores data within the upload timeout window.
func (p *Provisioner) upload(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.StoredContent, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.UploadTimeout)
	defer cancel()

	return p.storage.Store(ctx, data, contentType)
}
