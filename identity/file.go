package identity

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blocto/solana-go-sdk/types"
)

// FileProvider loads the signing keypair from a solana-keygen keypair file,
// optionally generating it on first use.
type FileProvider struct {
	path       string
	passphrase []byte
	create     bool
	log        *slog.Logger
}

// NewFileProvider creates a provider for the keypair file at path.
func NewFileProvider(path string, opts Options, log *slog.Logger) *FileProvider {
	return &FileProvider{
		path:       path,
		passphrase: opts.Passphrase,
		create:     opts.Create,
		log:        log,
	}
}

// Resolve reads the keypair file. When the file does not exist and creation is
// enabled, a new keypair is generated and written with owner-only permissions.
func (p *FileProvider) Resolve(ctx context.Context) (types.Account, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) && p.create {
		return p.generate()
	}
	if err != nil {
		return types.Account{}, fmt.Errorf("read keypair file: %w", err)
	}

	var account types.Account
	if isEncrypted(data) {
		account, err = DecryptKeypair(data, p.passphrase)
	} else {
		if len(p.passphrase) > 0 {
			p.log.Warn("Keypair file is not encrypted", slog.String("path", p.path))
		}
		account, err = DecodeKeypair(data)
	}
	if err != nil {
		return types.Account{}, fmt.Errorf("%s: %w", p.path, err)
	}

	p.log.Debug("Loaded keypair",
		slog.String("path", p.path),
		slog.String("pubkey", account.PublicKey.ToBase58()))
	return account, nil
}

func (p *FileProvider) generate() (types.Account, error) {
	account := types.NewAccount()

	var (
		data []byte
		err  error
	)
	if len(p.passphrase) > 0 {
		data, err = EncryptKeypair(account, p.passphrase)
	} else {
		data, err = EncodeKeypair(account)
	}
	if err != nil {
		return types.Account{}, err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return types.Account{}, fmt.Errorf("create keypair directory: %w", err)
	}
	// O_EXCL so a concurrently created key is never overwritten
	f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return types.Account{}, fmt.Errorf("create keypair file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return types.Account{}, fmt.Errorf("write keypair file: %w", err)
	}
	if err := f.Close(); err != nil {
		return types.Account{}, fmt.Errorf("write keypair file: %w", err)
	}

	p.log.Info("Generated new keypair",
		slog.String("path", p.path),
		slog.String("pubkey", account.PublicKey.ToBase58()),
		slog.Bool("encrypted", len(p.passphrase) > 0))
	return account, nil
}

// Name returns the keypair file location.
func (p *FileProvider) Name() string {
	return "file://" + p.path
}
