package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/hashicorp/vault/api"
)

// VaultProvider reads the keypair from a HashiCorp Vault KV v2 secret.
// The client token is taken from VAULT_TOKEN.
type VaultProvider struct {
	client    *api.Client
	address   string
	mountPath string
	dataPath  string
	field     string
	log       *slog.Logger
}

// NewVaultProvider creates a provider for the secret at mountPath/dataPath on the
// Vault server at address (e.g. https://vault.example.com:8200). The keypair is
// read from field of the secret data.
func NewVaultProvider(address, mountPath, dataPath, field string, log *slog.Logger) (*VaultProvider, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.HttpClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	if field == "" {
		field = "keypair"
	}

	return &VaultProvider{
		client:    client,
		address:   address,
		mountPath: strings.Trim(mountPath, "/"),
		dataPath:  strings.Trim(dataPath, "/"),
		field:     field,
		log:       log,
	}, nil
}

// Resolve reads the secret and parses the keypair stored in the configured field.
func (p *VaultProvider) Resolve(ctx context.Context) (types.Account, error) {
	// Vault KV v2 path structure
	path := fmt.Sprintf("%s/data/%s", p.mountPath, p.dataPath)

	secret, err := p.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		p.log.Error("Failed to read from Vault",
			slog.String("path", path),
			"err", err)
		return types.Account{}, fmt.Errorf("read vault secret %s: %w", path, err)
	}

	if secret == nil || secret.Data == nil {
		return types.Account{}, fmt.Errorf("vault secret %s not found", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return types.Account{}, fmt.Errorf("invalid data format in Vault response")
	}

	value, ok := data[p.field].(string)
	if !ok {
		return types.Account{}, fmt.Errorf("field %q not found in vault secret %s", p.field, path)
	}

	account, err := ParseSecretKey([]byte(value))
	if err != nil {
		return types.Account{}, fmt.Errorf("vault secret %s: %w", path, err)
	}

	p.log.Debug("Loaded keypair from Vault",
		slog.String("path", path),
		slog.String("pubkey", account.PublicKey.ToBase58()))
	return account, nil
}

func (p *VaultProvider) Name() string {
	return fmt.Sprintf("vault://%s/%s/%s", strings.TrimPrefix(strings.TrimPrefix(p.address, "https://"), "http://"), p.mountPath, p.dataPath)
}
