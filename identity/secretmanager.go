package identity

import (
	"context"
	"fmt"
	"log/slog"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretspb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
)

// SecretManagerProvider reads the keypair from a GCP Secret Manager secret version,
// e.g. projects/<project>/secrets/<secret>/versions/latest.
type SecretManagerProvider struct {
	name string
	log  *slog.Logger
}

// NewSecretManagerProvider creates a provider for the secret version name.
func NewSecretManagerProvider(name string, log *slog.Logger) *SecretManagerProvider {
	return &SecretManagerProvider{name: name, log: log}
}

// Resolve accesses the secret version with application default credentials.
func (p *SecretManagerProvider) Resolve(ctx context.Context) (types.Account, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return types.Account{}, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &secretspb.AccessSecretVersionRequest{
		Name: p.name,
	})
	if err != nil {
		return types.Account{}, fmt.Errorf("AccessSecretVersion: %w", err)
	}

	account, err := ParseSecretKey(resp.GetPayload().GetData())
	if err != nil {
		return types.Account{}, fmt.Errorf("%s: %w", p.name, err)
	}

	p.log.Debug("Loaded keypair from Secret Manager",
		slog.String("secret", p.name),
		slog.String("pubkey", account.PublicKey.ToBase58()))
	return account, nil
}

func (p *SecretManagerProvider) Name() string {
	return "gcpsm://" + p.name
}
