package identity

import (
	"context"
	"fmt"
	"os"

	"github.com/blocto/solana-go-sdk/types"
)

// EnvProvider reads the secret key from an environment variable, either
// base58-encoded or as a JSON keypair array.
type EnvProvider struct {
	variable string
}

// NewEnvProvider creates a provider reading the named variable.
func NewEnvProvider(variable string) *EnvProvider {
	return &EnvProvider{variable: variable}
}

func (p *EnvProvider) Resolve(ctx context.Context) (types.Account, error) {
	value, ok := os.LookupEnv(p.variable)
	if !ok {
		return types.Account{}, fmt.Errorf("environment variable %s is not set", p.variable)
	}

	account, err := ParseSecretKey([]byte(value))
	if err != nil {
		return types.Account{}, fmt.Errorf("%s: %w", p.variable, err)
	}
	return account, nil
}

func (p *EnvProvider) Name() string {
	return "env://" + p.variable
}
