// Package identity resolves the keypair that signs and pays for provisioning.
//
// Providers are selected by URI:
//
//	file:///path/to/id.json                       solana-keygen keypair file
//	env://SOLANA_SECRET_KEY                       base58 secret key in an environment variable
//	vault://host:8200/secret/token-authority      Vault KV v2 secret, field "keypair"
//	gcpsm://projects/p/secrets/s/versions/latest  GCP Secret Manager secret version
//
// A Funder wraps any provider and tops up the resolved account from the
// cluster faucet on test networks.
package identity

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruteri/spl-token-provisioner/interfaces"
)

// Options configures providers created by ProviderFor.
type Options struct {
	// Passphrase protects file keypairs. Empty means plain solana-keygen files.
	Passphrase []byte
	// Create generates a file keypair when the file does not exist.
	Create bool
}

// ProviderFor creates an identity provider from a location URI.
// A bare path is treated as a keypair file.
func ProviderFor(location string, opts Options, log *slog.Logger) (interfaces.IdentityProvider, error) {
	if log == nil {
		log = slog.Default()
	}

	if !strings.Contains(location, "://") {
		return NewFileProvider(expandPath(location), opts, log), nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid identity location: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		path := u.Path
		if u.Host != "" {
			path = u.Host + "/" + strings.TrimPrefix(path, "/")
		}
		if path == "" {
			return nil, fmt.Errorf("empty path in identity location %q", location)
		}
		return NewFileProvider(expandPath(path), opts, log), nil

	case "env":
		if u.Host == "" {
			return nil, fmt.Errorf("missing variable name in identity location %q", location)
		}
		return NewEnvProvider(u.Host), nil

	case "vault":
		// vault://host:port/mount/path/to/secret?field=keypair&scheme=http
		mountPath, dataPath, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if u.Host == "" || mountPath == "" || dataPath == "" {
			return nil, fmt.Errorf("identity location %q must be vault://host:port/mount/path", location)
		}
		scheme := u.Query().Get("scheme")
		if scheme == "" {
			scheme = "https"
		}
		return NewVaultProvider(scheme+"://"+u.Host, mountPath, dataPath, u.Query().Get("field"), log)

	case "gcpsm":
		name := strings.Trim(u.Host+u.Path, "/")
		if !strings.HasPrefix(name, "projects/") {
			return nil, fmt.Errorf("identity location %q must be gcpsm://projects/<p>/secrets/<s>/versions/<v>", location)
		}
		return NewSecretManagerProvider(name, log), nil

	default:
		return nil, fmt.Errorf("unsupported identity scheme: %s", u.Scheme)
	}
}

// expandPath resolves a leading ~ and environment variables.
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
