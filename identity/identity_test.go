package identity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	"github.com/ruteri/spl-token-provisioner/cryptoutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKeypairRoundTrip(t *testing.T) {
	account := types.NewAccount()

	encoded, err := EncodeKeypair(account)
	require.NoError(t, err)
	assert.Equal(t, byte('['), encoded[0])

	decoded, err := DecodeKeypair(encoded)
	require.NoError(t, err)
	assert.Equal(t, account.PublicKey, decoded.PublicKey)
	assert.Equal(t, account.PrivateKey, decoded.PrivateKey)
}

func TestDecodeKeypair_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "hello"},
		{name: "short", data: "[1,2,3]"},
		{name: "object", data: `{"key":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeKeypair([]byte(tt.data))
			assert.True(t, errors.Is(err, ErrInvalidKeypair))
		})
	}

	outOfRange := make([]int, 64)
	outOfRange[10] = 256
	data, err := json.Marshal(outOfRange)
	require.NoError(t, err)
	_, err = DecodeKeypair(data)
	assert.True(t, errors.Is(err, ErrInvalidKeypair))
}

func TestParseSecretKey(t *testing.T) {
	account := types.NewAccount()

	parsed, err := ParseSecretKey([]byte(base58.Encode(account.PrivateKey)))
	require.NoError(t, err)
	assert.Equal(t, account.PublicKey, parsed.PublicKey)

	encoded, err := EncodeKeypair(account)
	require.NoError(t, err)
	parsed, err = ParseSecretKey(append([]byte("  "), encoded...))
	require.NoError(t, err)
	assert.Equal(t, account.PublicKey, parsed.PublicKey)

	_, err = ParseSecretKey([]byte(base58.Encode([]byte("too short"))))
	assert.True(t, errors.Is(err, ErrInvalidKeypair))

	_, err = ParseSecretKey(nil)
	assert.True(t, errors.Is(err, ErrInvalidKeypair))
}

func TestEncryptedKeypair(t *testing.T) {
	account := types.NewAccount()
	passphrase := []byte("hunter2")

	sealed, err := EncryptKeypair(account, passphrase)
	require.NoError(t, err)
	assert.True(t, isEncrypted(sealed))
	assert.Contains(t, string(sealed), account.PublicKey.ToBase58())

	opened, err := DecryptKeypair(sealed, passphrase)
	require.NoError(t, err)
	assert.Equal(t, account.PrivateKey, opened.PrivateKey)

	_, err = DecryptKeypair(sealed, []byte("wrong"))
	assert.True(t, errors.Is(err, cryptoutils.ErrDecryption))

	_, err = DecryptKeypair(sealed, nil)
	assert.True(t, errors.Is(err, ErrPassphraseRequired))
}

func TestFileProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("generates missing keypair", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "solana", "id.json")
		provider := NewFileProvider(path, Options{Create: true}, testLogger())

		first, err := provider.Resolve(ctx)
		require.NoError(t, err)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		second, err := provider.Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.PublicKey, second.PublicKey)
	})

	t.Run("missing keypair without create", func(t *testing.T) {
		provider := NewFileProvider(filepath.Join(t.TempDir(), "id.json"), Options{}, testLogger())
		_, err := provider.Resolve(ctx)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("loads existing keypair", func(t *testing.T) {
		account := types.NewAccount()
		encoded, err := EncodeKeypair(account)
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "id.json")
		require.NoError(t, os.WriteFile(path, encoded, 0600))

		resolved, err := NewFileProvider(path, Options{Create: true}, testLogger()).Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, account.PublicKey, resolved.PublicKey)
	})

	t.Run("encrypted keypair", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "id.json")
		opts := Options{Create: true, Passphrase: []byte("hunter2")}

		created, err := NewFileProvider(path, opts, testLogger()).Resolve(ctx)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, isEncrypted(data))

		loaded, err := NewFileProvider(path, opts, testLogger()).Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, created.PublicKey, loaded.PublicKey)

		_, err = NewFileProvider(path, Options{}, testLogger()).Resolve(ctx)
		assert.True(t, errors.Is(err, ErrPassphraseRequired))
	})
}

func TestEnvProvider(t *testing.T) {
	account := types.NewAccount()
	t.Setenv("TEST_PROVISIONER_SECRET_KEY", base58.Encode(account.PrivateKey))

	resolved, err := NewEnvProvider("TEST_PROVISIONER_SECRET_KEY").Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, account.PublicKey, resolved.PublicKey)

	_, err = NewEnvProvider("TEST_PROVISIONER_UNSET_VARIABLE").Resolve(context.Background())
	assert.Error(t, err)
}

func TestProviderFor(t *testing.T) {
	logger := testLogger()

	tests := []struct {
		location string
		name     string
		fail     bool
	}{
		{location: "file:///tmp/id.json", name: "file:///tmp/id.json"},
		{location: "/tmp/id.json", name: "file:///tmp/id.json"},
		{location: "env://SOLANA_SECRET_KEY", name: "env://SOLANA_SECRET_KEY"},
		{location: "vault://vault.local:8200/secret/token-authority?scheme=http", name: "vault://vault.local:8200/secret/token-authority"},
		{location: "gcpsm://projects/p/secrets/s/versions/latest", name: "gcpsm://projects/p/secrets/s/versions/latest"},
		{location: "vault://vault.local:8200/secret", fail: true},
		{location: "gcpsm://secrets/s", fail: true},
		{location: "env://", fail: true},
		{location: "ledger://usb", fail: true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			provider, err := ProviderFor(tt.location, Options{}, logger)
			if tt.fail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, provider.Name())
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/solana/id.json"), expandPath("~/.config/solana/id.json"))

	t.Setenv("TEST_PROVISIONER_DIR", "/srv/keys")
	assert.Equal(t, "/srv/keys/id.json", expandPath("$TEST_PROVISIONER_DIR/id.json"))
}

func TestParsePublicKey(t *testing.T) {
	account := types.NewAccount()

	pk, err := ParsePublicKey(account.PublicKey.ToBase58())
	require.NoError(t, err)
	assert.Equal(t, account.PublicKey, pk)

	_, err = ParsePublicKey("11111")
	assert.Error(t, err)

	_, err = ParsePublicKey("0OIl")
	assert.Error(t, err)
}
