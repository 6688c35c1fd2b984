package identity

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	"github.com/ruteri/spl-token-provisioner/cryptoutils"
)

// EncryptionScheme names the envelope format of encrypted keypair files.
const EncryptionScheme = "argon2id-aes256gcm"

var (
	// ErrInvalidKeypair is returned for secret key material that is not a 64-byte ed25519 key.
	ErrInvalidKeypair = errors.New("invalid keypair")

	// ErrPassphraseRequired is returned when an encrypted keypair is loaded without a passphrase.
	ErrPassphraseRequired = errors.New("keypair is encrypted, passphrase required")
)

// encryptedKeypair is the on-disk envelope of a passphrase-protected keypair.
type encryptedKeypair struct {
	PublicKey  string `json:"pubkey"`
	Encryption string `json:"encryption"`
	Ciphertext string `json:"ciphertext"`
}

// DecodeKeypair parses a solana-keygen keypair file: a JSON array of 64 integers.
func DecodeKeypair(data []byte) (types.Account, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return types.Account{}, fmt.Errorf("%w: unmarshal keypair json: %v", ErrInvalidKeypair, err)
	}

	if len(ints) != ed25519.PrivateKeySize {
		return types.Account{}, fmt.Errorf("%w: unexpected secret key length: got %d, want %d", ErrInvalidKeypair, len(ints), ed25519.PrivateKeySize)
	}

	keyBytes := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return types.Account{}, fmt.Errorf("%w: byte out of range at %d: %d", ErrInvalidKeypair, i, v)
		}
		keyBytes[i] = byte(v)
	}

	return accountFromBytes(keyBytes)
}

// EncodeKeypair serializes an account in the solana-keygen JSON array format.
func EncodeKeypair(account types.Account) ([]byte, error) {
	if len(account.PrivateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key has %d bytes", ErrInvalidKeypair, len(account.PrivateKey))
	}

	ints := make([]int, len(account.PrivateKey))
	for i, b := range account.PrivateKey {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

// ParseSecretKey accepts either a JSON keypair array or a base58-encoded 64-byte secret key.
func ParseSecretKey(data []byte) (types.Account, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return types.Account{}, fmt.Errorf("%w: empty secret key", ErrInvalidKeypair)
	}

	if data[0] == '[' {
		return DecodeKeypair(data)
	}

	keyBytes, err := base58.Decode(string(data))
	if err != nil {
		return types.Account{}, fmt.Errorf("%w: decode base58: %v", ErrInvalidKeypair, err)
	}
	if len(keyBytes) != ed25519.PrivateKeySize {
		return types.Account{}, fmt.Errorf("%w: unexpected secret key length: got %d, want %d", ErrInvalidKeypair, len(keyBytes), ed25519.PrivateKeySize)
	}
	return accountFromBytes(keyBytes)
}

// ParsePublicKey decodes a base58 address, rejecting anything that is not 32 bytes.
func ParsePublicKey(s string) (common.PublicKey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("decode base58: %w", err)
	}
	if len(b) != common.PublicKeyLength {
		return common.PublicKey{}, fmt.Errorf("expected %d bytes, got %d", common.PublicKeyLength, len(b))
	}
	return common.PublicKeyFromBytes(b), nil
}

// EncryptKeypair seals an account under a passphrase into a JSON envelope.
func EncryptKeypair(account types.Account, passphrase []byte) ([]byte, error) {
	plain, err := EncodeKeypair(account)
	if err != nil {
		return nil, err
	}

	sealed, err := cryptoutils.EncryptWithPassphrase(passphrase, plain)
	if err != nil {
		return nil, fmt.Errorf("encrypt keypair: %w", err)
	}

	return json.MarshalIndent(encryptedKeypair{
		PublicKey:  account.PublicKey.ToBase58(),
		Encryption: EncryptionScheme,
		Ciphertext: base64.StdEncoding.EncodeToString(sealed),
	}, "", "  ")
}

// DecryptKeypair opens an envelope produced by EncryptKeypair and checks the
// recovered key against the envelope's public key.
func DecryptKeypair(data []byte, passphrase []byte) (types.Account, error) {
	var envelope encryptedKeypair
	if err := json.Unmarshal(data, &envelope); err != nil {
		return types.Account{}, fmt.Errorf("%w: unmarshal envelope: %v", ErrInvalidKeypair, err)
	}

	if envelope.Encryption != EncryptionScheme {
		return types.Account{}, fmt.Errorf("%w: unsupported encryption %q", ErrInvalidKeypair, envelope.Encryption)
	}
	if len(passphrase) == 0 {
		return types.Account{}, ErrPassphraseRequired
	}

	sealed, err := base64.StdEncoding.DecodeString(envelope.Ciphertext)
	if err != nil {
		return types.Account{}, fmt.Errorf("%w: decode ciphertext: %v", ErrInvalidKeypair, err)
	}

	plain, err := cryptoutils.DecryptWithPassphrase(passphrase, sealed)
	if err != nil {
		return types.Account{}, err
	}

	account, err := DecodeKeypair(plain)
	if err != nil {
		return types.Account{}, err
	}

	if envelope.PublicKey != "" && envelope.PublicKey != account.PublicKey.ToBase58() {
		return types.Account{}, fmt.Errorf("%w: public key mismatch: envelope %s, key %s", ErrInvalidKeypair, envelope.PublicKey, account.PublicKey.ToBase58())
	}
	return account, nil
}

// isEncrypted reports whether keypair file contents are an encrypted envelope.
func isEncrypted(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

func accountFromBytes(keyBytes []byte) (types.Account, error) {
	account, err := types.AccountFromBytes(keyBytes)
	if err != nil {
		return types.Account{}, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
	}
	return account, nil
}
