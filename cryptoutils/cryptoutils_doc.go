// Package cryptoutils provides passphrase-based encryption for signing keys at rest.
//
// Keys are derived from a passphrase with argon2id and data is sealed with
// AES-256-GCM. Every encryption uses a fresh random salt and nonce.
//
// # Encryption Format
//
// The encrypted data follows this binary format:
//
//	[salt (16 bytes)][nonce (12 bytes)][ciphertext]
//
// Where:
//   - Salt: argon2id salt, random per encryption
//   - Nonce: 12-byte nonce for AES-GCM
//   - Ciphertext: The encrypted data with GCM authentication tag
//
// Decryption with a wrong passphrase fails GCM authentication and returns ErrDecryption.
package cryptoutils
