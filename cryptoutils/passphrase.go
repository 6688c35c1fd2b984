package cryptoutils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	nonceSize = 12 // standard GCM nonce

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// ErrDecryption is returned when ciphertext cannot be opened with the given passphrase.
var ErrDecryption = errors.New("decryption failed")

// DeriveKey derives a 32-byte AES key from a passphrase and salt with argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// EncryptWithPassphrase seals data with AES-256-GCM under a key derived from passphrase.
// A fresh salt and nonce are generated for each call.
//
// Format: [salt (16 bytes)][nonce (12 bytes)][ciphertext]
func EncryptWithPassphrase(passphrase []byte, data []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("empty passphrase")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	result := make([]byte, 0, saltSize+nonceSize+len(data)+aesGCM.Overhead())
	result = append(result, salt...)
	result = append(result, nonce...)
	return aesGCM.Seal(result, nonce, data, nil), nil
}

// DecryptWithPassphrase opens data sealed by EncryptWithPassphrase.
func DecryptWithPassphrase(passphrase []byte, encryptedData []byte) ([]byte, error) {
	if len(encryptedData) < saltSize+nonceSize {
		return nil, errors.New("encrypted data too short")
	}

	salt := encryptedData[:saltSize]
	nonce := encryptedData[saltSize : saltSize+nonceSize]
	ciphertext := encryptedData[saltSize+nonceSize:]

	aesGCM, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	aesBlock, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(aesBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
