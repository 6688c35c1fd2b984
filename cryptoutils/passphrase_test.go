package cryptoutils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPassphraseEncryptionDecryption tests the EncryptWithPassphrase and DecryptWithPassphrase functions
func TestPassphraseEncryptionDecryption(t *testing.T) {
	passphrase := []byte("correct horse battery staple")

	testCases := []struct {
		name string
		data []byte
	}{
		{
			name: "Keypair JSON",
			data: []byte(`[12,200,7,93,1,0,255]`),
		},
		{
			name: "Binary data",
			data: []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD},
		},
		{
			name: "Empty data",
			data: []byte{},
		},
		{
			name: "Long data",
			data: make([]byte, 1024),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encryptedData, err := EncryptWithPassphrase(passphrase, tc.data)
			require.NoError(t, err)
			require.Greater(t, len(encryptedData), len(tc.data))

			decryptedData, err := DecryptWithPassphrase(passphrase, encryptedData)
			require.NoError(t, err)
			require.Equal(t, len(tc.data), len(decryptedData))
			if len(tc.data) > 0 {
				require.Equal(t, tc.data, decryptedData)
			}
		})
	}
}

// TestPassphraseFreshSalt checks that equal inputs do not produce equal ciphertexts
func TestPassphraseFreshSalt(t *testing.T) {
	a, err := EncryptWithPassphrase([]byte("pass"), []byte("data"))
	require.NoError(t, err)
	b, err := EncryptWithPassphrase([]byte("pass"), []byte("data"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

// TestDecryptionWithWrongPassphrase tests that decryption fails with the wrong passphrase
func TestDecryptionWithWrongPassphrase(t *testing.T) {
	encryptedData, err := EncryptWithPassphrase([]byte("right"), []byte("Top secret data"))
	require.NoError(t, err)

	_, err = DecryptWithPassphrase([]byte("wrong"), encryptedData)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDecryption))
}

// TestInvalidPassphraseInputs tests error handling for malformed inputs
func TestInvalidPassphraseInputs(t *testing.T) {
	_, err := EncryptWithPassphrase(nil, []byte("test"))
	require.Error(t, err)

	_, err = DecryptWithPassphrase([]byte("pass"), []byte("short"))
	require.Error(t, err)
}
