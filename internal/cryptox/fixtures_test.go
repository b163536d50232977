package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeBase64(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// packKey rebuilds the 32-byte link key from its parts.
func packKey(k *FileKey) []byte {
	raw := make([]byte, FileKeySize)
	copy(raw[16:24], k.IV)
	copy(raw[24:32], k.MetaMAC)
	for i := 0; i < 16; i++ {
		raw[i] = k.AESKey[i] ^ raw[i+16]
	}
	return raw
}

// encryptAttributes builds an attribute blob the way the remote stores it.
func encryptAttributes(t *testing.T, attrs *Attributes, key *FileKey) []byte {
	t.Helper()

	payload, err := json.Marshal(attrs)
	require.NoError(t, err)

	plaintext := append([]byte(attrPrefix), payload...)
	if pad := len(plaintext) % aes.BlockSize; pad != 0 {
		plaintext = append(plaintext, make([]byte, aes.BlockSize-pad)...)
	}

	block, err := aes.NewCipher(key.AESKey)
	require.NoError(t, err)

	blob := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, make([]byte, aes.BlockSize)).CryptBlocks(blob, plaintext)
	return blob
}
