package mega

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/megadl/internal/cryptox"
)

func encodeBase64(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// encryptAttributes builds the "at" blob served by the API: "MEGA" + JSON,
// zero padded, AES-CBC with a zero IV.
func encryptAttributes(t *testing.T, name string, key *cryptox.FileKey) string {
	t.Helper()

	payload, err := json.Marshal(cryptox.Attributes{Name: name})
	require.NoError(t, err)

	plaintext := append([]byte("MEGA"), payload...)
	if pad := len(plaintext) % aes.BlockSize; pad != 0 {
		plaintext = append(plaintext, make([]byte, aes.BlockSize-pad)...)
	}

	block, err := aes.NewCipher(key.AESKey)
	require.NoError(t, err)

	blob := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, make([]byte, aes.BlockSize)).CryptBlocks(blob, plaintext)
	return encodeBase64(blob)
}
