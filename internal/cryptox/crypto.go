// Package cryptox implements the symmetric primitives used by MEGA public
// file links: key unpacking, attribute decryption and seekable content
// decryption.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

const (
	// FileKeySize is the length of the key carried in a file link.
	FileKeySize = 32

	attrPrefix = "MEGA"
)

var (
	ErrKeySize       = errors.New("file key must be 32 bytes")
	ErrBadAttributes = errors.New("attributes cannot be decrypted with this key")
)

// FileKey is the unpacked form of a 32-byte file link key.
type FileKey struct {
	AESKey  []byte // 16 bytes, content and attribute cipher key
	IV      []byte // 8 bytes, high half of the CTR counter block
	MetaMAC []byte // 8 bytes, condensed MAC, unused for streaming
}

// Attributes is the decrypted attribute record of a file node.
type Attributes struct {
	Name string `json:"n"`
}

// DecodeBase64 decodes MEGA's URL-safe, unpadded base64. Standard alphabet
// characters and padding are tolerated.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)
	return base64.RawURLEncoding.DecodeString(s)
}

// UnpackFileKey splits a raw link key into its AES key, IV and MAC parts.
// The AES key is the XOR of the two 16-byte halves.
func UnpackFileKey(raw []byte) (*FileKey, error) {
	if len(raw) != FileKeySize {
		return nil, ErrKeySize
	}

	aesKey := make([]byte, 16)
	for i := range aesKey {
		aesKey[i] = raw[i] ^ raw[i+16]
	}

	return &FileKey{
		AESKey:  aesKey,
		IV:      bytes.Clone(raw[16:24]),
		MetaMAC: bytes.Clone(raw[24:32]),
	}, nil
}

// DecryptAttributes decrypts an attribute blob with AES-CBC and a zero IV.
//
// The plaintext is "MEGA" followed by a JSON object, zero padded to the block
// size. A missing prefix means the key is wrong.
func DecryptAttributes(blob []byte, key *FileKey) (*Attributes, error) {
	if len(blob) == 0 || len(blob)%aes.BlockSize != 0 {
		return nil, ErrBadAttributes
	}

	block, err := aes.NewCipher(key.AESKey)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(blob))
	cipher.NewCBCDecrypter(block, make([]byte, aes.BlockSize)).CryptBlocks(plaintext, blob)

	if !bytes.HasPrefix(plaintext, []byte(attrPrefix+"{")) {
		return nil, ErrBadAttributes
	}

	plaintext = bytes.TrimRight(plaintext[len(attrPrefix):], "\x00")

	attrs := &Attributes{}
	if err := json.Unmarshal(plaintext, attrs); err != nil {
		return nil, ErrBadAttributes
	}

	return attrs, nil
}

// NewCTRStream returns the AES-CTR keystream positioned at byte offset of the
// file. The counter block is IV || big-endian block index.
func NewCTRStream(key *FileKey, offset int64) (cipher.Stream, error) {
	block, err := aes.NewCipher(key.AESKey)
	if err != nil {
		return nil, err
	}

	counter := make([]byte, aes.BlockSize)
	copy(counter, key.IV)
	binary.BigEndian.PutUint64(counter[8:], uint64(offset/aes.BlockSize))

	stream := cipher.NewCTR(block, counter)

	if skip := offset % aes.BlockSize; skip > 0 {
		discard := make([]byte, skip)
		stream.XORKeyStream(discard, discard)
	}

	return stream, nil
}

// NewDecryptReader decrypts r, whose first byte is the file byte at offset.
func NewDecryptReader(r io.Reader, key *FileKey, offset int64) (io.Reader, error) {
	stream, err := NewCTRStream(key, offset)
	if err != nil {
		return nil, err
	}
	return cipher.StreamReader{S: stream, R: r}, nil
}
