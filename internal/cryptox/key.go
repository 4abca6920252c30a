// Package cryptox implements the cipher stream used for relay blobs:
// AES-128-CBC with PKCS#5 padding, applied as a stream, with the MD5 digest
// and byte count of the ciphertext accumulated on the way.
//
// Two layouts exist. The default writes a random 16-byte IV in front of the
// ciphertext. The legacy layout uses an all-zero IV and no prefix; it is kept
// so blobs written by older deployments stay readable.
package cryptox

import (
	"crypto/aes"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/corral/internal/common"
)

// KeySize is the symmetric key length in bytes (AES-128).
const KeySize = 16

// GenerateKey returns a fresh random key. Every uploaded object gets its own.
func GenerateKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// EncodeKey renders a key for embedding in object metadata.
func EncodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// DecodeKey parses a key produced by EncodeKey.
func DecodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("decode key: %d bytes, want %d", len(key), KeySize)
	}
	return key, nil
}

func checkKey(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	return nil
}

var zeroIV = make([]byte, aes.BlockSize)
