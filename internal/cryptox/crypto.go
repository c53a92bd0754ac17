// Package cryptox implements the at-rest encryption of server credentials.
//
// A secret is stored as a single text field: hex(nonce) followed by
// hex(ciphertext), where the nonce is a fresh 16-byte value and the
// ciphertext is AES in OFB mode. The layout is bit-compatible with blobs
// written by the previous Node.js backend (aes-js, key = UTF-8 bytes of the
// configured db key).
//
// The scheme gives confidentiality only. A corrupted blob decrypts to wrong
// bytes; the only detectable failure is output that is not valid UTF-8.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"golang.org/x/crypto/hkdf"
)

// NonceSize is the per-secret nonce length in bytes (one AES block).
const NonceSize = aes.BlockSize

const nonceHexLen = 2 * NonceSize

var ErrInvalidKey = errors.New("invalid cipher key")

var hkdfInfo = []byte("matchkeeper rcon secret v1")

// Cipher encrypts and decrypts secret fields with a process-wide key.
// It holds no mutable state and is safe for concurrent use.
type Cipher struct {
	key []byte
}

// NewCipher copies key and returns a Cipher. The key must be a valid AES key
// length (16, 24 or 32 bytes).
func NewCipher(key []byte) (*Cipher, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: need 16, 24 or 32 bytes, got %d", ErrInvalidKey, len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Cipher{key: k}, nil
}

// KeyFromSecret turns the configured key string into AES key bytes.
//
// Strings of a valid AES key length are used as-is, which keeps existing
// blobs readable. Any other length is stretched to 32 bytes with HKDF-SHA256.
func KeyFromSecret(secret string) ([]byte, error) {
	switch len(secret) {
	case 16, 24, 32:
		return []byte(secret), nil
	case 0:
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// FromSecret builds a Cipher from the configured key string.
func FromSecret(secret string) (*Cipher, error) {
	key, err := KeyFromSecret(secret)
	if err != nil {
		return nil, err
	}
	return NewCipher(key)
}

// Encrypt returns hex(nonce) + hex(ciphertext) for plaintext. Every call
// draws a new nonce from crypto/rand.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce, err := common.RandomBytes(NonceSize)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	out := make([]byte, len(plaintext))
	//nolint:staticcheck // OFB is required to read blobs written by the previous backend.
	cipher.NewOFB(block, nonce).XORKeyStream(out, []byte(plaintext))

	return hex.EncodeToString(nonce) + hex.EncodeToString(out), nil
}

// EncryptOptional encrypts *plaintext, passing absence through: a nil
// plaintext yields a nil blob.
func (c *Cipher) EncryptOptional(plaintext *string) (*string, error) {
	if plaintext == nil {
		return nil, nil
	}
	blob, err := c.Encrypt(*plaintext)
	if err != nil {
		return nil, err
	}
	return &blob, nil
}

// Decrypt parses blob and returns the plaintext.
//
// It fails with common.ErrMalformedSecret when blob is shorter than a nonce
// or is not clean hex, and with common.ErrDecryptionFailed when the key
// cannot produce valid UTF-8 text. Errors never carry key or blob bytes.
func (c *Cipher) Decrypt(blob string) (string, error) {
	if len(blob) < nonceHexLen {
		return "", fmt.Errorf("%w: too short", common.ErrMalformedSecret)
	}
	nonce, err := hex.DecodeString(blob[:nonceHexLen])
	if err != nil {
		return "", fmt.Errorf("%w: bad nonce encoding", common.ErrMalformedSecret)
	}
	ciphertext, err := hex.DecodeString(blob[nonceHexLen:])
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding", common.ErrMalformedSecret)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: unusable key", common.ErrDecryptionFailed)
	}

	plain := make([]byte, len(ciphertext))
	//nolint:staticcheck // see Encrypt.
	cipher.NewOFB(block, nonce).XORKeyStream(plain, ciphertext)

	if !utf8.Valid(plain) {
		return "", fmt.Errorf("%w: output is not valid text", common.ErrDecryptionFailed)
	}
	return string(plain), nil
}
