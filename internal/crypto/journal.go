package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Journal entries are encrypted at rest. The stored form is
// "enc:" + base64(nonce || ciphertext); values without the prefix are
// treated as legacy plaintext and returned as-is by Open.
const encPrefix = "enc:"

// JournalCipher seals and opens journal content with a key derived from the
// service master secret.
type JournalCipher struct {
	key []byte
}

// NewJournalCipher derives the journal key from the master secret via
// HKDF-SHA256. The secret must be non-empty.
func NewJournalCipher(secret []byte) (*JournalCipher, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty journal secret")
	}
	r := hkdf.New(sha256.New, secret, nil, []byte("dailydeck/journal"))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := r.Read(key); err != nil {
		return nil, fmt.Errorf("derive journal key: %w", err)
	}
	return &JournalCipher{key: key}, nil
}

// Seal encrypts plaintext with XChaCha20-Poly1305 and a random nonce.
func (c *JournalCipher) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	nonce, err := RandBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return "", err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, []byte(plaintext), nil)...)
	return encPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts stored content. Legacy values without the "enc:" prefix are
// returned unchanged (entries written before encryption was introduced).
func (c *JournalCipher) Open(stored string) (string, error) {
	if !strings.HasPrefix(stored, encPrefix) {
		return stored, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, encPrefix))
	if err != nil {
		return "", fmt.Errorf("decode journal ciphertext: %w", err)
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", errors.New("journal ciphertext too short")
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	nonce := raw[:chacha20poly1305.NonceSizeX]
	ct := raw[chacha20poly1305.NonceSizeX:]
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("open journal ciphertext: %w", err)
	}
	return string(pt), nil
}

// IsSealed reports whether stored content is encrypted.
func IsSealed(stored string) bool {
	return strings.HasPrefix(stored, encPrefix)
}
