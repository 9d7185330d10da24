// Package secretbox seals small secrets (SMTP/IMAP passwords) for storage
// at rest using NaCl secretbox (XSalsa20-Poly1305) with a 32-byte master key.
package secretbox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const keySize = 32

// ErrMalformed is returned when sealed data is too short or fails to open.
var ErrMalformed = errors.New("secretbox: malformed or corrupted ciphertext")

// Box seals and opens secrets with a fixed master key.
type Box struct {
	key [keySize]byte
}

// New creates a Box from a base64-encoded 32-byte master key.
// Generate one with: openssl rand -base64 32
func New(masterKeyB64 string) (*Box, error) {
	raw, err := base64.StdEncoding.DecodeString(masterKeyB64)
	if err != nil {
		return nil, fmt.Errorf("secretbox: decode master key: %w", err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("secretbox: master key must be %d bytes, got %d", keySize, len(raw))
	}
	b := &Box{}
	copy(b.key[:], raw)
	return b, nil
}

// Seal encrypts the plaintext. Output layout: nonce(24) || ciphertext.
func (b *Box) Seal(plaintext string) ([]byte, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("secretbox: nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &b.key), nil
}

// Open decrypts data produced by Seal.
func (b *Box) Open(sealed []byte) (string, error) {
	if len(sealed) < 24+secretbox.Overhead {
		return "", ErrMalformed
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	out, ok := secretbox.Open(nil, sealed[24:], &nonce, &b.key)
	if !ok {
		return "", ErrMalformed
	}
	return string(out), nil
}
