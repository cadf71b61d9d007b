package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/goliatone/go-portal/pkg/interfaces"
)

const (
	// Prefix marks values produced by SecretBox.Encrypt.
	Prefix    = "enc:v1:"
	keySize   = 32
	nonceSize = 24
)

var (
	ErrInvalidKey        = errors.New("crypto: key must be 32 bytes")
	ErrMalformedCipher   = errors.New("crypto: malformed ciphertext")
	ErrDecryptionFailed  = errors.New("crypto: decryption failed")
	ErrEncrypterDisabled = errors.New("crypto: no application key configured")
)

// SecretBox encrypts short secrets (SMTP passwords, storage credentials)
// with NaCl secretbox under the application key.
type SecretBox struct {
	key    [keySize]byte
	random io.Reader
}

var _ interfaces.Encrypter = (*SecretBox)(nil)

// NewSecretBox builds an encrypter from a 32 byte key.
func NewSecretBox(key []byte) (*SecretBox, error) {
	if len(key) != keySize {
		return nil, ErrInvalidKey
	}
	box := &SecretBox{random: rand.Reader}
	copy(box.key[:], key)
	return box, nil
}

// Encrypt seals plaintext and returns it prefixed and base64 encoded.
// Empty input stays empty.
func (b *SecretBox) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(b.random, nonce[:]); err != nil {
		return "", fmt.Errorf("crypto: read nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &b.key)
	return Prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (b *SecretBox) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	if !IsEncrypted(ciphertext) {
		return "", ErrMalformedCipher
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, Prefix))
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrMalformedCipher
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}

// IsEncrypted reports whether value carries the ciphertext prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

// Disabled returns an Encrypter that refuses to handle non-empty secrets.
// It is used when no application key is configured.
func Disabled() interfaces.Encrypter {
	return disabled{}
}

type disabled struct{}

func (disabled) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	return "", ErrEncrypterDisabled
}

func (disabled) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	return "", ErrEncrypterDisabled
}
