// Package aesgcm implements the secret cipher with AES-256-GCM.
package aesgcm

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/domain/port/driven"
)

const (
	// KeySize is the required key length in bytes (AES-256).
	KeySize = 32
	// NonceSize is the GCM standard nonce length in bytes.
	NonceSize = 12
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

// Compile-time interface satisfaction check.
var _ driven.SecretCipher = (*Engine)(nil)

// blobEncoding rejects non-zero padding bits, so every stored blob has
// exactly one valid spelling and a flipped bit never decodes to the same
// bytes.
var blobEncoding = base64.StdEncoding.Strict()

// Engine encrypts secret strings into base64(nonce || ciphertext || tag).
// The AEAD is built once and never mutated, so an Engine is safe for
// concurrent use.
type Engine struct {
	aead cipher.AEAD
	rand io.Reader
}

// New creates an Engine for a 32-byte key. Any other length is a
// configuration error.
func New(key []byte) (*Engine, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", model.ErrConfiguration, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: aes.NewCipher: %v", model.ErrConfiguration, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: cipher.NewGCM: %v", model.ErrConfiguration, err)
	}

	return &Engine{aead: aead, rand: rand.Reader}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (e *Engine) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := io.ReadFull(e.rand, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends to nonce, producing: nonce || ciphertext || tag.
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return blobEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a blob produced by Encrypt. A blob that is not canonical
// base64 matches both ErrMalformedCiphertext and ErrTampered. Errors never
// include any part of the blob or the recovered bytes.
func (e *Engine) Decrypt(blob string) (string, error) {
	data, err := blobEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: %w: not valid base64", model.ErrMalformedCiphertext, model.ErrTampered)
	}
	if len(data) < NonceSize+TagSize {
		return "", fmt.Errorf("%w: %d bytes is shorter than nonce and tag", model.ErrMalformedCiphertext, len(data))
	}

	nonce, sealed := data[:NonceSize], data[NonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", model.ErrTampered
	}

	return string(plaintext), nil
}

// DecodeKey turns configured key material into raw key bytes. It accepts
// 64 hex characters, standard or URL-safe base64 (padded or not), or a raw
// 32-byte string, in that order of preference.
func DecodeKey(material string) ([]byte, error) {
	if material == "" {
		return nil, fmt.Errorf("%w: key material is empty", model.ErrConfiguration)
	}

	if len(material) == hex.EncodedLen(KeySize) {
		if key, err := hex.DecodeString(material); err == nil {
			return key, nil
		}
	}

	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if key, err := enc.DecodeString(material); err == nil && len(key) == KeySize {
			return key, nil
		}
	}

	if len(material) == KeySize {
		return []byte(material), nil
	}

	return nil, fmt.Errorf("%w: key material does not decode to %d bytes", model.ErrConfiguration, KeySize)
}

// GenerateKey returns a fresh random key encoded as standard base64.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("rand key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
