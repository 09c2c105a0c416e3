// Package notecipher encrypts the private note of a puzzle record.
//
// Notes are sealed with AES-256-CBC (PKCS#7 padding) and authenticated with
// HMAC-SHA256 over iv||ciphertext. Both keys are derived from the configured
// key material with HKDF-SHA256, so any non-empty secret can be used as CIPHER_KEY.
// The envelope is stored as a single string: hex(iv):hex(ciphertext):hex(mac).
package notecipher

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-puzzle-api/internal/domain"
	"golang.org/x/crypto/hkdf"
)

const (
	keySize = 32
	macSize = sha256.Size
	hkdfTag = "puzzle-note-cipher-v1"
)

// Envelope is the iv + ciphertext pair stored in place of a plaintext note.
type Envelope struct {
	IV         []byte
	Ciphertext []byte
	MAC        []byte
}

// String serializes the envelope for storage.
func (e Envelope) String() string {
	return hex.EncodeToString(e.IV) + ":" + hex.EncodeToString(e.Ciphertext) + ":" + hex.EncodeToString(e.MAC)
}

// ParseEnvelope reverses Envelope.String. Malformed input is a decryption failure.
func ParseEnvelope(s string) (Envelope, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Envelope{}, fmt.Errorf("malformed envelope: %w", domain.ErrDecryptionFailure)
	}
	var raw [3][]byte
	for i, p := range parts {
		b, err := hex.DecodeString(p)
		if err != nil {
			return Envelope{}, fmt.Errorf("malformed envelope: %w", domain.ErrDecryptionFailure)
		}
		raw[i] = b
	}
	return Envelope{IV: raw[0], Ciphertext: raw[1], MAC: raw[2]}, nil
}

// Cipher is safe for concurrent use; it holds only immutable key material.
type Cipher struct {
	block   cipher.Block
	macKey  []byte
	fixedIV []byte
	rand    io.Reader
}

// New derives the encryption and MAC keys from secret. fixedIV, when non-empty,
// is used for every encryption instead of a fresh random IV and must be
// aes.BlockSize bytes long.
func New(secret []byte, fixedIV []byte) (*Cipher, error) {
	if len(secret) == 0 {
		return nil, errors.New("notecipher: empty key")
	}
	if len(fixedIV) != 0 && len(fixedIV) != aes.BlockSize {
		return nil, fmt.Errorf("notecipher: iv must be %d bytes, got %d", aes.BlockSize, len(fixedIV))
	}
	kdf := hkdf.New(sha256.New, secret, nil, []byte(hkdfTag))
	encKey := make([]byte, keySize)
	macKey := make([]byte, keySize)
	if _, err := io.ReadFull(kdf, encKey); err != nil {
		return nil, fmt.Errorf("notecipher: derive key: %w", err)
	}
	if _, err := io.ReadFull(kdf, macKey); err != nil {
		return nil, fmt.Errorf("notecipher: derive mac key: %w", err)
	}
	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("notecipher: %w", err)
	}
	return &Cipher{block: block, macKey: macKey, fixedIV: fixedIV, rand: rand.Reader}, nil
}

// NewFromConfig builds a Cipher from the CIPHER_KEY / CIPHER_IV settings.
// ivHex may be empty.
func NewFromConfig(key, ivHex string) (*Cipher, error) {
	var iv []byte
	if ivHex != "" {
		var err error
		iv, err = hex.DecodeString(ivHex)
		if err != nil {
			return nil, fmt.Errorf("notecipher: CIPHER_IV is not hex: %w", err)
		}
	}
	return New([]byte(key), iv)
}

// Encrypt seals plaintext into a new envelope.
func (c *Cipher) Encrypt(plaintext string) (Envelope, error) {
	iv := make([]byte, aes.BlockSize)
	if len(c.fixedIV) > 0 {
		copy(iv, c.fixedIV)
	} else if _, err := io.ReadFull(c.rand, iv); err != nil {
		return Envelope{}, fmt.Errorf("notecipher: generate iv: %w", err)
	}
	padded := pad([]byte(plaintext))
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ct, padded)
	return Envelope{IV: iv, Ciphertext: ct, MAC: c.sign(iv, ct)}, nil
}

// Decrypt opens env. Any tampering, truncation or key mismatch returns an
// error wrapping domain.ErrDecryptionFailure.
func (c *Cipher) Decrypt(env Envelope) (string, error) {
	if len(env.IV) != aes.BlockSize || len(env.Ciphertext) == 0 || len(env.Ciphertext)%aes.BlockSize != 0 || len(env.MAC) != macSize {
		return "", fmt.Errorf("bad envelope length: %w", domain.ErrDecryptionFailure)
	}
	if !hmac.Equal(env.MAC, c.sign(env.IV, env.Ciphertext)) {
		return "", fmt.Errorf("authentication failed: %w", domain.ErrDecryptionFailure)
	}
	pt := make([]byte, len(env.Ciphertext))
	cipher.NewCBCDecrypter(c.block, env.IV).CryptBlocks(pt, env.Ciphertext)
	pt, err := unpad(pt)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(pt) {
		return "", fmt.Errorf("plaintext is not utf-8: %w", domain.ErrDecryptionFailure)
	}
	return string(pt), nil
}

// EncryptString returns the serialized envelope for plaintext.
func (c *Cipher) EncryptString(plaintext string) (string, error) {
	env, err := c.Encrypt(plaintext)
	if err != nil {
		return "", err
	}
	return env.String(), nil
}

// DecryptString parses and opens a serialized envelope.
func (c *Cipher) DecryptString(s string) (string, error) {
	env, err := ParseEnvelope(s)
	if err != nil {
		return "", err
	}
	return c.Decrypt(env)
}

func (c *Cipher) sign(iv, ct []byte) []byte {
	m := hmac.New(sha256.New, c.macKey)
	m.Write(iv)
	m.Write(ct)
	return m.Sum(nil)
}

func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fmt.Errorf("bad padding: %w", domain.ErrDecryptionFailure)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("bad padding: %w", domain.ErrDecryptionFailure)
		}
	}
	return b[:len(b)-n], nil
}
