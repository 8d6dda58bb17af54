// Package cryptox encrypts sensitive employee fields and MFA secrets at rest.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// ErrCiphertextTooShort is returned by Open when the input cannot hold a nonce.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// DeriveKey stretches a passphrase into a 32-byte AES-256 key with argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-GCM. The random nonce is prepended to
// the returned ciphertext.
func Seal(plaintext, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func Open(sealed, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	n := aesgcm.NonceSize()
	if len(sealed) < n {
		return nil, ErrCiphertextTooShort
	}
	return aesgcm.Open(nil, sealed[:n], sealed[n:], nil)
}

// Box binds a key for repeated string encryption.
type Box struct {
	key []byte
}

func NewBox(key []byte) *Box {
	return &Box{key: key}
}

// EncryptString seals s. An empty string stays empty (nil).
func (b *Box) EncryptString(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return Seal([]byte(s), b.key)
}

// DecryptString opens data produced by EncryptString.
func (b *Box) DecryptString(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	p, err := Open(data, b.key)
	if err != nil {
		return "", err
	}
	return string(p), nil
}
