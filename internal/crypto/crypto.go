// Package crypto wraps the two primitives the vault's key hierarchy rests
// on: Argon2id for deriving a key-encryption-key from a passphrase, and
// AES-256-GCM for authenticated encryption of both the wrapped DEK and user
// files.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	KeyLength   = 32 // AES-256 key length, also the Argon2id output length
	NonceLength = 12 // GCM nonce length
	SaltLength  = 16 // Argon2 salt length (key file layout, offset 0)
	TagLength   = 16 // GCM authentication tag length

	// Argon2id parameters are fixed across versions: every key file ever
	// written must remain unlockable with the same derivation. Changing
	// any of these requires a key file format version bump.
	argon2Time    uint32 = 2
	argon2Memory  uint32 = 15000 // KiB
	argon2Threads uint8  = 1
)

var (
	ErrInvalidKeyLength   = errors.New("invalid key length")
	ErrInvalidNonceLength = errors.New("invalid nonce length")
	ErrInvalidSaltLength  = errors.New("invalid salt length")
	ErrAuth               = errors.New("authentication failed")
	ErrCrypto             = errors.New("crypto operation failed")
)

// GenerateSalt returns a fresh 16-byte Argon2 salt from a CSPRNG.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return salt, nil
}

// GenerateNonce returns a fresh 12-byte GCM nonce from a CSPRNG.
func GenerateNonce() ([]byte, error) {
	nonce := make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return nonce, nil
}

// DeriveKEK derives a 32-byte key-encryption-key from a passphrase and salt
// via Argon2id (time=2, memory=15000 KiB, parallelism=1). The parameters are
// fixed so that a key file produced by any version of this module remains
// unlockable.
func DeriveKEK(passphrase, salt []byte) ([]byte, error) {
	if len(salt) != SaltLength {
		return nil, ErrInvalidSaltLength
	}
	return argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, KeyLength), nil
}

// Seal encrypts plaintext under key/nonce with AES-256-GCM and returns
// ciphertext||tag.
func Seal(key, nonce, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceLength {
		return nil, ErrInvalidNonceLength
	}
	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

// Open decrypts ciphertext||tag under key/nonce with AES-256-GCM, verifying
// the authentication tag. Any tag mismatch is reported as ErrAuth — callers
// map this to "wrong passphrase" or "file corrupt" depending on context.
func Open(key, nonce, ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceLength {
		return nil, ErrInvalidNonceLength
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuth
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLength {
		return nil, ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return gcm, nil
}

// ClearBytes zeros a byte slice in place. The ConstantTimeCompare call is a
// compiler barrier that keeps the zeroing from being optimized away.
func ClearBytes(data []byte) {
	if data == nil {
		return
	}
	for i := range data {
		data[i] = 0
	}
	dummy := make([]byte, len(data))
	subtle.ConstantTimeCompare(data, dummy)
}
