package crypto

import (
	"crypto/rand"
)

// WrappedDEK is a 32-byte DEK sealed under a KEK: 48 bytes of
// ciphertext||tag plus the 12-byte nonce used to produce it.
type WrappedDEK struct {
	Ciphertext []byte // 48 bytes: 32-byte DEK + 16-byte GCM auth tag
	Nonce      []byte // 12 bytes: GCM nonce, unique per wrap
}

// GenerateDEK generates a cryptographically secure 256-bit Data Encryption
// Key. The caller must clear it with ClearBytes once it is no longer needed.
func GenerateDEK() ([]byte, error) {
	dek := make([]byte, KeyLength)
	if _, err := rand.Read(dek); err != nil {
		return nil, ErrCrypto
	}
	return dek, nil
}

// WrapDEK seals a DEK under a KEK with a fresh nonce.
func WrapDEK(dek, kek []byte) (WrappedDEK, error) {
	if len(dek) != KeyLength {
		return WrappedDEK{}, ErrInvalidKeyLength
	}
	nonce, err := GenerateNonce()
	if err != nil {
		return WrappedDEK{}, err
	}
	ciphertext, err := Seal(kek, nonce, dek)
	if err != nil {
		return WrappedDEK{}, err
	}
	return WrappedDEK{Ciphertext: ciphertext, Nonce: nonce}, nil
}

// UnwrapDEK opens a wrapped DEK under a KEK. Any authentication failure is
// returned as ErrAuth — callers map this to "wrong passphrase".
func UnwrapDEK(wrapped WrappedDEK, kek []byte) ([]byte, error) {
	if len(wrapped.Ciphertext) != KeyLength+TagLength {
		return nil, ErrAuth
	}
	if len(wrapped.Nonce) != NonceLength {
		return nil, ErrInvalidNonceLength
	}
	return Open(kek, wrapped.Nonce, wrapped.Ciphertext)
}
