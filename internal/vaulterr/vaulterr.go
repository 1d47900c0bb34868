// Package vaulterr defines the small, closed set of error conditions the
// vault core can surface. A Code is the only thing the UI layer is allowed
// to branch on; everything else about an error is opaque detail for logs.
package vaulterr

import "fmt"

// Code is a vault-level error category. The host interface maps every
// failure from crypto, key file, and batch operations onto one of these
// before it reaches the UI.
type Code string

const (
	// Io covers read/write/metadata/delete failures at the filesystem layer.
	Io Code = "io"
	// InvalidFormat covers a key file too short, an encrypted file too
	// short, or a missing ".enc" suffix on decrypt.
	InvalidFormat Code = "invalid_format"
	// WrongPassword covers a KEK authentication failure on unlock or
	// passphrase change.
	WrongPassword Code = "wrong_password"
	// CorruptOrTampered covers a DEK authentication failure on a user file.
	CorruptOrTampered Code = "corrupt_or_tampered"
	// Locked covers a batch operation requested while no DEK is resident.
	Locked Code = "locked"
	// KeyDerivation covers an Argon2 parameter or input error.
	KeyDerivation Code = "key_derivation"
	// Crypto covers an unexpected AEAD internal error.
	Crypto Code = "crypto"
	// Cancelled covers a secure-delete aborted mid-file.
	Cancelled Code = "cancelled"
)

// Error wraps an underlying error with the Code the UI is allowed to act
// on. The underlying error is preserved via Unwrap, and Error() appends
// its message after the operation and code.
type Error struct {
	Code      Code
	Operation string
	Err       error
}

// New wraps err under code, tagged with the operation that produced it.
func New(code Code, operation string, err error) *Error {
	return &Error{Code: code, Operation: operation, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Operation, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v", e.Operation, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err carries the given code. It unwraps through any
// number of wrapping layers.
func Is(err error, code Code) bool {
	var ve *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			ve = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ve != nil && ve.Code == code
}
