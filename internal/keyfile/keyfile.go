// Package keyfile encodes and decodes the on-disk record of a vault's
// wrapped Data Encryption Key, and loads/saves it through a fsutil.FileSystem.
package keyfile

import (
	"github.com/heizence/securevault/internal/crypto"
	"github.com/heizence/securevault/internal/fsutil"
	"github.com/heizence/securevault/internal/vaulterr"
)

const (
	// Length is the exact size of a well-formed key file: 16-byte salt +
	// 12-byte nonce + 48-byte wrapped DEK (32-byte DEK + 16-byte GCM tag).
	Length = crypto.SaltLength + crypto.NonceLength + crypto.KeyLength + crypto.TagLength

	// minDecodableLength is the shortest input decode will accept before
	// rejecting it outright as InvalidFormat. Short tails beyond this still
	// decode, but their wrapped ciphertext will simply fail to authenticate.
	minDecodableLength = crypto.SaltLength + crypto.NonceLength

	// FilePerm is the mode new key files are created with.
	FilePerm = 0600
)

// Record is the decoded contents of a key file.
type Record struct {
	Salt    []byte // 16 bytes
	Nonce   []byte // 12 bytes
	Wrapped []byte // remainder; 48 bytes when well-formed
}

// Encode concatenates salt||nonce||wrapped into the fixed key file layout.
func Encode(salt, nonce, wrapped []byte) []byte {
	out := make([]byte, 0, len(salt)+len(nonce)+len(wrapped))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, wrapped...)
	return out
}

// Decode splits raw key file bytes back into salt, nonce, and wrapped
// ciphertext. It only enforces the >=28-byte floor described in the format;
// a wrapped ciphertext of the wrong length surfaces later as an
// authentication failure in crypto.UnwrapDEK, not here.
func Decode(raw []byte) (Record, error) {
	if len(raw) < minDecodableLength {
		return Record{}, vaulterr.New(vaulterr.InvalidFormat, "decode_keyfile", nil)
	}
	salt := raw[0:crypto.SaltLength]
	nonce := raw[crypto.SaltLength:minDecodableLength]
	wrapped := raw[minDecodableLength:]
	return Record{
		Salt:    append([]byte(nil), salt...),
		Nonce:   append([]byte(nil), nonce...),
		Wrapped: append([]byte(nil), wrapped...),
	}, nil
}

// Load reads and decodes the key file at path.
func Load(fs fsutil.FileSystem, path string) (Record, error) {
	raw, err := fs.ReadFile(path)
	if err != nil {
		return Record{}, vaulterr.New(vaulterr.Io, "load_keyfile", err)
	}
	return Decode(raw)
}

// Save encodes salt, nonce, and wrapped and overwrites path with the
// result. This is a plain WriteFile, not an atomic temp-file-plus-rename:
// the format is only ever fully rewritten, so a torn write is the existing
// accepted risk rather than one this package tries to paper over.
func Save(fs fsutil.FileSystem, path string, salt, nonce, wrapped []byte) error {
	data := Encode(salt, nonce, wrapped)
	if err := fs.WriteFile(path, data, FilePerm); err != nil {
		return vaulterr.New(vaulterr.Io, "save_keyfile", err)
	}
	return nil
}

// Exists reports whether a key file is already present at path.
func Exists(fs fsutil.FileSystem, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}
