package keyfile

import (
	"bytes"
	"testing"

	"github.com/heizence/securevault/internal/fsutil"
	"github.com/heizence/securevault/internal/vaulterr"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	salt := bytes.Repeat([]byte{0x01}, 16)
	nonce := bytes.Repeat([]byte{0x02}, 12)
	wrapped := bytes.Repeat([]byte{0x03}, 48)

	raw := Encode(salt, nonce, wrapped)
	if len(raw) != Length {
		t.Fatalf("Encode() length = %d, want %d", len(raw), Length)
	}

	rec, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(rec.Salt, salt) {
		t.Errorf("Decode().Salt = %x, want %x", rec.Salt, salt)
	}
	if !bytes.Equal(rec.Nonce, nonce) {
		t.Errorf("Decode().Nonce = %x, want %x", rec.Nonce, nonce)
	}
	if !bytes.Equal(rec.Wrapped, wrapped) {
		t.Errorf("Decode().Wrapped = %x, want %x", rec.Wrapped, wrapped)
	}
}

func TestDecode_TooShortFails(t *testing.T) {
	_, err := Decode(make([]byte, 27))
	if !vaulterr.Is(err, vaulterr.InvalidFormat) {
		t.Errorf("Decode() error = %v, want InvalidFormat", err)
	}
}

func TestDecode_MinimumLengthSucceeds(t *testing.T) {
	rec, err := Decode(make([]byte, 28))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(rec.Wrapped) != 0 {
		t.Errorf("Decode().Wrapped length = %d, want 0", len(rec.Wrapped))
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	salt := bytes.Repeat([]byte{0xAA}, 16)
	nonce := bytes.Repeat([]byte{0xBB}, 12)
	wrapped := bytes.Repeat([]byte{0xCC}, 48)

	if err := Save(fs, "vault.key", salt, nonce, wrapped); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, _ := fs.Contents("vault.key")
	if len(data) != Length {
		t.Fatalf("saved key file length = %d, want %d", len(data), Length)
	}

	rec, err := Load(fs, "vault.key")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(rec.Salt, salt) || !bytes.Equal(rec.Nonce, nonce) || !bytes.Equal(rec.Wrapped, wrapped) {
		t.Error("Load() did not round-trip the saved record")
	}
}

func TestLoad_MissingFileIsIoError(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	_, err := Load(fs, "missing.key")
	if !vaulterr.Is(err, vaulterr.Io) {
		t.Errorf("Load() error = %v, want Io", err)
	}
}

func TestExists(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	if Exists(fs, "vault.key") {
		t.Error("Exists() should be false before any save")
	}
	fs.Seed("vault.key", make([]byte, Length))
	if !Exists(fs, "vault.key") {
		t.Error("Exists() should be true after seeding the file")
	}
}

func TestSave_OverwritesInPlace(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	salt1 := bytes.Repeat([]byte{0x01}, 16)
	salt2 := bytes.Repeat([]byte{0x02}, 16)
	nonce := bytes.Repeat([]byte{0x03}, 12)
	wrapped := bytes.Repeat([]byte{0x04}, 48)

	if err := Save(fs, "vault.key", salt1, nonce, wrapped); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	if err := Save(fs, "vault.key", salt2, nonce, wrapped); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	rec, err := Load(fs, "vault.key")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(rec.Salt, salt2) {
		t.Error("Save() should overwrite the previous record, not append to it")
	}
}
