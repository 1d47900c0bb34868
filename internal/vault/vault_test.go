package vault

import (
	"bytes"
	"testing"

	"github.com/heizence/securevault/internal/fsutil"
	"github.com/heizence/securevault/internal/keyfile"
	"github.com/heizence/securevault/internal/security"
	"github.com/heizence/securevault/internal/vaulterr"
	"github.com/heizence/securevault/internal/vaultstate"
)

const testPassphrase = "Correct-Horse-Battery-9!"

func TestCreateAndUnlockVault_RoundTrip(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	state := vaultstate.New()

	if err := CreateVault(fs, "vault.key", []byte(testPassphrase), state); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}
	dek1, _ := state.Snapshot()

	state2 := vaultstate.New()
	if err := UnlockVault(fs, "vault.key", []byte(testPassphrase), state2, nil); err != nil {
		t.Fatalf("UnlockVault() error = %v", err)
	}
	dek2, _ := state2.Snapshot()

	if !bytes.Equal(dek1, dek2) {
		t.Error("UnlockVault() should recover the same DEK CreateVault() installed")
	}
}

func TestCreateVault_KeyFileLengthIs76Bytes(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	state := vaultstate.New()

	if err := CreateVault(fs, "vault.key", []byte(testPassphrase), state); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}

	data, ok := fs.Contents("vault.key")
	if !ok {
		t.Fatal("key file was not written")
	}
	if len(data) != keyfile.Length {
		t.Errorf("key file length = %d, want %d", len(data), keyfile.Length)
	}
}

func TestCreateVault_RejectsWeakPassphrase(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	state := vaultstate.New()

	if err := CreateVault(fs, "vault.key", []byte("short"), state); err == nil {
		t.Fatal("CreateVault() should reject a passphrase that fails the policy")
	}
	if state.IsUnlocked() {
		t.Error("a rejected CreateVault() should not leave state unlocked")
	}
}

func TestUnlockVault_WrongPassphraseLeavesStateUnchanged(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	createState := vaultstate.New()
	if err := CreateVault(fs, "vault.key", []byte(testPassphrase), createState); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}

	state := vaultstate.New()
	err := UnlockVault(fs, "vault.key", []byte("totally-wrong-passphrase"), state, nil)
	if !vaulterr.Is(err, vaulterr.WrongPassword) {
		t.Fatalf("UnlockVault() error = %v, want WrongPassword", err)
	}
	if state.IsUnlocked() {
		t.Error("a failed UnlockVault() should leave state Locked")
	}

	if err := UnlockVault(fs, "vault.key", []byte(testPassphrase), state, nil); err != nil {
		t.Fatalf("UnlockVault() with correct passphrase after a failed attempt error = %v", err)
	}
	if !state.IsUnlocked() {
		t.Error("UnlockVault() with the correct passphrase should succeed after a prior failure")
	}
}

func TestUnlockVault_MissingKeyFileIsIoError(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	state := vaultstate.New()
	err := UnlockVault(fs, "vault.key", []byte(testPassphrase), state, nil)
	if !vaulterr.Is(err, vaulterr.Io) {
		t.Errorf("UnlockVault() on a missing key file error = %v, want Io", err)
	}
}

func TestUnlockVault_TooShortKeyFileIsInvalidFormat(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	fs.Seed("vault.key", make([]byte, 10))
	state := vaultstate.New()

	err := UnlockVault(fs, "vault.key", []byte(testPassphrase), state, nil)
	if !vaulterr.Is(err, vaulterr.InvalidFormat) {
		t.Errorf("UnlockVault() on a too-short key file error = %v, want InvalidFormat", err)
	}
}

func TestChangePassphrase_PreservesDEKAndAllowsNewUnlock(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	state := vaultstate.New()
	if err := CreateVault(fs, "vault.key", []byte(testPassphrase), state); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}
	dekBefore, _ := state.Snapshot()

	const newPassphrase = "Different-Horse-Battery-7?"
	if err := ChangePassphrase(fs, "vault.key", []byte(testPassphrase), []byte(newPassphrase)); err != nil {
		t.Fatalf("ChangePassphrase() error = %v", err)
	}

	stateAfter := vaultstate.New()
	if err := UnlockVault(fs, "vault.key", []byte(newPassphrase), stateAfter, nil); err != nil {
		t.Fatalf("UnlockVault() with the new passphrase error = %v", err)
	}
	dekAfter, _ := stateAfter.Snapshot()

	if !bytes.Equal(dekBefore, dekAfter) {
		t.Error("ChangePassphrase() must not rotate the DEK")
	}

	if err := UnlockVault(fs, "vault.key", []byte(testPassphrase), vaultstate.New(), nil); !vaulterr.Is(err, vaulterr.WrongPassword) {
		t.Error("the old passphrase should no longer unlock the vault")
	}
}

func TestChangePassphrase_WrongOldPassphraseFails(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	state := vaultstate.New()
	if err := CreateVault(fs, "vault.key", []byte(testPassphrase), state); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}

	err := ChangePassphrase(fs, "vault.key", []byte("wrong-old-passphrase"), []byte("New-Passphrase-9!"))
	if !vaulterr.Is(err, vaulterr.WrongPassword) {
		t.Errorf("ChangePassphrase() with wrong old passphrase error = %v, want WrongPassword", err)
	}

	if err := UnlockVault(fs, "vault.key", []byte(testPassphrase), vaultstate.New(), nil); err != nil {
		t.Error("a rejected ChangePassphrase() must not disturb the existing key file")
	}
}

func TestUnlockVault_CorrectPassphraseAfterTwoFailuresSucceeds(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	if err := CreateVault(fs, "vault.key", []byte(testPassphrase), vaultstate.New()); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}

	limiter := security.NewValidationRateLimiter()
	state := vaultstate.New()
	for i := 0; i < 2; i++ {
		if err := UnlockVault(fs, "vault.key", []byte("wrong"), state, limiter); !vaulterr.Is(err, vaulterr.WrongPassword) {
			t.Fatalf("wrong attempt %d error = %v, want WrongPassword", i+1, err)
		}
	}

	// Two failures are below the cooldown threshold; the correct
	// passphrase must be verified, not rejected for merely following them.
	if err := UnlockVault(fs, "vault.key", []byte(testPassphrase), state, limiter); err != nil {
		t.Fatalf("UnlockVault() with correct passphrase after two failures error = %v", err)
	}
	if !state.IsUnlocked() {
		t.Error("the correct passphrase after two failures should unlock the vault")
	}
}

func TestUnlockVault_RateLimiterTriggersCooldown(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	if err := CreateVault(fs, "vault.key", []byte(testPassphrase), vaultstate.New()); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}

	limiter := security.NewValidationRateLimiter()
	state := vaultstate.New()
	for i := 0; i < 3; i++ {
		_ = UnlockVault(fs, "vault.key", []byte("wrong"), state, limiter)
	}

	err := UnlockVault(fs, "vault.key", []byte(testPassphrase), state, limiter)
	if !vaulterr.Is(err, vaulterr.WrongPassword) {
		t.Errorf("UnlockVault() during cooldown error = %v, want WrongPassword", err)
	}
	if state.IsUnlocked() {
		t.Error("a cooldown-blocked unlock should not unlock the vault even with the right passphrase")
	}
}

func TestExists(t *testing.T) {
	fs := fsutil.NewFakeFileSystem()
	if Exists(fs, "vault.key") {
		t.Error("Exists() should be false before creation")
	}
	if err := CreateVault(fs, "vault.key", []byte(testPassphrase), vaultstate.New()); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}
	if !Exists(fs, "vault.key") {
		t.Error("Exists() should be true after creation")
	}
}
