// Package vault implements vault lifecycle: creating a new vault,
// unlocking an existing one, and rotating its passphrase. It orchestrates
// internal/crypto, internal/keyfile, and internal/vaultstate; it never
// touches user files directly (that's internal/batch's job).
package vault

import (
	"github.com/heizence/securevault/internal/crypto"
	"github.com/heizence/securevault/internal/fsutil"
	"github.com/heizence/securevault/internal/keyfile"
	"github.com/heizence/securevault/internal/security"
	"github.com/heizence/securevault/internal/vaulterr"
	"github.com/heizence/securevault/internal/vaultstate"
)

// CreateVault generates a fresh DEK, wraps it under a KEK derived from
// passphrase, writes the key file, and installs the DEK into state. It
// does not check whether a key file already exists at path — the caller
// (the host interface) is expected to call Exists first; overwriting an
// existing vault here is a known hazard, not a bug.
func CreateVault(fs fsutil.FileSystem, path string, passphrase []byte, state *vaultstate.State) error {
	if err := security.DefaultPolicy.Validate(passphrase); err != nil {
		return vaulterr.New(vaulterr.KeyDerivation, "create_vault", err)
	}

	dek, err := crypto.GenerateDEK()
	if err != nil {
		return vaulterr.New(vaulterr.Crypto, "create_vault", err)
	}
	defer crypto.ClearBytes(dek)

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return vaulterr.New(vaulterr.Crypto, "create_vault", err)
	}

	kek, err := crypto.DeriveKEK(passphrase, salt)
	if err != nil {
		return vaulterr.New(vaulterr.KeyDerivation, "create_vault", err)
	}
	defer crypto.ClearBytes(kek)

	wrapped, err := crypto.WrapDEK(dek, kek)
	if err != nil {
		return vaulterr.New(vaulterr.Crypto, "create_vault", err)
	}

	if err := keyfile.Save(fs, path, salt, wrapped.Nonce, wrapped.Ciphertext); err != nil {
		return err
	}

	state.Set(dek)
	return nil
}

// UnlockVault reads the key file at path, derives a KEK from passphrase,
// and opens the wrapped DEK. An authentication failure here is the only
// unlock failure the caller must be able to distinguish from the rest:
// it is reported as WrongPassword and state is left untouched. Only
// actual authentication failures are counted against limiter's cooldown;
// an attempt with the correct passphrase is never penalized for merely
// following failed ones, though it is still blocked while a cooldown
// from an earlier burst is in effect.
func UnlockVault(fs fsutil.FileSystem, path string, passphrase []byte, state *vaultstate.State, limiter *security.ValidationRateLimiter) error {
	if limiter != nil {
		if err := limiter.CheckCooldown(); err != nil {
			return vaulterr.New(vaulterr.WrongPassword, "unlock_vault", err)
		}
	}

	rec, err := keyfile.Load(fs, path)
	if err != nil {
		return err
	}

	kek, err := crypto.DeriveKEK(passphrase, rec.Salt)
	if err != nil {
		return vaulterr.New(vaulterr.KeyDerivation, "unlock_vault", err)
	}
	defer crypto.ClearBytes(kek)

	dek, err := crypto.UnwrapDEK(crypto.WrappedDEK{Ciphertext: rec.Wrapped, Nonce: rec.Nonce}, kek)
	if err != nil {
		if limiter != nil {
			limiter.RecordFailure()
		}
		return vaulterr.New(vaulterr.WrongPassword, "unlock_vault", err)
	}
	defer crypto.ClearBytes(dek)

	if limiter != nil {
		limiter.Reset()
	}
	state.Set(dek)
	return nil
}

// ChangePassphrase verifies old against the existing key file, then
// rewraps the DEK under a freshly derived KEK (new salt, new nonce) and
// overwrites the key file in place. The DEK itself is not rotated:
// existing encrypted files remain readable under the unchanged DEK.
// Vault State is left untouched if old fails to authenticate.
func ChangePassphrase(fs fsutil.FileSystem, path string, old, newPass []byte) error {
	if err := security.DefaultPolicy.Validate(newPass); err != nil {
		return vaulterr.New(vaulterr.KeyDerivation, "change_passphrase", err)
	}

	rec, err := keyfile.Load(fs, path)
	if err != nil {
		return err
	}

	oldKEK, err := crypto.DeriveKEK(old, rec.Salt)
	if err != nil {
		return vaulterr.New(vaulterr.KeyDerivation, "change_passphrase", err)
	}
	defer crypto.ClearBytes(oldKEK)

	dek, err := crypto.UnwrapDEK(crypto.WrappedDEK{Ciphertext: rec.Wrapped, Nonce: rec.Nonce}, oldKEK)
	if err != nil {
		return vaulterr.New(vaulterr.WrongPassword, "change_passphrase", err)
	}
	defer crypto.ClearBytes(dek)

	newSalt, err := crypto.GenerateSalt()
	if err != nil {
		return vaulterr.New(vaulterr.Crypto, "change_passphrase", err)
	}

	newKEK, err := crypto.DeriveKEK(newPass, newSalt)
	if err != nil {
		return vaulterr.New(vaulterr.KeyDerivation, "change_passphrase", err)
	}
	defer crypto.ClearBytes(newKEK)

	wrapped, err := crypto.WrapDEK(dek, newKEK)
	if err != nil {
		return vaulterr.New(vaulterr.Crypto, "change_passphrase", err)
	}

	return keyfile.Save(fs, path, newSalt, wrapped.Nonce, wrapped.Ciphertext)
}

// Exists reports whether a key file is already present at path.
func Exists(fs fsutil.FileSystem, path string) bool {
	return keyfile.Exists(fs, path)
}
