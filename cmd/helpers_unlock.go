package cmd

import (
	"fmt"

	"github.com/heizence/securevault/internal/crypto"
	"github.com/heizence/securevault/internal/keychain"
	"github.com/heizence/securevault/internal/vaulterr"
)

// ensureUnlocked gets the vault into the Unlocked state for this process,
// trying a cached keychain passphrase first and falling back to an
// interactive prompt. It never returns with the vault still Locked on a
// nil error.
func ensureUnlocked() error {
	if engine.IsUnlocked() {
		return nil
	}

	cache := keychain.New(vaultID())
	if cached, err := cache.Fetch(); err == nil {
		defer crypto.ClearBytes(cached)
		if err := engine.UnlockVault(cached); err == nil {
			return nil
		}
		// A stale cache entry shouldn't block a manual unlock attempt.
	}

	fmt.Print("Enter passphrase: ")
	passphrase, err := readPassword()
	if err != nil {
		return fmt.Errorf("read passphrase: %w", err)
	}
	fmt.Println()
	defer crypto.ClearBytes(passphrase)

	if err := engine.UnlockVault(passphrase); err != nil {
		if vaulterr.Is(err, vaulterr.WrongPassword) {
			return fmt.Errorf("wrong passphrase")
		}
		return fmt.Errorf("unlock vault: %w", err)
	}
	return nil
}
