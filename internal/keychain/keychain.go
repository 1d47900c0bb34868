// Package keychain lets the CLI host remember an unlocked vault's
// passphrase in the OS keychain, so a later session can skip the prompt.
// It is purely a convenience layer: the vault core never consults it, and
// UnlockVault always works from a passphrase argument regardless of
// whether a cache entry exists.
package keychain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "securevault"
	accountBase = "vault-passphrase"
)

var (
	// ErrUnavailable indicates no OS keyring backend is reachable.
	ErrUnavailable = errors.New("system keychain is not available")
	// ErrNotFound indicates no passphrase is cached for this vault.
	ErrNotFound = errors.New("no cached passphrase for this vault")
)

// Cache stores one vault's passphrase under a vault-specific account name,
// so multiple vault key files on the same machine don't collide.
type Cache struct {
	vaultID string
}

// New returns a Cache scoped to vaultID, typically the vault's config
// directory.
// Pass "" for a single, unscoped cache entry.
func New(vaultID string) *Cache {
	return &Cache{vaultID: sanitize(vaultID)}
}

// sanitize keeps alphanumerics, dash, and underscore; everything else
// becomes an underscore, so an arbitrary filesystem path is safe to use
// as a keyring account name.
func sanitize(vaultID string) string {
	if vaultID == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, vaultID)
}

func (c *Cache) account() string {
	if c.vaultID == "" {
		return accountBase
	}
	return fmt.Sprintf("%s-%s", accountBase, c.vaultID)
}

// Store saves passphrase to the OS keychain.
func (c *Cache) Store(passphrase []byte) error {
	if err := keyring.Set(serviceName, c.account(), string(passphrase)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Fetch retrieves the cached passphrase, or ErrNotFound if none is stored.
func (c *Cache) Fetch() ([]byte, error) {
	value, err := keyring.Get(serviceName, c.account())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return []byte(value), nil
}

// Delete removes any cached passphrase for this vault. Not an error if
// nothing was cached.
func (c *Cache) Delete() error {
	if err := keyring.Delete(serviceName, c.account()); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Available reports whether the OS keychain backend can be reached at all,
// by round-tripping a throwaway entry.
func Available() bool {
	const probeAccount = "securevault-availability-probe"
	if err := keyring.Set(serviceName, probeAccount, "probe"); err != nil {
		return false
	}
	_ = keyring.Delete(serviceName, probeAccount)
	return true
}
