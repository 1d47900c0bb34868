// Package vaultstate holds the single piece of mutable, sensitive state the
// vault core carries between calls: the Data Encryption Key, once unlocked.
// It is modeled as an explicit struct owned by whatever assembles the host
// interface, not a package-level variable, so tests can run many
// independent vaults in the same process.
package vaultstate

import (
	"sync"

	"github.com/heizence/securevault/internal/crypto"
)

// State is Locked when dek is nil, Unlocked otherwise. There is no explicit
// lock transition: once unlocked, the DEK is resident until the process
// holding this State exits.
type State struct {
	mu  sync.RWMutex
	dek []byte
}

// New returns a State in the Locked position.
func New() *State {
	return &State{}
}

// Set installs dek, moving the state to Unlocked. The caller's slice is
// copied; State owns its own copy from then on.
func (s *State) Set(dek []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dek = append([]byte(nil), dek...)
}

// Snapshot returns a copy of the resident DEK and true if unlocked, or
// (nil, false) if locked. Callers must crypto.ClearBytes the returned copy
// once done with it.
func (s *State) Snapshot() ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dek == nil {
		return nil, false
	}
	return append([]byte(nil), s.dek...), true
}

// IsUnlocked reports whether a DEK is currently resident.
func (s *State) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dek != nil
}

// Clear zeroes and discards the resident DEK, returning the state to
// Locked. Not reachable from the current host interface (there is no lock
// operation, per design) but kept for tests and for a future lock command.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	crypto.ClearBytes(s.dek)
	s.dek = nil
}
