// Package hostapi is the single surface a UI collaborator talks to: one
// method per row of the host command table, wiring vault lifecycle, the
// batch file processor, and the directory walker onto one vaultstate.State
// and one opcontrol.Flag. Nothing outside this package touches those two
// directly once an Engine exists.
package hostapi

import (
	"errors"
	"time"

	"github.com/heizence/securevault/internal/batch"
	"github.com/heizence/securevault/internal/crypto"
	"github.com/heizence/securevault/internal/fsutil"
	"github.com/heizence/securevault/internal/opcontrol"
	"github.com/heizence/securevault/internal/security"
	"github.com/heizence/securevault/internal/vault"
	"github.com/heizence/securevault/internal/vaulterr"
	"github.com/heizence/securevault/internal/vaultstate"
	"github.com/heizence/securevault/internal/walker"
)

// AuditLogger is the narrow slice of security.Logger that Engine needs.
// Logging is best-effort and purely observational: a failure here never
// blocks or fails the operation it describes.
type AuditLogger interface {
	Log(entry *security.AuditEntry) error
}

// Engine owns one vault's state and cancellation flag and exposes the
// host command surface. It holds no package-level state of its
// own, so a process can run more than one vault concurrently by
// constructing more than one Engine.
type Engine struct {
	fs          fsutil.FileSystem
	keyFilePath string

	state   *vaultstate.State
	flag    *opcontrol.Flag
	limiter *security.ValidationRateLimiter
	audit   AuditLogger
}

// New returns an Engine backed by fs, with its key file at keyFilePath.
// The vault starts Locked and the cancellation flag starts clear.
func New(fs fsutil.FileSystem, keyFilePath string) *Engine {
	return &Engine{
		fs:          fs,
		keyFilePath: keyFilePath,
		state:       vaultstate.New(),
		flag:        opcontrol.New(),
		limiter:     security.NewValidationRateLimiter(),
	}
}

// SetAuditLogger attaches a best-effort audit log. Passing nil disables
// logging; nothing else about Engine's behavior changes either way.
func (e *Engine) SetAuditLogger(logger AuditLogger) {
	e.audit = logger
}

// IsUnlocked reports whether a DEK is currently resident.
func (e *Engine) IsUnlocked() bool {
	return e.state.IsUnlocked()
}

// VaultExists reports whether a key file is already present.
func (e *Engine) VaultExists() bool {
	return vault.Exists(e.fs, e.keyFilePath)
}

// CreateVault generates a fresh DEK, wraps it under passphrase, and
// installs it into this Engine's vault state. It does not refuse to
// overwrite an existing key file; callers should check VaultExists first.
func (e *Engine) CreateVault(passphrase []byte) error {
	err := vault.CreateVault(e.fs, e.keyFilePath, passphrase, e.state)
	e.record(security.EventVaultCreate, err)
	return err
}

// UnlockVault installs this vault's DEK into state from the key file and
// passphrase. Wrong passphrase is reported as vaulterr.WrongPassword and
// leaves state untouched; repeated failures trigger the rate limiter's
// cooldown.
func (e *Engine) UnlockVault(passphrase []byte) error {
	err := vault.UnlockVault(e.fs, e.keyFilePath, passphrase, e.state, e.limiter)
	e.record(security.EventVaultUnlock, err)
	return err
}

// ChangePassword rewraps the existing DEK under a freshly derived KEK. The
// DEK itself, and every file already encrypted under it, are unaffected.
func (e *Engine) ChangePassword(oldPassphrase, newPassphrase []byte) error {
	err := vault.ChangePassphrase(e.fs, e.keyFilePath, oldPassphrase, newPassphrase)
	e.record(security.EventPassphraseChange, err)
	return err
}

// GetFilesInDirRecursive lists every regular file under dir, for use as
// batch operation input.
func (e *Engine) GetFilesInDirRecursive(dir string) ([]string, error) {
	files, err := walker.ListFilesRecursive(dir)
	if err != nil {
		return nil, vaulterr.New(vaulterr.Io, "get_files_in_dir_recursive", err)
	}
	return files, nil
}

// EncryptFiles seals each file in paths under the resident DEK, writing
// <destDir>/<basename>.enc for each. Fails immediately with
// vaulterr.Locked if the vault is not unlocked; otherwise the batch runs
// and its progress/error events are sent on the returned channels.
func (e *Engine) EncryptFiles(paths []string, destDir string) (<-chan batch.ProgressEvent, <-chan batch.ErrorEvent, error) {
	dek, ok := e.state.Snapshot()
	if !ok {
		err := vaulterr.New(vaulterr.Locked, "encrypt_files", nil)
		e.record(security.EventFilesEncrypted, err)
		return nil, nil, err
	}
	progress, errs := batch.EncryptFiles(e.fs, paths, destDir, dek, e.flag)
	p, errCh := e.relay(dek, progress, errs, security.EventFilesEncrypted)
	return p, errCh, nil
}

// DecryptFiles opens each file in paths under the resident DEK, writing
// <destDir>/<basename minus ".enc"> for each. Fails immediately with
// vaulterr.Locked if the vault is not unlocked.
func (e *Engine) DecryptFiles(paths []string, destDir string) (<-chan batch.ProgressEvent, <-chan batch.ErrorEvent, error) {
	dek, ok := e.state.Snapshot()
	if !ok {
		err := vaulterr.New(vaulterr.Locked, "decrypt_files", nil)
		e.record(security.EventFilesDecrypted, err)
		return nil, nil, err
	}
	progress, errs := batch.DecryptFiles(e.fs, paths, destDir, dek, e.flag)
	p, errCh := e.relay(dek, progress, errs, security.EventFilesDecrypted)
	return p, errCh, nil
}

// SecureDeleteFiles overwrites each file in paths with CSPRNG bytes and
// deletes it. No DEK is required: destruction does not depend on the
// vault being unlocked.
func (e *Engine) SecureDeleteFiles(paths []string) (<-chan batch.ProgressEvent, <-chan batch.ErrorEvent) {
	progress, errs := batch.SecureDeleteFiles(e.fs, paths, e.flag)
	return e.relay(nil, progress, errs, security.EventFilesSecureDelete)
}

// CancelOperation asks the in-flight batch, if any, to stop at its next
// checkpoint. It is safe to call with no batch running.
func (e *Engine) CancelOperation() {
	e.flag.RequestCancel()
	e.record(security.EventOperationCanceled, nil)
}

// relay forwards progress/error events from a batch's channels onto a
// fresh pair of the same channel types, clearing dek once the batch has
// produced its terminal event (a closed progress channel, an error event,
// or cancellation) so the snapshot never outlives the operation it backs.
func (e *Engine) relay(dek []byte, src <-chan batch.ProgressEvent, srcErrs <-chan batch.ErrorEvent, event string) (<-chan batch.ProgressEvent, <-chan batch.ErrorEvent) {
	progress := make(chan batch.ProgressEvent, 1)
	errs := make(chan batch.ErrorEvent, 1)
	go func() {
		defer crypto.ClearBytes(dek)
		defer close(progress)
		defer close(errs)

		var failure error
		for src != nil || srcErrs != nil {
			select {
			case p, ok := <-src:
				if !ok {
					src = nil
					continue
				}
				progress <- p
			case ev, ok := <-srcErrs:
				if !ok {
					srcErrs = nil
					continue
				}
				failure = errors.New(ev.Message)
				errs <- ev
			}
		}
		e.record(event, failure)
	}()
	return progress, errs
}

func (e *Engine) record(event string, err error) {
	if e.audit == nil {
		return
	}
	outcome := security.OutcomeSuccess
	detail := ""
	if err != nil {
		outcome = security.OutcomeFailure
		detail = err.Error()
	}
	_ = e.audit.Log(&security.AuditEntry{
		Timestamp: time.Now(),
		EventType: event,
		Outcome:   outcome,
		Detail:    detail,
	})
}
