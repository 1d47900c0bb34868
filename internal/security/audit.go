package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/zalando/go-keyring"
)

// AuditEntry is a single tamper-evident record of a vault-affecting
// operation. The HMAC signature lets a later reader detect whether the
// log was edited after the fact; it does not prevent deletion of whole
// lines.
type AuditEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	EventType     string    `json:"event_type"`
	Outcome       string    `json:"outcome"`
	Detail        string    `json:"detail"` // e.g. file count, never a passphrase
	HMACSignature []byte    `json:"hmac_signature"`
}

const (
	EventVaultCreate       = "vault_create"
	EventVaultUnlock       = "vault_unlock"
	EventPassphraseChange  = "passphrase_change"
	EventFilesEncrypted    = "files_encrypted"
	EventFilesDecrypted    = "files_decrypted"
	EventFilesSecureDelete = "files_secure_delete"
	EventOperationCanceled = "operation_cancelled"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Sign computes the entry's HMAC-SHA256 signature over its canonical
// fields, in a fixed field order so Sign/Verify always agree.
func (e *AuditEntry) Sign(key []byte) {
	mac := hmac.New(sha256.New, key)
	mac.Write(e.canonicalBytes())
	e.HMACSignature = mac.Sum(nil)
}

// Verify reports whether the entry's signature matches its fields under key.
func (e *AuditEntry) Verify(key []byte) error {
	mac := hmac.New(sha256.New, key)
	mac.Write(e.canonicalBytes())
	expected := mac.Sum(nil)
	if !hmac.Equal(e.HMACSignature, expected) {
		return fmt.Errorf("audit entry signature mismatch at %s", e.Timestamp)
	}
	return nil
}

func (e *AuditEntry) canonicalBytes() []byte {
	return []byte(fmt.Sprintf("%s|%s|%s|%s",
		e.Timestamp.Format(time.RFC3339Nano), e.EventType, e.Outcome, e.Detail))
}

// Logger appends signed AuditEntry records to a JSON-lines file, rotating
// it once it grows past maxSizeBytes.
type Logger struct {
	filePath     string
	maxSizeBytes int64
	currentSize  int64
	key          []byte
}

const defaultMaxLogSize = 10 * 1024 * 1024

// NewLogger opens (or prepares to create) the audit log at filePath,
// fetching or generating its HMAC key from the OS keychain under vaultID.
func NewLogger(filePath, vaultID string) (*Logger, error) {
	key, err := getOrCreateAuditKey(vaultID)
	if err != nil {
		return nil, err
	}
	var size int64
	if info, err := os.Stat(filePath); err == nil {
		size = info.Size()
	}
	return &Logger{filePath: filePath, maxSizeBytes: defaultMaxLogSize, currentSize: size, key: key}, nil
}

// Log signs and appends entry, rotating the log first if it has grown
// past its size limit.
func (l *Logger) Log(entry *AuditEntry) error {
	entry.Sign(l.key)

	if l.currentSize >= l.maxSizeBytes {
		if err := l.rotate(); err != nil {
			return fmt.Errorf("rotate audit log: %w", err)
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	f, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	l.currentSize += int64(len(data) + 1)
	return nil
}

func (l *Logger) rotate() error {
	oldPath := l.filePath + ".old"
	if info, err := os.Stat(oldPath); err == nil {
		if time.Since(info.ModTime()) > 7*24*time.Hour {
			_ = os.Remove(oldPath)
		}
	}
	if err := os.Rename(l.filePath, oldPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	f, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	l.currentSize = 0
	return nil
}

const (
	auditKeyService = "securevault-audit"
	auditKeyLength  = 32
)

// getOrCreateAuditKey fetches a per-vault HMAC key from the OS keychain,
// generating and storing one on first use.
func getOrCreateAuditKey(vaultID string) ([]byte, error) {
	keyHex, err := keyring.Get(auditKeyService, vaultID)
	if err == nil {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("decode audit key: %w", err)
		}
		return key, nil
	}

	key := make([]byte, auditKeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate audit key: %w", err)
	}
	if err := keyring.Set(auditKeyService, vaultID, hex.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("store audit key in keychain: %w", err)
	}
	return key, nil
}
