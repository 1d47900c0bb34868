package security

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	m.Run()
}

func TestAuditEntry_SignAndVerify(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	entry := &AuditEntry{EventType: EventVaultUnlock, Outcome: OutcomeSuccess}
	entry.Sign(key)

	if len(entry.HMACSignature) == 0 {
		t.Fatal("Sign() did not populate HMACSignature")
	}
	if err := entry.Verify(key); err != nil {
		t.Errorf("Verify() with correct key error = %v", err)
	}
}

func TestAuditEntry_VerifyWithWrongKeyFails(t *testing.T) {
	entry := &AuditEntry{EventType: EventPassphraseChange, Outcome: OutcomeSuccess}
	entry.Sign([]byte("key-one-key-one-key-one-key-one1"))

	if err := entry.Verify([]byte("key-two-key-two-key-two-key-two2")); err == nil {
		t.Error("Verify() with wrong key should fail")
	}
}

func TestAuditEntry_VerifyDetectsTampering(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	entry := &AuditEntry{EventType: EventFilesEncrypted, Outcome: OutcomeSuccess, Detail: "3 files"}
	entry.Sign(key)

	entry.Detail = "300 files"
	if err := entry.Verify(key); err == nil {
		t.Error("Verify() should fail after the entry is tampered with")
	}
}

func TestLogger_LogAppendsEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")

	logger, err := NewLogger(path, "test-vault-1")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	if err := logger.Log(&AuditEntry{EventType: EventVaultCreate, Outcome: OutcomeSuccess}); err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if err := logger.Log(&AuditEntry{EventType: EventVaultUnlock, Outcome: OutcomeSuccess}); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}
	if lines := bytes.Count(data, []byte("\n")); lines != 2 {
		t.Errorf("audit log has %d lines, want 2", lines)
	}
}

func TestLogger_ReusesExistingKeyAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")

	l1, err := NewLogger(path, "test-vault-2")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	entry := &AuditEntry{EventType: EventVaultCreate, Outcome: OutcomeSuccess}
	if err := l1.Log(entry); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	l2, err := NewLogger(path, "test-vault-2")
	if err != nil {
		t.Fatalf("second NewLogger() error = %v", err)
	}
	if err := entry.Verify(l2.key); err != nil {
		t.Error("a second Logger for the same vaultID should reuse the same key")
	}
}
