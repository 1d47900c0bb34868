package keychain

import (
	"testing"

	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	m.Run()
}

func TestCache_StoreFetchRoundTrip(t *testing.T) {
	c := New("/home/user/.config/securevault/vault.key")
	defer func() { _ = c.Delete() }()

	if err := c.Store([]byte("correct horse battery staple")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	got, err := c.Fetch()
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(got) != "correct horse battery staple" {
		t.Errorf("Fetch() = %q, want %q", got, "correct horse battery staple")
	}
}

func TestCache_FetchWithoutStoreFails(t *testing.T) {
	c := New("some-vault-never-stored")
	if _, err := c.Fetch(); err != ErrNotFound {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
}

func TestCache_Delete(t *testing.T) {
	c := New("vault-to-delete")
	if err := c.Store([]byte("hunter2")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := c.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Fetch(); err != ErrNotFound {
		t.Errorf("Fetch() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestCache_DeleteWithoutStoreIsNotAnError(t *testing.T) {
	c := New("never-stored-anything")
	if err := c.Delete(); err != nil {
		t.Errorf("Delete() on empty cache error = %v, want nil", err)
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"/home/user/vault.key": "_home_user_vault_key",
		"simple-vault_1":       "simple-vault_1",
	}
	for in, want := range cases {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCache_DifferentVaultsDoNotCollide(t *testing.T) {
	a := New("vault-a")
	b := New("vault-b")
	defer func() { _ = a.Delete() }()
	defer func() { _ = b.Delete() }()

	if err := a.Store([]byte("passphrase-a")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := b.Store([]byte("passphrase-b")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	gotA, err := a.Fetch()
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	gotB, err := b.Fetch()
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(gotA) == string(gotB) {
		t.Error("distinct vault IDs should not share a keychain entry")
	}
}
