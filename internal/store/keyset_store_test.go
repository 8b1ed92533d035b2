package store

import (
	"errors"
	"testing"

	"vaultsync/internal/crypto"
	"vaultsync/internal/domain"
)

func TestKeySetStoreRoundTrip(t *testing.T) {
	s := NewKeySetStore(t.TempDir())

	if s.Exists() {
		t.Fatal("fresh dir should have no key set")
	}
	if _, err := s.Load("pw"); !errors.Is(err, domain.ErrLocked) {
		t.Fatalf("want ErrLocked for missing key set, got %v", err)
	}

	ks, err := crypto.GenerateKeySet()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save("pw", ks); err != nil {
		t.Fatal(err)
	}
	if !s.Exists() {
		t.Fatal("key set should exist after Save")
	}

	got, err := s.Load("pw")
	if err != nil {
		t.Fatal(err)
	}
	if got != ks {
		t.Fatal("loaded key set differs from saved one")
	}

	if _, err := s.Load("not-pw"); !errors.Is(err, domain.ErrCrypto) {
		t.Fatalf("want ErrCrypto for wrong passphrase, got %v", err)
	}
}
