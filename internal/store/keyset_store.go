package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"vaultsync/internal/domain"
)

const keySetFile = "keys.enc"

// KeySetStore persists a participant's key set on disk, sealed under their
// passphrase.
type KeySetStore struct {
	dir string
}

// NewKeySetStore returns a key set store rooted at dir.
func NewKeySetStore(dir string) *KeySetStore { return &KeySetStore{dir: dir} }

// Exists reports whether a key set has been initialized here.
func (s *KeySetStore) Exists() bool {
	_, err := os.Stat(filepath.Join(s.dir, keySetFile))
	return err == nil
}

// Save seals the key set under passphrase and writes it with owner-only
// permissions.
func (s *KeySetStore) Save(passphrase string, ks domain.KeySet) error {
	raw, err := json.Marshal(ks)
	if err != nil {
		return err
	}
	blob, err := sealWithPassphrase(passphrase, raw)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, keySetFile), blob, 0o600)
}

// Load opens and returns the key set. A missing file returns
// domain.ErrLocked so callers can prompt for initialization.
func (s *KeySetStore) Load(passphrase string) (domain.KeySet, error) {
	blob, err := os.ReadFile(filepath.Join(s.dir, keySetFile))
	if errors.Is(err, os.ErrNotExist) {
		return domain.KeySet{}, domain.ErrLocked
	}
	if err != nil {
		return domain.KeySet{}, err
	}
	raw, err := openWithPassphrase(passphrase, blob)
	if err != nil {
		return domain.KeySet{}, err
	}
	var ks domain.KeySet
	if err := json.Unmarshal(raw, &ks); err != nil {
		return domain.KeySet{}, err
	}
	return ks, nil
}
