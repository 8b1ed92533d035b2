package app

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"vaultsync/internal/domain"
)

const configFile = "config.yaml"

// Config is the on-disk application configuration. The administrator's
// public keys arrive here unencrypted through an out-of-band channel; they
// are the trust root for everything that follows.
type Config struct {
	// Remote is the base URL of a vaultsyncd blob server, e.g.
	// http://127.0.0.1:8750. Takes precedence over SharedPath/SharedDB.
	Remote string `yaml:"remote,omitempty"`
	// SharedPath is a filesystem directory used as the shared location.
	SharedPath string `yaml:"shared_path,omitempty"`
	// SharedDB is a SQLite file used as the shared location.
	SharedDB string `yaml:"shared_db,omitempty"`

	AdminSigningKey    string `yaml:"admin_signing_key,omitempty"`
	AdminEncryptionKey string `yaml:"admin_encryption_key,omitempty"`

	// LocalSalt feeds local key derivation. Fixed at init; rotating it
	// would orphan everything encrypted locally so far.
	LocalSalt string `yaml:"local_salt,omitempty"`

	// Sections holds configuration delivered by the administrator during
	// registration, keyed by section name.
	Sections map[string]map[string]string `yaml:"sections,omitempty"`

	home string
}

// LoadConfig reads home/config.yaml. A missing file yields an empty config
// bound to home.
func LoadConfig(home string) (*Config, error) {
	cfg := &Config{home: home}
	data, err := os.ReadFile(filepath.Join(home, configFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}
	return cfg, nil
}

// Save writes the config back to its home directory.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.home, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.home, configFile), data, 0o600)
}

// Home returns the directory this config lives in.
func (c *Config) Home() string { return c.home }

// AdminKeys decodes the configured administrator trust root. A config
// without admin keys returns a zero set.
func (c *Config) AdminKeys() (domain.AdminKeySet, error) {
	var keys domain.AdminKeySet
	if c.AdminSigningKey == "" && c.AdminEncryptionKey == "" {
		return keys, nil
	}
	if err := decodeKey(c.AdminSigningKey, keys.SigningPub[:]); err != nil {
		return keys, fmt.Errorf("admin_signing_key: %w", err)
	}
	if err := decodeKey(c.AdminEncryptionKey, keys.EncryptionPub[:]); err != nil {
		return keys, fmt.Errorf("admin_encryption_key: %w", err)
	}
	return keys, nil
}

// SetAdminKeys stores the trust root as hex.
func (c *Config) SetAdminKeys(keys domain.AdminKeySet) {
	c.AdminSigningKey = hex.EncodeToString(keys.SigningPub[:])
	c.AdminEncryptionKey = hex.EncodeToString(keys.EncryptionPub[:])
}

// MergeSections folds administrator-delivered sections into the config.
// Incoming values win over existing ones.
func (c *Config) MergeSections(in map[string]map[string]string) {
	if len(in) == 0 {
		return
	}
	if c.Sections == nil {
		c.Sections = make(map[string]map[string]string, len(in))
	}
	for name, section := range in {
		if c.Sections[name] == nil {
			c.Sections[name] = make(map[string]string, len(section))
		}
		for k, v := range section {
			c.Sections[name][k] = v
		}
	}
}

func decodeKey(s string, dst []byte) error {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("want %d key bytes, got %d", len(dst), len(raw))
	}
	copy(dst, raw)
	return nil
}
