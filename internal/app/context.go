package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	golog "github.com/ipfs/go-log/v2"

	"vaultsync/internal/crypto"
	"vaultsync/internal/domain"
	"vaultsync/internal/registry"
	"vaultsync/internal/remote"
	"vaultsync/internal/store"
	"vaultsync/internal/syncer"
)

var log = golog.Logger("app")

// Context carries everything one session operates on: the unlocked key set,
// the derived local key, the open registry and the store handles. It is
// passed explicitly; nothing here is global.
type Context struct {
	Config   *Config
	Registry *registry.Registry
	Local    *store.Replicated
	Shared   *store.Replicated

	Keys   *domain.KeySet
	UserID domain.UserID

	keyStore *store.KeySetStore
	private  domain.Backend
	localKey []byte
	sqlite   *store.SQLite
}

// Private per-session state lives outside the replicated keyspace so it is
// never carried to peers by a sync.
const (
	privateRegistryBlob = "user_db"
	privateSelfBlob     = "user_id"
)

// New builds a context from config: local store under home, shared store per
// config (remote URL, SQLite file or directory). The session starts locked.
func New(cfg *Config) (*Context, error) {
	ctx := &Context{
		Config:   cfg,
		Registry: registry.New(),
		Local:    store.NewReplicated("local", store.NewFS(filepath.Join(cfg.Home(), "data"))),
		keyStore: store.NewKeySetStore(cfg.Home()),
		private:  store.NewFS(filepath.Join(cfg.Home(), "private")),
	}

	switch {
	case cfg.Remote != "":
		ctx.Shared = store.NewReplicated("remote", remote.NewClient(cfg.Remote, http.DefaultClient))
	case cfg.SharedDB != "":
		db, err := store.OpenSQLite(cfg.SharedDB)
		if err != nil {
			return nil, err
		}
		ctx.sqlite = db
		ctx.Shared = store.NewReplicated("shared-db", db)
	case cfg.SharedPath != "":
		ctx.Shared = store.NewReplicated("shared", store.NewFS(cfg.SharedPath))
	}

	admin, err := cfg.AdminKeys()
	if err != nil {
		return nil, err
	}
	if !admin.IsZero() {
		if err := ctx.Registry.SetAdminKeys(admin); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

// Initialized reports whether key material exists for this home directory.
func (c *Context) Initialized() bool { return c.keyStore.Exists() }

// InitKeys generates a fresh key set, seals it under passphrase and unlocks
// the session with it. Fails if keys already exist.
func (c *Context) InitKeys(passphrase string) error {
	if c.keyStore.Exists() {
		return fmt.Errorf("keys already initialized in %s", c.Config.Home())
	}
	ks, err := crypto.GenerateKeySet()
	if err != nil {
		return err
	}
	if err := c.keyStore.Save(passphrase, ks); err != nil {
		return err
	}
	var salt [crypto.SaltBytes]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return err
	}
	c.Config.LocalSalt = hex.EncodeToString(salt[:])
	if err := c.Config.Save(); err != nil {
		return err
	}
	c.Keys = &ks
	c.localKey = crypto.DeriveLocalKey(passphrase, salt[:])
	return nil
}

// Unlock loads the sealed key set and derives the session's local key. The
// local registry mirror and own user ID are loaded when present.
func (c *Context) Unlock(passphrase string) error {
	ks, err := c.keyStore.Load(passphrase)
	if err != nil {
		return err
	}
	salt, err := hex.DecodeString(c.Config.LocalSalt)
	if err != nil || len(salt) != crypto.SaltBytes {
		return fmt.Errorf("config is missing a valid local_salt")
	}
	c.Keys = &ks
	c.localKey = crypto.DeriveLocalKey(passphrase, salt)

	if err := c.loadSelf(); err != nil {
		return err
	}
	if err := c.LoadRegistry(); err != nil {
		return err
	}
	return nil
}

// Close wipes the session's private key material and releases store
// handles. The context is unusable afterwards.
func (c *Context) Close() {
	if c.Keys != nil {
		crypto.ZeroKeySet(c.Keys)
		c.Keys = nil
	}
	crypto.Zero(c.localKey)
	c.localKey = nil
	if c.sqlite != nil {
		c.sqlite.Close()
	}
}

func (c *Context) unlocked() error {
	if c.Keys == nil {
		return domain.ErrLocked
	}
	return nil
}

// SaveRegistry writes the private registry mirror, sealed under the
// session's derived key.
func (c *Context) SaveRegistry() error {
	if err := c.unlocked(); err != nil {
		return err
	}
	snap, err := c.Registry.Snapshot()
	if err != nil {
		return err
	}
	sealed, err := store.SealWithKey(c.localKey, snap)
	if err != nil {
		return err
	}
	return c.private.Write(privateRegistryBlob, sealed)
}

// LoadRegistry restores the private registry mirror, if one was saved
// before.
func (c *Context) LoadRegistry() error {
	if err := c.unlocked(); err != nil {
		return err
	}
	sealed, ok, err := c.private.Read(privateRegistryBlob)
	if err != nil || !ok {
		return err
	}
	snap, err := store.OpenWithKey(c.localKey, sealed)
	if err != nil {
		return err
	}
	return c.Registry.Restore(snap)
}

// SaveSelf records this participant's assigned user ID.
func (c *Context) SaveSelf(id domain.UserID) error {
	c.UserID = id
	return c.private.Write(privateSelfBlob, []byte(strconv.FormatInt(int64(id), 10)))
}

func (c *Context) loadSelf() error {
	data, ok, err := c.private.Read(privateSelfBlob)
	if err != nil || !ok {
		return err
	}
	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("corrupt user id blob: %w", err)
	}
	c.UserID = domain.UserID(id)
	return nil
}

// SecureShared returns the encrypt-then-sign view of the shared store for
// this session, or nil when no shared location is configured.
func (c *Context) SecureShared() *store.SecureStore {
	if c.Shared == nil || c.Keys == nil {
		return nil
	}
	return store.NewSecureStore(c.Shared, c.UserID, c.Keys,
		func() map[domain.UserID]domain.EncryptionPublicKey {
			return c.Registry.EncryptionKeys(domain.RoleUser)
		},
		c.Registry.SigningKey,
	)
}

// SyncShared merges the local and shared locations, then refreshes the
// registry mirror from the shared snapshot if one is readable.
func (c *Context) SyncShared() error {
	if err := c.unlocked(); err != nil {
		return err
	}
	if c.Shared == nil {
		return fmt.Errorf("no shared location configured")
	}
	if err := syncer.Sync(c.Local, c.Shared); err != nil {
		return err
	}
	sec := c.SecureShared()
	snap, ok, err := sec.Get(domain.RegistryKey)
	if err != nil {
		log.Warnf("shared registry snapshot not readable: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	if err := c.Registry.Restore(snap); err != nil {
		return err
	}
	return c.SaveRegistry()
}
