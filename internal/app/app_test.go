package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultsync/internal/domain"
	"vaultsync/internal/registration"
)

func TestConfigRoundTrip(t *testing.T) {
	home := t.TempDir()

	cfg, err := LoadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, home, cfg.Home())

	cfg.SharedPath = "/mnt/shared"
	cfg.Sections = map[string]map[string]string{"server": {"url": "http://one.test"}}
	require.NoError(t, cfg.Save())

	again, err := LoadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/shared", again.SharedPath)
	assert.Equal(t, "http://one.test", again.Sections["server"]["url"])
}

func TestConfigMergeSections(t *testing.T) {
	cfg := &Config{Sections: map[string]map[string]string{
		"server": {"url": "http://old.test", "timeout": "5s"},
	}}
	cfg.MergeSections(map[string]map[string]string{
		"server": {"url": "http://new.test"},
		"extra":  {"key": "value"},
	})
	assert.Equal(t, "http://new.test", cfg.Sections["server"]["url"])
	assert.Equal(t, "5s", cfg.Sections["server"]["timeout"], "untouched keys survive")
	assert.Equal(t, "value", cfg.Sections["extra"]["key"])
}

func TestConfigAdminKeys(t *testing.T) {
	cfg := &Config{}
	keys, err := cfg.AdminKeys()
	require.NoError(t, err)
	assert.True(t, keys.IsZero())

	trust := domain.AdminKeySet{}
	trust.SigningPub[0] = 7
	trust.EncryptionPub[0] = 9
	cfg.SetAdminKeys(trust)

	got, err := cfg.AdminKeys()
	require.NoError(t, err)
	assert.Equal(t, trust, got)

	cfg.AdminSigningKey = "zz"
	_, err = cfg.AdminKeys()
	assert.Error(t, err)
}

func TestInitAndUnlock(t *testing.T) {
	home := t.TempDir()

	cfg, err := LoadConfig(home)
	require.NoError(t, err)
	ctx, err := New(cfg)
	require.NoError(t, err)
	assert.False(t, ctx.Initialized())

	require.NoError(t, ctx.InitKeys("open sesame"))
	assert.True(t, ctx.Initialized())
	assert.Error(t, ctx.InitKeys("open sesame"), "double init refused")
	created := *ctx.Keys
	ctx.Close()
	assert.Nil(t, ctx.Keys)

	// A fresh context over the same home unlocks the same keys.
	cfg2, err := LoadConfig(home)
	require.NoError(t, err)
	ctx2, err := New(cfg2)
	require.NoError(t, err)
	defer ctx2.Close()

	err = ctx2.Unlock("wrong words")
	assert.ErrorIs(t, err, domain.ErrCrypto)

	require.NoError(t, ctx2.Unlock("open sesame"))
	assert.Equal(t, created, *ctx2.Keys)
}

func TestRegistryMirrorSurvivesSessions(t *testing.T) {
	home := t.TempDir()

	cfg, err := LoadConfig(home)
	require.NoError(t, err)
	ctx, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, ctx.InitKeys("pw"))

	id, err := ctx.Registry.AddUser(ctx.Keys.SigningPub, ctx.Keys.EncryptionPub,
		[]domain.Role{domain.RoleUser})
	require.NoError(t, err)
	require.NoError(t, ctx.SaveSelf(id))
	require.NoError(t, ctx.SaveRegistry())
	ctx.Close()

	cfg2, err := LoadConfig(home)
	require.NoError(t, err)
	ctx2, err := New(cfg2)
	require.NoError(t, err)
	defer ctx2.Close()
	require.NoError(t, ctx2.Unlock("pw"))

	assert.Equal(t, id, ctx2.UserID)
	assert.Equal(t, 1, ctx2.Registry.Len())
	assert.True(t, ctx2.Registry.HasRole(id, domain.RoleUser))
}

// bootstrapAdmin builds an administrator context over home with shared as the
// shared location, mirroring what 'vaultsync init --admin' does.
func bootstrapAdmin(t *testing.T, home, shared string) *Context {
	t.Helper()
	cfg, err := LoadConfig(home)
	require.NoError(t, err)
	cfg.SharedPath = shared
	ctx, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, ctx.InitKeys("admin pw"))

	trust := domain.AdminKeySet{
		SigningPub:    ctx.Keys.SigningPub,
		EncryptionPub: ctx.Keys.EncryptionPub,
	}
	require.NoError(t, ctx.Registry.SetAdminKeys(trust))
	id, err := ctx.Registry.AddUser(ctx.Keys.SigningPub, ctx.Keys.EncryptionPub,
		[]domain.Role{domain.RoleUser, domain.RoleAdmin})
	require.NoError(t, err)
	require.NoError(t, ctx.SaveSelf(id))
	ctx.Config.SetAdminKeys(trust)
	require.NoError(t, ctx.Config.Save())
	require.NoError(t, ctx.SaveRegistry())

	snap, err := ctx.Registry.Snapshot()
	require.NoError(t, err)
	_, err = ctx.SecureShared().Put(domain.RegistryKey, snap)
	require.NoError(t, err)
	return ctx
}

func TestEndToEndRegistrationAndSync(t *testing.T) {
	shared := t.TempDir()

	admin := bootstrapAdmin(t, t.TempDir(), shared)
	defer admin.Close()

	// New participant pointing at the same shared location, trusting the
	// administrator's out-of-band keys.
	userCfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	userCfg.SharedPath = shared
	userCfg.SetAdminKeys(admin.Registry.AdminKeys())
	user, err := New(userCfg)
	require.NoError(t, err)
	defer user.Close()
	require.NoError(t, user.InitKeys("user pw"))

	// Request / review / complete, artifacts passed by value.
	trust, err := user.Config.AdminKeys()
	require.NoError(t, err)
	reqArt, err := registration.NewRequest(nil, *user.Keys,
		[]domain.Role{domain.RoleUser}, trust)
	require.NoError(t, err)

	adminSvc := registration.NewService(admin.Registry, admin.Shared)
	respArt, id, err := adminSvc.Review(reqArt, admin.UserID, admin.Keys, registration.Grant{
		Sections: map[string]map[string]string{"server": {"region": "eu"}},
	})
	require.NoError(t, err)
	require.NoError(t, admin.SaveRegistry())

	userSvc := registration.NewService(user.Registry, user.Shared)
	resp, err := userSvc.Complete(respArt, user.Keys, trust)
	require.NoError(t, err)
	user.Config.MergeSections(resp.Sections)
	require.NoError(t, user.Config.Save())
	require.NoError(t, user.SaveSelf(resp.UserID))
	require.NoError(t, user.SaveRegistry())
	require.NoError(t, user.SyncShared())

	assert.Equal(t, id, user.UserID)
	assert.Equal(t, 2, user.Registry.Len())
	assert.Equal(t, "eu", user.Config.Sections["server"]["region"])

	// The new member writes shared data; the administrator reads it.
	_, err = user.SecureShared().Put("docs/report", []byte("numbers for q3"))
	require.NoError(t, err)

	got, ok, err := admin.SecureShared().Get("docs/report")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("numbers for q3"), got)

	// And the other way around.
	_, err = admin.SecureShared().Put("docs/answer", []byte("looks fine"))
	require.NoError(t, err)
	got, ok, err = user.SecureShared().Get("docs/answer")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("looks fine"), got)
}

func TestSyncSharedRequiresConfiguration(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	ctx, err := New(cfg)
	require.NoError(t, err)
	defer ctx.Close()
	require.NoError(t, ctx.InitKeys("pw"))

	assert.Error(t, ctx.SyncShared(), "no shared location configured")
}
