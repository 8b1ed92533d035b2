package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultsync/internal/crypto"
	"vaultsync/internal/domain"
)

func newKeySet(t *testing.T) domain.KeySet {
	t.Helper()
	ks, err := crypto.GenerateKeySet()
	require.NoError(t, err)
	return ks
}

func TestAddUserFreshIDs(t *testing.T) {
	r := New()

	a := newKeySet(t)
	b := newKeySet(t)

	idA, err := r.AddUser(a.SigningPub, a.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)
	idB, err := r.AddUser(b.SigningPub, b.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)

	assert.Equal(t, domain.UserID(1), idA)
	assert.Equal(t, domain.UserID(2), idB)
	assert.Equal(t, 2, r.Len())
}

func TestAddUserReRegisterUpdatesRoles(t *testing.T) {
	r := New()
	a := newKeySet(t)

	id, err := r.AddUser(a.SigningPub, a.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)

	again, err := r.AddUser(a.SigningPub, a.EncryptionPub, []domain.Role{domain.RoleUser, "auditor"})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	e, ok := r.Entry(id)
	require.True(t, ok)
	assert.Equal(t, []domain.Role{"auditor", domain.RoleUser}, e.Roles)
	assert.Equal(t, 1, r.Len())
}

func TestAddUserKeyConflictLeavesRegistryUntouched(t *testing.T) {
	r := New()
	a := newKeySet(t)
	b := newKeySet(t)

	_, err := r.AddUser(a.SigningPub, a.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)

	before, err := r.Snapshot()
	require.NoError(t, err)

	// Known signing key paired with a fresh encryption key.
	_, err = r.AddUser(a.SigningPub, b.EncryptionPub, []domain.Role{domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrKeyConflict)

	// Fresh signing key paired with a known encryption key.
	_, err = r.AddUser(b.SigningPub, a.EncryptionPub, []domain.Role{domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrKeyConflict)

	after, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before, after, "conflict must not mutate the registry")
}

func TestAddUserSplitEntriesConflict(t *testing.T) {
	r := New()
	a := newKeySet(t)
	b := newKeySet(t)

	_, err := r.AddUser(a.SigningPub, a.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)
	_, err = r.AddUser(b.SigningPub, b.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)

	// Both keys known but owned by different entries.
	_, err = r.AddUser(a.SigningPub, b.EncryptionPub, []domain.Role{domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrKeyConflict)
}

func TestAddUserNeedsRole(t *testing.T) {
	r := New()
	a := newKeySet(t)
	_, err := r.AddUser(a.SigningPub, a.EncryptionPub, nil)
	assert.Error(t, err)
	_, err = r.AddUser(a.SigningPub, a.EncryptionPub, []domain.Role{" ", ""})
	assert.Error(t, err)
}

func TestRoleLifecycle(t *testing.T) {
	r := New()
	a := newKeySet(t)

	id, err := r.AddUser(a.SigningPub, a.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)

	require.NoError(t, r.AddRole(id, "Auditor"))
	assert.True(t, r.HasRole(id, "auditor"), "roles are case-insensitive")

	require.NoError(t, r.RemoveRole(id, "auditor"))
	assert.False(t, r.HasRole(id, "auditor"))

	// Removing a role the user does not carry is a no-op.
	require.NoError(t, r.RemoveRole(id, "auditor"))

	// The last role cannot be removed.
	err = r.RemoveRole(id, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrLastRole)
	assert.True(t, r.HasRole(id, domain.RoleUser))
}

func TestRemoveUserBlocksForever(t *testing.T) {
	r := New()
	a := newKeySet(t)
	b := newKeySet(t)

	id, err := r.AddUser(a.SigningPub, a.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)
	require.NoError(t, r.RemoveUser(id))

	assert.Empty(t, r.Users(""))
	assert.False(t, r.HasRole(id, domain.RoleUser))

	// Re-registering the blocked keys is refused.
	_, err = r.AddUser(a.SigningPub, a.EncryptionPub, []domain.Role{domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrBlocked)

	// The retired ID is never reissued.
	next, err := r.AddUser(b.SigningPub, b.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)
	assert.Greater(t, next, id)

	// Old signatures must stay verifiable.
	_, ok := r.SigningKey(id)
	assert.True(t, ok)
}

func TestEncryptionKeysIncludesAdmins(t *testing.T) {
	r := New()
	admin := newKeySet(t)
	user := newKeySet(t)
	gone := newKeySet(t)

	adminID, err := r.AddUser(admin.SigningPub, admin.EncryptionPub, []domain.Role{domain.RoleUser, domain.RoleAdmin})
	require.NoError(t, err)
	userID, err := r.AddUser(user.SigningPub, user.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)
	goneID, err := r.AddUser(gone.SigningPub, gone.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)
	require.NoError(t, r.RemoveUser(goneID))

	keys := r.EncryptionKeys(domain.RoleUser)
	assert.Contains(t, keys, adminID)
	assert.Contains(t, keys, userID)
	assert.NotContains(t, keys, goneID, "blocked users drop out of recipient sets")

	// Even a role the admin does not carry still includes admins.
	keys = r.EncryptionKeys("auditor")
	assert.Contains(t, keys, adminID)
	assert.NotContains(t, keys, userID)
}

func TestSigningKeyAdminFallback(t *testing.T) {
	r := New()
	admin := newKeySet(t)

	_, ok := r.SigningKey(domain.AdminRecipient)
	assert.False(t, ok, "no trust root configured yet")

	require.NoError(t, r.SetAdminKeys(domain.AdminKeySet{
		SigningPub:    admin.SigningPub,
		EncryptionPub: admin.EncryptionPub,
	}))

	got, ok := r.SigningKey(domain.AdminRecipient)
	require.True(t, ok)
	assert.Equal(t, admin.SigningPub, got)

	// Replacing the trust root with different keys is rejected.
	other := newKeySet(t)
	err := r.SetAdminKeys(domain.AdminKeySet{
		SigningPub:    other.SigningPub,
		EncryptionPub: other.EncryptionPub,
	})
	assert.Error(t, err)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	r := New()
	admin := newKeySet(t)
	a := newKeySet(t)
	b := newKeySet(t)

	require.NoError(t, r.SetAdminKeys(domain.AdminKeySet{
		SigningPub:    admin.SigningPub,
		EncryptionPub: admin.EncryptionPub,
	}))
	idA, err := r.AddUser(a.SigningPub, a.EncryptionPub, []domain.Role{domain.RoleUser, domain.RoleAdmin})
	require.NoError(t, err)
	idB, err := r.AddUser(b.SigningPub, b.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)
	require.NoError(t, r.SetAttachment(idB, []byte(`{"quota":10}`)))
	require.NoError(t, r.RemoveUser(idB))

	snap, err := r.Snapshot()
	require.NoError(t, err)

	restored := New()
	require.NoError(t, restored.Restore(snap))

	assert.Equal(t, r.Len(), restored.Len())
	assert.Equal(t, r.AdminKeys(), restored.AdminKeys())
	eA, ok := restored.Entry(idA)
	require.True(t, ok)
	assert.Equal(t, a.SigningPub, eA.SigningKey)
	eB, ok := restored.Entry(idB)
	require.True(t, ok)
	assert.True(t, eB.Blocked)
	assert.Equal(t, []byte(`{"quota":10}`), eB.Attachment)

	// Restored registries keep issuing fresh IDs past retired ones.
	c := newKeySet(t)
	idC, err := restored.AddUser(c.SigningPub, c.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)
	assert.Greater(t, idC, idB)

	// Snapshots are deterministic.
	again, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snap, again)
}

func TestRestoreRejectsGarbageAndKeepsState(t *testing.T) {
	r := New()
	a := newKeySet(t)
	id, err := r.AddUser(a.SigningPub, a.EncryptionPub, []domain.Role{domain.RoleUser})
	require.NoError(t, err)

	require.Error(t, r.Restore([]byte("not json")))

	_, ok := r.Entry(id)
	assert.True(t, ok, "failed restore keeps the old state")
}
