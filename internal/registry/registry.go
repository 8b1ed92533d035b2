package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	golog "github.com/ipfs/go-log/v2"

	"vaultsync/internal/domain"
)

var log = golog.Logger("registry")

// Registry holds all user entries plus the administrator trust root. Safe
// for concurrent readers; mutations take the write lock.
type Registry struct {
	mu        sync.RWMutex
	entries   map[domain.UserID]*domain.UserEntry
	bySigning map[domain.SigningPublicKey]domain.UserID
	byEncrypt map[domain.EncryptionPublicKey]domain.UserID
	nextID    domain.UserID
	admin     domain.AdminKeySet
}

// New returns an empty registry. The first issued ID is 1; 0 stays reserved
// as the out-of-band administrator slot.
func New() *Registry {
	return &Registry{
		entries:   make(map[domain.UserID]*domain.UserEntry),
		bySigning: make(map[domain.SigningPublicKey]domain.UserID),
		byEncrypt: make(map[domain.EncryptionPublicKey]domain.UserID),
		nextID:    1,
	}
}

// SetAdminKeys installs the administrator's public keys as the trust root.
// Replacing an already-set trust root with different keys is rejected.
func (r *Registry) SetAdminKeys(keys domain.AdminKeySet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.admin.IsZero() && r.admin != keys {
		return fmt.Errorf("trust root already set to different keys")
	}
	r.admin = keys
	return nil
}

// AdminKeys returns the configured trust root.
func (r *Registry) AdminKeys() domain.AdminKeySet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.admin
}

// AddUser registers a pair of public keys, or updates the matching existing
// entry. Outcomes:
//
//   - both keys unseen: a new entry with a fresh ID is created;
//   - both keys belong to the same entry: roles and attachment are updated
//     and the existing ID returned;
//   - exactly one key known, or both known under different entries:
//     domain.ErrKeyConflict, with the registry guaranteed unchanged.
func (r *Registry) AddUser(sig domain.SigningPublicKey, enc domain.EncryptionPublicKey, roles []domain.Role) (domain.UserID, error) {
	roles = normalizeRoles(roles)
	if len(roles) == 0 {
		return 0, fmt.Errorf("at least one role is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sigID, sigKnown := r.bySigning[sig]
	encID, encKnown := r.byEncrypt[enc]

	switch {
	case sigKnown && encKnown && sigID == encID:
		entry := r.entries[sigID]
		if entry.Blocked {
			return 0, fmt.Errorf("user %d: %w", sigID, domain.ErrBlocked)
		}
		entry.Roles = roles
		log.Infof("user %d already registered, roles set to %v", sigID, roles)
		return sigID, nil
	case sigKnown || encKnown:
		id := sigID
		if !sigKnown {
			id = encID
		}
		log.Infof("key material of new user collides with user %d", id)
		return 0, fmt.Errorf("user %d: %w", id, domain.ErrKeyConflict)
	}

	id := r.nextID
	r.nextID++
	r.entries[id] = &domain.UserEntry{
		ID:            id,
		SigningKey:    sig,
		EncryptionKey: enc,
		Roles:         roles,
	}
	r.bySigning[sig] = id
	r.byEncrypt[enc] = id
	log.Infof("added user %d with roles %v, next id %d", id, roles, r.nextID)
	return id, nil
}

// Entry returns a copy of the entry for id.
func (r *Registry) Entry(id domain.UserID) (domain.UserEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return domain.UserEntry{}, false
	}
	cp := *e
	cp.Roles = append([]domain.Role(nil), e.Roles...)
	cp.Attachment = append([]byte(nil), e.Attachment...)
	return cp, true
}

// Len returns the number of entries, blocked ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Users returns the IDs of all unblocked users, optionally filtered by role.
// The empty role matches everyone. Result is sorted for deterministic output.
func (r *Registry) Users(role domain.Role) []domain.UserID {
	role = domain.Role(strings.ToLower(string(role)))
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []domain.UserID
	for id, e := range r.entries {
		if e.Blocked {
			continue
		}
		if role != "" && !e.HasRole(role) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// HasRole reports whether id exists, is not blocked and carries role.
func (r *Registry) HasRole(id domain.UserID, role domain.Role) bool {
	role = domain.Role(strings.ToLower(string(role)))
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return ok && !e.Blocked && e.HasRole(role)
}

// AddRole adds a role to an entry. Adding an existing role is a no-op.
func (r *Registry) AddRole(id domain.UserID, role domain.Role) error {
	role = domain.Role(strings.ToLower(string(role)))
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, domain.ErrUnknownUser)
	}
	if e.Blocked {
		return fmt.Errorf("user %d: %w", id, domain.ErrBlocked)
	}
	if e.HasRole(role) {
		return nil
	}
	e.Roles = append(e.Roles, role)
	log.Infof("user %d granted role %s", id, role)
	return nil
}

// RemoveRole removes a role from an entry. Removing the last remaining role
// is rejected with domain.ErrLastRole and leaves the entry unchanged.
func (r *Registry) RemoveRole(id domain.UserID, role domain.Role) error {
	role = domain.Role(strings.ToLower(string(role)))
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, domain.ErrUnknownUser)
	}
	if !e.HasRole(role) {
		return nil
	}
	if len(e.Roles) == 1 {
		return fmt.Errorf("user %d, role %s: %w", id, role, domain.ErrLastRole)
	}
	kept := e.Roles[:0]
	for _, have := range e.Roles {
		if have != role {
			kept = append(kept, have)
		}
	}
	e.Roles = kept
	log.Infof("user %d lost role %s", id, role)
	return nil
}

// RemoveUser marks an entry blocked. The entry and its keys stay in the
// registry so data signed in the past remains verifiable; the ID is retired
// for good.
func (r *Registry) RemoveUser(id domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, domain.ErrUnknownUser)
	}
	e.Blocked = true
	log.Infof("user %d blocked", id)
	return nil
}

// SetAttachment replaces the opaque per-user configuration blob.
func (r *Registry) SetAttachment(id domain.UserID, blob []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, domain.ErrUnknownUser)
	}
	e.Attachment = append([]byte(nil), blob...)
	return nil
}

// EncryptionKeys collects the public encryption keys for every unblocked
// member of the given roles, keyed by user ID. Administrators are always
// included so shared data never locks them out.
func (r *Registry) EncryptionKeys(roles ...domain.Role) map[domain.UserID]domain.EncryptionPublicKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := make(map[domain.Role]bool, len(roles)+1)
	for _, role := range roles {
		want[domain.Role(strings.ToLower(string(role)))] = true
	}
	want[domain.RoleAdmin] = true

	out := make(map[domain.UserID]domain.EncryptionPublicKey)
	for id, e := range r.entries {
		if e.Blocked {
			continue
		}
		for role := range want {
			if e.HasRole(role) {
				out[id] = e.EncryptionKey
				break
			}
		}
	}
	return out
}

// SigningKey resolves the signing public key for a user ID. Blocked entries
// still resolve: their old signatures must stay verifiable.
func (r *Registry) SigningKey(id domain.UserID) (domain.SigningPublicKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == domain.AdminRecipient && !r.admin.IsZero() {
		return r.admin.SigningPub, true
	}
	e, ok := r.entries[id]
	if !ok {
		return domain.SigningPublicKey{}, false
	}
	return e.SigningKey, true
}

func normalizeRoles(roles []domain.Role) []domain.Role {
	seen := make(map[domain.Role]bool, len(roles))
	var out []domain.Role
	for _, role := range roles {
		role = domain.Role(strings.ToLower(strings.TrimSpace(string(role))))
		if role == "" || seen[role] {
			continue
		}
		seen[role] = true
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
