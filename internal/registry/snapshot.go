package registry

import (
	"encoding/json"
	"fmt"

	"vaultsync/internal/domain"
)

// snapshotVersion is bumped when the snapshot layout changes.
const snapshotVersion = 1

type snapshot struct {
	Version int                                 `json:"version"`
	NextID  domain.UserID                       `json:"next_id"`
	Admin   domain.AdminKeySet                  `json:"admin"`
	Entries map[domain.UserID]*domain.UserEntry `json:"entries"`
}

// Snapshot serializes the whole registry to one blob. Map keys are encoded
// sorted, so identical registries produce identical bytes.
func (r *Registry) Snapshot() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return json.Marshal(snapshot{
		Version: snapshotVersion,
		NextID:  r.nextID,
		Admin:   r.admin,
		Entries: r.entries,
	})
}

// Restore replaces the registry contents with a snapshot blob. The previous
// state is kept on any error.
func (r *Registry) Restore(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode registry snapshot: %w", err)
	}
	if snap.Version > snapshotVersion {
		return fmt.Errorf("unsupported registry snapshot version %d", snap.Version)
	}

	entries := make(map[domain.UserID]*domain.UserEntry, len(snap.Entries))
	bySigning := make(map[domain.SigningPublicKey]domain.UserID, len(snap.Entries))
	byEncrypt := make(map[domain.EncryptionPublicKey]domain.UserID, len(snap.Entries))
	for id, e := range snap.Entries {
		if e == nil {
			return fmt.Errorf("registry snapshot has empty entry %d", id)
		}
		entries[id] = e
		bySigning[e.SigningKey] = id
		byEncrypt[e.EncryptionKey] = id
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = entries
	r.bySigning = bySigning
	r.byEncrypt = byEncrypt
	r.nextID = snap.NextID
	r.admin = snap.Admin
	log.Debugf("restored registry snapshot with %d entries, next id %d", len(entries), snap.NextID)
	return nil
}
