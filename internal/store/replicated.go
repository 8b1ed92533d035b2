package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	golog "github.com/ipfs/go-log/v2"

	"vaultsync/internal/domain"
)

var log = golog.Logger("store")

// objPrefix is where replicated objects live inside a backend, keeping them
// apart from any other blobs sharing the location.
const objPrefix = "obj/"

// Replicated is one named storage location: a mapping of logical keys to
// versioned objects over a Backend. Every Put bumps the key's version
// counter; only the sync engine may import foreign objects.
type Replicated struct {
	name    string
	backend domain.Backend
	mu      sync.Mutex
}

// NewReplicated returns a store named name over backend b.
func NewReplicated(name string, b domain.Backend) *Replicated {
	return &Replicated{name: name, backend: b}
}

// Name identifies the location in logs and sync reports.
func (s *Replicated) Name() string { return s.name }

// Get returns the object stored under key, or ok=false when absent.
func (s *Replicated) Get(key string) (domain.StoredObject, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key)
}

// Put writes payload under key, allocating the next version for that key in
// this location. It returns the version written.
func (s *Replicated) Put(key string, payload []byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok, err := s.get(key)
	if err != nil {
		return 0, err
	}
	obj := domain.StoredObject{Version: 1, Payload: payload}
	if ok {
		obj.Version = prev.Version + 1
	}
	if err := s.write(key, obj); err != nil {
		return 0, err
	}
	log.Debugf("%s: put %s v%d (%d bytes)", s.name, key, obj.Version, len(payload))
	return obj.Version, nil
}

// ExportAll returns the full key-to-object mapping of this location.
func (s *Replicated) ExportAll() (map[string]domain.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exportAll()
}

// ImportBatch overwrites local entries with the supplied ones, versions
// included, without any merge logic. That responsibility belongs entirely to
// the sync engine.
func (s *Replicated) ImportBatch(entries map[string]domain.StoredObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importBatch(entries)
}

// Exclusive runs fn while holding the store lock, so a whole sync pass sees
// and mutates a location without interleaving. The lock is released on every
// exit path.
func (s *Replicated) Exclusive(fn func(*Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s})
}

// Tx is a view of a Replicated store inside an Exclusive block.
type Tx struct {
	s *Replicated
}

// ExportAll is Replicated.ExportAll under the already-held lock.
func (t *Tx) ExportAll() (map[string]domain.StoredObject, error) {
	return t.s.exportAll()
}

// ImportBatch is Replicated.ImportBatch under the already-held lock.
func (t *Tx) ImportBatch(entries map[string]domain.StoredObject) error {
	return t.s.importBatch(entries)
}

// Name identifies the underlying location.
func (t *Tx) Name() string { return t.s.name }

func (s *Replicated) get(key string) (domain.StoredObject, bool, error) {
	data, ok, err := s.backend.Read(objPrefix + key)
	if err != nil {
		return domain.StoredObject{}, false, fmt.Errorf("%s: read %s: %w", s.name, key, err)
	}
	if !ok {
		return domain.StoredObject{}, false, nil
	}
	var obj domain.StoredObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return domain.StoredObject{}, false, fmt.Errorf("%s: decode %s: %w", s.name, key, err)
	}
	return obj, true, nil
}

func (s *Replicated) write(key string, obj domain.StoredObject) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	if err := s.backend.Write(objPrefix+key, data); err != nil {
		return fmt.Errorf("%s: write %s: %w", s.name, key, err)
	}
	return nil
}

func (s *Replicated) exportAll() (map[string]domain.StoredObject, error) {
	paths, err := s.backend.List(objPrefix)
	if err != nil {
		return nil, fmt.Errorf("%s: list: %w", s.name, err)
	}
	out := make(map[string]domain.StoredObject, len(paths))
	for _, p := range paths {
		key := strings.TrimPrefix(p, objPrefix)
		obj, ok, err := s.get(key)
		if err != nil {
			return nil, err
		}
		if ok {
			out[key] = obj
		}
	}
	return out, nil
}

func (s *Replicated) importBatch(entries map[string]domain.StoredObject) error {
	for key, obj := range entries {
		if err := s.write(key, obj); err != nil {
			return err
		}
		log.Debugf("%s: imported %s v%d", s.name, key, obj.Version)
	}
	return nil
}
