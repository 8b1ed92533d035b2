package registration

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	golog "github.com/ipfs/go-log/v2"

	"vaultsync/internal/domain"
	"vaultsync/internal/registry"
	"vaultsync/internal/store"
)

var log = golog.Logger("registration")

// State names the step a registration run has reached. Each run moves
// Requested -> Reviewed -> Completed; any failure is terminal for that run.
type State int

const (
	StateRequested State = iota + 1
	StateReviewed
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StateReviewed:
		return "reviewed"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// Request is what a joining participant sends: their public keys, the roles
// they ask for and free-form contact info for the administrator.
type Request struct {
	ID            string                     `json:"id"`
	Info          map[string]string          `json:"info,omitempty"`
	SigningKey    domain.SigningPublicKey    `json:"signing_key"`
	EncryptionKey domain.EncryptionPublicKey `json:"encryption_key"`
	Roles         []domain.Role              `json:"roles"`
}

// Response is what the administrator sends back: the assigned ID, the roles
// actually granted, configuration sections to merge locally and the registry
// snapshot at grant time. Immutable once issued.
type Response struct {
	UserID   domain.UserID                `json:"user_id"`
	Roles    []domain.Role                `json:"roles"`
	Sections map[string]map[string]string `json:"sections,omitempty"`
	Registry []byte                       `json:"registry"`
}

// NewRequest builds the request artifact on the requester's machine. Only
// the administrator named by admin can open it.
func NewRequest(info map[string]string, keys domain.KeySet, roles []domain.Role, admin domain.AdminKeySet) (*Artifact, error) {
	if admin.IsZero() {
		return nil, fmt.Errorf("administrator keys are not configured")
	}
	payload, err := json.Marshal(Request{
		ID:            uuid.NewString(),
		Info:          info,
		SigningKey:    keys.SigningPub,
		EncryptionKey: keys.EncryptionPub,
		Roles:         roles,
	})
	if err != nil {
		return nil, err
	}
	art, err := seal(payload, map[domain.UserID]domain.EncryptionPublicKey{
		domain.AdminRecipient: admin.EncryptionPub,
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("request artifact sealed for administrator")
	return art, nil
}

// Grant is the administrator's curated answer to a request. Empty Roles
// grants exactly what was requested.
type Grant struct {
	Roles      []domain.Role
	Sections   map[string]map[string]string
	Attachment []byte
}

// Service drives the administrator and requester sides of the protocol
// against an open registry and the shared replicated store.
type Service struct {
	reg    *registry.Registry
	shared *store.Replicated
}

// NewService returns a protocol service. shared may be nil when no shared
// location is configured; the registry snapshot then only travels inside the
// response artifact.
func NewService(reg *registry.Registry, shared *store.Replicated) *Service {
	return &Service{reg: reg, shared: shared}
}

// Review is the administrator step. It opens the request, registers the
// keys, persists the updated registry to the shared store and returns the
// signed, encrypted response artifact together with the assigned user ID.
//
// A key conflict surfaces as domain.ErrKeyConflict with nothing persisted
// and no response produced.
func (s *Service) Review(art *Artifact, adminID domain.UserID, adminKeys *domain.KeySet, grant Grant) (*Artifact, domain.UserID, error) {
	payload, err := art.open(domain.AdminRecipient, adminKeys.EncryptionPub, adminKeys.EncryptionPriv)
	if err != nil {
		return nil, 0, fmt.Errorf("open request: %w", err)
	}
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, 0, fmt.Errorf("decode request: %w", domain.ErrCrypto)
	}

	roles := grant.Roles
	if len(roles) == 0 {
		roles = req.Roles
	}
	id, err := s.reg.AddUser(req.SigningKey, req.EncryptionKey, roles)
	if err != nil {
		return nil, 0, err
	}
	if e, ok := s.reg.Entry(id); ok {
		roles = e.Roles // normalized form as stored
	}
	if grant.Attachment != nil {
		if err := s.reg.SetAttachment(id, grant.Attachment); err != nil {
			return nil, 0, err
		}
	}
	log.Infof("request %s reviewed: user %d, roles %v", req.ID, id, roles)

	snap, err := s.reg.Snapshot()
	if err != nil {
		return nil, 0, err
	}
	if err := s.publish(snap, adminID, adminKeys); err != nil {
		return nil, 0, err
	}

	respPayload, err := json.Marshal(Response{
		UserID:   id,
		Roles:    roles,
		Sections: grant.Sections,
		Registry: snap,
	})
	if err != nil {
		return nil, 0, err
	}
	resp, err := seal(respPayload, map[domain.UserID]domain.EncryptionPublicKey{
		id: req.EncryptionKey,
	})
	if err != nil {
		return nil, 0, err
	}
	resp.signWith(adminKeys.SigningPriv)
	return resp, id, nil
}

// publish writes the registry snapshot to the shared store, encrypted for
// all current users and signed by the administrator.
func (s *Service) publish(snap []byte, adminID domain.UserID, adminKeys *domain.KeySet) error {
	if s.shared == nil {
		log.Debugf("no shared store configured, snapshot travels in the response only")
		return nil
	}
	sec := store.NewSecureStore(s.shared, adminID, adminKeys,
		func() map[domain.UserID]domain.EncryptionPublicKey {
			return s.reg.EncryptionKeys(domain.RoleUser)
		},
		s.reg.SigningKey,
	)
	_, err := sec.Put(domain.RegistryKey, snap)
	return err
}

// Complete is the requester step. The response signature is verified against
// the administrator trust root before anything inside is decrypted or used;
// on failure the response is rejected whole with domain.ErrTrust. On success
// the local registry mirror is installed and the outcome returned, leaving
// config merging and the follow-up sync to the caller.
func (s *Service) Complete(art *Artifact, own *domain.KeySet, admin domain.AdminKeySet) (*Response, error) {
	if admin.IsZero() {
		return nil, fmt.Errorf("administrator keys are not configured")
	}
	if !art.verifyWith(admin.SigningPub) {
		return nil, fmt.Errorf("response rejected: %w", domain.ErrTrust)
	}
	payload, err := art.openAny(own.EncryptionPub, own.EncryptionPriv)
	if err != nil {
		return nil, fmt.Errorf("open response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", domain.ErrCrypto)
	}
	if err := s.reg.Restore(resp.Registry); err != nil {
		return nil, err
	}
	log.Infof("registration completed: user %d, roles %v", resp.UserID, resp.Roles)
	return &resp, nil
}
