package domain

// UserID identifies a registered participant. IDs are non-negative, start at
// 1 and are never reused once handed out. AdminRecipient (0) is reserved for
// addressing the administrator before their real ID is known.
type UserID int64

// AdminRecipient is the key-blob slot a requester encrypts for when it only
// knows the administrator's out-of-band key set, not their user ID.
const AdminRecipient UserID = 0

// Role is a case-insensitive role identifier. Stored lower-case.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserEntry is one registry record. Entries are never physically deleted;
// removal sets Blocked so old signatures stay verifiable.
type UserEntry struct {
	ID            UserID              `json:"id"`
	SigningKey    SigningPublicKey    `json:"signing_key"`
	EncryptionKey EncryptionPublicKey `json:"encryption_key"`
	Roles         []Role              `json:"roles"`
	Attachment    []byte              `json:"attachment,omitempty"`
	Blocked       bool                `json:"blocked,omitempty"`
}

// HasRole reports whether the entry carries role r.
func (e *UserEntry) HasRole(r Role) bool {
	for _, have := range e.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// StoredObject is one versioned value in a replicated store. Version is a
// per-key counter maintained by whichever location last wrote the key, not a
// wall-clock timestamp.
type StoredObject struct {
	Version uint64 `json:"version"`
	Payload []byte `json:"payload"`
}

// RegistryKey is the well-known replicated-store key holding the serialized
// registry snapshot.
const RegistryKey = "registry/users"
