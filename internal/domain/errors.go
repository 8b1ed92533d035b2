package domain

import "errors"

var (
	// ErrKeyConflict is the expected outcome when exactly one of a
	// requester's keys is already registered, or both are but under
	// different entries. Callers distinguish it from all other failures;
	// the registry is guaranteed untouched when it is returned.
	ErrKeyConflict = errors.New("public keys conflict with an existing entry")

	// ErrDecryption is returned when a key blob map has no slot for the
	// caller or the private key does not open it.
	ErrDecryption = errors.New("cannot decrypt: no matching key blob")

	// ErrCrypto covers malformed ciphertext, envelopes or key blobs.
	ErrCrypto = errors.New("malformed cryptographic artifact")

	// ErrTrust is returned when a signature does not verify against the
	// expected public key. Content guarded by the signature must not be
	// used at all.
	ErrTrust = errors.New("signature verification failed")

	// ErrLastRole rejects a role removal that would leave an entry with no
	// roles.
	ErrLastRole = errors.New("cannot remove the last role")

	// ErrBackendUnavailable signals an unreachable storage backend. No
	// silent retry happens; the caller decides.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrUnknownUser is returned for lookups of IDs that were never issued.
	ErrUnknownUser = errors.New("user is not registered")

	// ErrBlocked is returned when an operation targets a removed entry.
	ErrBlocked = errors.New("user entry is blocked")

	// ErrLocked is returned when key material is needed but the session has
	// not been unlocked.
	ErrLocked = errors.New("session is locked")
)
