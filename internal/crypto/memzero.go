package crypto

import "vaultsync/internal/domain"

// Zero overwrites b in place. Used to drop key material once a session ends.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ZeroKeySet wipes the private halves of a key set. Called on logout and
// teardown; the set is unusable afterwards.
func ZeroKeySet(ks *domain.KeySet) {
	Zero(ks.SigningPriv[:])
	Zero(ks.EncryptionPriv[:])
}
