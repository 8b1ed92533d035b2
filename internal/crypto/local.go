package crypto

import "golang.org/x/crypto/argon2"

// SaltBytes is the expected salt size for local key derivation.
const SaltBytes = 16

// DeriveLocalKey derives a symmetric key from a password and an
// application-chosen salt using Argon2id. The salt must stay fixed: rotating
// it invalidates everything previously encrypted locally.
func DeriveLocalKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, KeyBytes)
}
