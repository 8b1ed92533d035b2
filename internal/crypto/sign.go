package crypto

import (
	"crypto/ed25519"

	"vaultsync/internal/domain"
)

// Sign signs data with priv and returns the signature.
func Sign(priv domain.SigningPrivateKey, data []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(priv[:]), data)
}

// Verify reports whether sig is a valid signature over data by pub. It never
// returns an error; callers use it as a gate before trusting decrypted
// content.
func Verify(pub domain.SigningPublicKey, data, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub[:]), data, sig)
}
