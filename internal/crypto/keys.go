package crypto

import (
	"crypto/ed25519"
	"crypto/rand"

	"golang.org/x/crypto/nacl/box"

	"vaultsync/internal/domain"
)

// GenerateSigningKeyPair returns a new Ed25519 signing key pair.
func GenerateSigningKeyPair() (pub domain.SigningPublicKey, priv domain.SigningPrivateKey, err error) {
	pk, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return pub, priv, err
	}
	copy(pub[:], pk)
	copy(priv[:], sk)
	return pub, priv, nil
}

// GenerateEncryptionKeyPair returns a new Curve25519 key pair for key
// wrapping.
func GenerateEncryptionKeyPair() (pub domain.EncryptionPublicKey, priv domain.EncryptionPrivateKey, err error) {
	pk, sk, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return pub, priv, err
	}
	copy(pub[:], pk[:])
	copy(priv[:], sk[:])
	return pub, priv, nil
}

// GenerateKeySet returns a complete fresh key set: one signing pair and one
// encryption pair.
func GenerateKeySet() (domain.KeySet, error) {
	sigPub, sigPriv, err := GenerateSigningKeyPair()
	if err != nil {
		return domain.KeySet{}, err
	}
	encPub, encPriv, err := GenerateEncryptionKeyPair()
	if err != nil {
		return domain.KeySet{}, err
	}
	return domain.KeySet{
		SigningPub:     sigPub,
		SigningPriv:    sigPriv,
		EncryptionPub:  encPub,
		EncryptionPriv: encPriv,
	}, nil
}
