package domain

// SigningPublicKey is an Ed25519 public key used to verify signatures.
type SigningPublicKey [32]byte

func (p SigningPublicKey) Slice() []byte { return p[:] }

// SigningPrivateKey is an Ed25519 private key (ed25519.PrivateKey layout).
type SigningPrivateKey [64]byte

func (k SigningPrivateKey) Slice() []byte { return k[:] }

// EncryptionPublicKey is a Curve25519 public key used to wrap symmetric keys.
type EncryptionPublicKey [32]byte

func (p EncryptionPublicKey) Slice() []byte { return p[:] }

// EncryptionPrivateKey is a Curve25519 private key.
type EncryptionPrivateKey [32]byte

func (k EncryptionPrivateKey) Slice() []byte { return k[:] }

// KeyPurpose tags a key pair with its single allowed use. Signing keys never
// encrypt and encryption keys never sign.
type KeyPurpose string

const (
	PurposeSigning    KeyPurpose = "signing"
	PurposeEncryption KeyPurpose = "encryption"
)

// KeySet holds both long-term key pairs owned by one participant. Private
// halves stay on this machine; public halves are shareable identifiers.
type KeySet struct {
	SigningPub  SigningPublicKey
	SigningPriv SigningPrivateKey

	EncryptionPub  EncryptionPublicKey
	EncryptionPriv EncryptionPrivateKey
}

// AdminKeySet is the administrator's public material, entered unencrypted
// out-of-band. Once set it is the trust root for every signature check on
// registration artifacts.
type AdminKeySet struct {
	SigningPub    SigningPublicKey
	EncryptionPub EncryptionPublicKey
}

// IsZero reports whether no admin keys have been configured yet.
func (a AdminKeySet) IsZero() bool {
	return a.SigningPub == (SigningPublicKey{}) && a.EncryptionPub == (EncryptionPublicKey{})
}
