package store

import (
	"encoding/json"
	"fmt"

	"vaultsync/internal/crypto"
	"vaultsync/internal/domain"
)

// secureBody is the signed part of a shared object: the ciphertext plus the
// per-recipient key blobs. The signature covers these exact bytes, so a flip
// anywhere in either is caught before any decryption is attempted.
type secureBody struct {
	Cipher   []byte                   `json:"cipher"`
	KeyBlobs map[domain.UserID][]byte `json:"key_blobs"`
}

type secureEnvelope struct {
	Signer    domain.UserID `json:"signer"`
	Body      []byte        `json:"body"`
	Signature []byte        `json:"signature"`
}

// SecureStore layers shared-data protection over a Replicated store:
// hybrid-encrypt for the recipient set, then sign, on every write; verify the
// writer's signature, then decrypt, on every read.
type SecureStore struct {
	store      *Replicated
	self       domain.UserID
	keys       *domain.KeySet
	recipients func() map[domain.UserID]domain.EncryptionPublicKey
	resolve    domain.KeyResolver
}

// NewSecureStore wraps s. recipients supplies the current encryption targets
// per write; resolve maps a writer's user ID to their signing key on read.
func NewSecureStore(
	s *Replicated,
	self domain.UserID,
	keys *domain.KeySet,
	recipients func() map[domain.UserID]domain.EncryptionPublicKey,
	resolve domain.KeyResolver,
) *SecureStore {
	return &SecureStore{store: s, self: self, keys: keys, recipients: recipients, resolve: resolve}
}

// Put encrypts payload for the current recipient set, signs the result and
// stores it under key.
func (s *SecureStore) Put(key string, payload []byte) (uint64, error) {
	cipher, blobs, err := crypto.HybridEncrypt(payload, s.recipients())
	if err != nil {
		return 0, err
	}
	body, err := json.Marshal(secureBody{Cipher: cipher, KeyBlobs: blobs})
	if err != nil {
		return 0, err
	}
	env := secureEnvelope{
		Signer:    s.self,
		Body:      body,
		Signature: crypto.Sign(s.keys.SigningPriv, body),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return 0, err
	}
	return s.store.Put(key, data)
}

// Get verifies and decrypts the object under key. Verification failure is
// domain.ErrTrust and nothing of the content is returned.
func (s *SecureStore) Get(key string) ([]byte, bool, error) {
	obj, ok, err := s.store.Get(key)
	if err != nil || !ok {
		return nil, ok, err
	}
	return s.Open(obj.Payload)
}

// Open verifies and decrypts one raw shared object payload.
func (s *SecureStore) Open(data []byte) ([]byte, bool, error) {
	var env secureEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false, fmt.Errorf("decode shared object: %w", domain.ErrCrypto)
	}
	sigKey, known := s.resolve(env.Signer)
	if !known {
		return nil, false, fmt.Errorf("unknown writer %d: %w", env.Signer, domain.ErrTrust)
	}
	if !crypto.Verify(sigKey, env.Body, env.Signature) {
		return nil, false, fmt.Errorf("writer %d: %w", env.Signer, domain.ErrTrust)
	}
	var body secureBody
	if err := json.Unmarshal(env.Body, &body); err != nil {
		return nil, false, fmt.Errorf("decode shared body: %w", domain.ErrCrypto)
	}
	payload, err := crypto.HybridDecrypt(body.Cipher, body.KeyBlobs, s.self, s.keys.EncryptionPub, s.keys.EncryptionPriv)
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}
