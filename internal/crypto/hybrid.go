package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/nacl/box"

	"vaultsync/internal/domain"
)

// KeyBytes is the symmetric key size used for payload encryption.
const KeyBytes = chacha20poly1305.KeySize

// HybridEncrypt encrypts plaintext once under a fresh symmetric key and wraps
// that key separately for every recipient. The returned key blob map is keyed
// by recipient identity. Adding or removing a recipient only ever touches the
// blob map, never the ciphertext.
func HybridEncrypt(plaintext []byte, recipients map[domain.UserID]domain.EncryptionPublicKey) (ciphertext []byte, keyBlobs map[domain.UserID][]byte, err error) {
	key := make([]byte, KeyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, err
	}
	defer Zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	ciphertext = aead.Seal(nonce, nonce, plaintext, nil)

	keyBlobs = make(map[domain.UserID][]byte, len(recipients))
	for id, pub := range recipients {
		peer := [32]byte(pub)
		blob, err := box.SealAnonymous(nil, key, &peer, rand.Reader)
		if err != nil {
			return nil, nil, fmt.Errorf("wrap key for %d: %w", id, err)
		}
		keyBlobs[id] = blob
	}
	return ciphertext, keyBlobs, nil
}

// HybridDecrypt recovers the plaintext for one recipient. It fails with
// domain.ErrDecryption when own is absent from the blob map or the private
// key does not open its blob.
func HybridDecrypt(ciphertext []byte, keyBlobs map[domain.UserID][]byte, own domain.UserID, pub domain.EncryptionPublicKey, priv domain.EncryptionPrivateKey) ([]byte, error) {
	blob, ok := keyBlobs[own]
	if !ok {
		return nil, fmt.Errorf("recipient %d: %w", own, domain.ErrDecryption)
	}
	pubArr := [32]byte(pub)
	privArr := [32]byte(priv)
	key, ok := box.OpenAnonymous(nil, blob, &pubArr, &privArr)
	if !ok {
		return nil, fmt.Errorf("recipient %d: %w", own, domain.ErrDecryption)
	}
	defer Zero(key)

	if len(key) != KeyBytes {
		return nil, fmt.Errorf("recipient %d: %w", own, domain.ErrDecryption)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, fmt.Errorf("short ciphertext: %w", domain.ErrCrypto)
	}
	nonce, ct := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", domain.ErrDecryption)
	}
	return plaintext, nil
}
