package registration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vaultsync/internal/crypto"
	"vaultsync/internal/domain"
)

// artifactVersion is the current wire format of registration artifacts.
const artifactVersion = 1

// Artifact is one registration file: ciphertext plus key blobs, and for
// responses a signature. The signature covers Body byte-for-byte, so any
// tampering with the ciphertext or the key blobs is caught before decryption.
type Artifact struct {
	Version   int    `json:"version"`
	Body      []byte `json:"body"`
	Signature []byte `json:"signature,omitempty"`
}

type artifactBody struct {
	Cipher   []byte                   `json:"cipher"`
	KeyBlobs map[domain.UserID][]byte `json:"key_blobs"`
}

// seal hybrid-encrypts payload for the recipients and wraps it as an
// artifact.
func seal(payload []byte, recipients map[domain.UserID]domain.EncryptionPublicKey) (*Artifact, error) {
	cipher, blobs, err := crypto.HybridEncrypt(payload, recipients)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(artifactBody{Cipher: cipher, KeyBlobs: blobs})
	if err != nil {
		return nil, err
	}
	return &Artifact{Version: artifactVersion, Body: body}, nil
}

// open decrypts the artifact payload for the given recipient slot.
func (a *Artifact) open(own domain.UserID, pub domain.EncryptionPublicKey, priv domain.EncryptionPrivateKey) ([]byte, error) {
	body, err := a.body()
	if err != nil {
		return nil, err
	}
	return crypto.HybridDecrypt(body.Cipher, body.KeyBlobs, own, pub, priv)
}

// openAny decrypts by trying every key blob. Used by the requester, who does
// not yet know the user ID the administrator assigned.
func (a *Artifact) openAny(pub domain.EncryptionPublicKey, priv domain.EncryptionPrivateKey) ([]byte, error) {
	body, err := a.body()
	if err != nil {
		return nil, err
	}
	for id := range body.KeyBlobs {
		payload, err := crypto.HybridDecrypt(body.Cipher, body.KeyBlobs, id, pub, priv)
		if err == nil {
			return payload, nil
		}
	}
	return nil, fmt.Errorf("no key blob matches: %w", domain.ErrDecryption)
}

func (a *Artifact) body() (artifactBody, error) {
	if a.Version > artifactVersion {
		return artifactBody{}, fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	var body artifactBody
	if err := json.Unmarshal(a.Body, &body); err != nil {
		return artifactBody{}, fmt.Errorf("decode artifact body: %w", domain.ErrCrypto)
	}
	return body, nil
}

// signWith signs the artifact body with the administrator's signing key.
func (a *Artifact) signWith(priv domain.SigningPrivateKey) {
	a.Signature = crypto.Sign(priv, a.Body)
}

// verifyWith reports whether the artifact carries a valid signature by pub.
func (a *Artifact) verifyWith(pub domain.SigningPublicKey) bool {
	return crypto.Verify(pub, a.Body, a.Signature)
}

// WriteFile stores the artifact as a single file, written atomically.
func (a *Artifact) WriteFile(path string) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadArtifact loads an artifact file.
func ReadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, domain.ErrCrypto)
	}
	return &a, nil
}
