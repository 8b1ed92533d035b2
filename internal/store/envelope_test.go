package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultsync/internal/crypto"
	"vaultsync/internal/domain"
)

func TestPassphraseEnvelopeRoundTrip(t *testing.T) {
	secret := []byte("the raw key material")

	blob, err := sealWithPassphrase("correct horse", secret)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), string(secret))

	got, err := openWithPassphrase("correct horse", blob)
	require.NoError(t, err)
	assert.Equal(t, secret, got)

	_, err = openWithPassphrase("wrong horse", blob)
	assert.ErrorIs(t, err, domain.ErrCrypto)

	_, err = openWithPassphrase("correct horse", []byte("garbage"))
	assert.ErrorIs(t, err, domain.ErrCrypto)
}

func TestSealWithKeyRoundTrip(t *testing.T) {
	key := crypto.DeriveLocalKey("pass", bytes.Repeat([]byte{1}, crypto.SaltBytes))
	other := crypto.DeriveLocalKey("pass", bytes.Repeat([]byte{2}, crypto.SaltBytes))

	blob, err := SealWithKey(key, []byte("mirror bytes"))
	require.NoError(t, err)

	got, err := OpenWithKey(key, blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("mirror bytes"), got)

	_, err = OpenWithKey(other, blob)
	assert.ErrorIs(t, err, domain.ErrCrypto)

	_, err = OpenWithKey(key, blob[:4])
	assert.ErrorIs(t, err, domain.ErrCrypto)
}
