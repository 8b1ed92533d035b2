package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultsync/internal/domain"
)

func TestReplicatedPutBumpsVersion(t *testing.T) {
	s := NewReplicated("local", NewFS(t.TempDir()))

	v, err := s.Put("notes/today", []byte("some data"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	v, err = s.Put("notes/today", []byte("newer data"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)

	obj, ok, err := s.Get("notes/today")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(2), obj.Version)
	assert.Equal(t, []byte("newer data"), obj.Payload)

	// Versions are tracked per key.
	v, err = s.Put("notes/tomorrow", []byte("other"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
}

func TestReplicatedGetMissing(t *testing.T) {
	s := NewReplicated("local", NewFS(t.TempDir()))
	_, ok, err := s.Get("never/written")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplicatedExportImport(t *testing.T) {
	src := NewReplicated("src", NewFS(t.TempDir()))
	dst := NewReplicated("dst", NewFS(t.TempDir()))

	_, err := src.Put("a", []byte("one"))
	require.NoError(t, err)
	_, err = src.Put("a", []byte("two"))
	require.NoError(t, err)
	_, err = src.Put("b", []byte("three"))
	require.NoError(t, err)

	all, err := src.ExportAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, uint64(2), all["a"].Version)

	// Import carries versions verbatim, no merge logic.
	require.NoError(t, dst.ImportBatch(all))
	obj, ok, err := dst.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(2), obj.Version)
	assert.Equal(t, []byte("two"), obj.Payload)

	// A later local Put continues from the imported version.
	v, err := dst.Put("a", []byte("local edit"))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
}

func TestReplicatedExclusive(t *testing.T) {
	s := NewReplicated("loc", NewFS(t.TempDir()))
	_, err := s.Put("k", []byte("v"))
	require.NoError(t, err)

	err = s.Exclusive(func(tx *Tx) error {
		all, err := tx.ExportAll()
		if err != nil {
			return err
		}
		assert.Len(t, all, 1)
		assert.Equal(t, "loc", tx.Name())
		return tx.ImportBatch(map[string]domain.StoredObject{
			"k": {Version: 9, Payload: []byte("imported")},
		})
	})
	require.NoError(t, err)

	obj, _, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), obj.Version)
}
