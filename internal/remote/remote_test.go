package remote

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultsync/internal/domain"
	"vaultsync/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(NewHandler(store.NewFS(t.TempDir())))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client())
}

func TestClientBackendContract(t *testing.T) {
	c := newTestClient(t)

	_, ok, err := c.Read("obj/missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Write("obj/a/one", []byte("first")))
	require.NoError(t, c.Write("obj/b/two", []byte("second")))

	data, ok, err := c.Read("obj/a/one")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("first"), data)

	require.NoError(t, c.Write("obj/a/one", []byte("updated")))
	data, _, err = c.Read("obj/a/one")
	require.NoError(t, err)
	assert.Equal(t, []byte("updated"), data)

	paths, err := c.List("obj/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"obj/a/one", "obj/b/two"}, paths)

	paths, err = c.List("obj/a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"obj/a/one"}, paths)
}

func TestClientServerDown(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil)

	_, _, err := c.Read("obj/x")
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.ErrorIs(t, c.Write("obj/x", []byte("v")), domain.ErrBackendUnavailable)
	_, err = c.List("obj/")
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestHandlerRejectsBadPaths(t *testing.T) {
	srv := httptest.NewServer(NewHandler(store.NewFS(t.TempDir())))
	defer srv.Close()

	for _, path := range []string{"/blob/", "/blob/..secret"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestReplicatedOverRemote(t *testing.T) {
	c := newTestClient(t)
	s := store.NewReplicated("remote", c)

	v, err := s.Put("k", []byte("via http"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	obj, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("via http"), obj.Payload)
}
