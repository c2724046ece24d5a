package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuckyCoder5/Robby-chatbot/internal/cachestore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("key1", []byte("blob one")))
	blob, created, err := s.Get("key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob one"), blob)
	assert.False(t, created.IsZero())
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Get("nope")
	assert.ErrorIs(t, err, cachestore.ErrNotFound)
}

func TestPutOverwrites(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("key", []byte("old")))
	require.NoError(t, s.Put("key", []byte("new")))
	blob, _, err := s.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), blob)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("key", []byte("blob")))
	require.NoError(t, s.Delete("key"))
	_, _, err := s.Get("key")
	assert.ErrorIs(t, err, cachestore.ErrNotFound)

	assert.NoError(t, s.Delete("key"))
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put("key", []byte("blob")))
	require.NoError(t, s.Close())

	s2, err := NewStore(path)
	require.NoError(t, err)
	defer s2.Close()
	blob, _, err := s2.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), blob)
}
