package leveldb

import (
	"testing"

	"github.com/iov-one/autoshare/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchIsAtomic(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	b := db.NewBatch()
	require.NoError(t, b.Set([]byte("a"), []byte("1")))
	require.NoError(t, b.Set([]byte("b"), []byte("2")))

	got, err := db.Get([]byte("a"))
	require.NoError(t, err)
	assert.Nil(t, got, "nothing is visible before write")

	require.NoError(t, b.Write())
	got, err = db.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)

	require.NoError(t, db.Delete([]byte("b")))
	ok, err := db.Has([]byte("b"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(dir)
	require.NoError(t, err)
	s, err := store.NewCommitStore(db, 1000)
	require.NoError(t, err)
	block := s.CacheWrapAt(1)
	require.NoError(t, block.Set([]byte("group"), []byte("data")))
	id, err := s.Commit(block)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()
	s, err = store.NewCommitStore(db, 1000)
	require.NoError(t, err)
	assert.Equal(t, id, s.LatestVersion())

	got, err := s.ReadOnly(2).Get([]byte("group"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}
