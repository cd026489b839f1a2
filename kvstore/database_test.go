package kvstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/shardchain/shardhash"
)

func TestInsertGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db, err := Open[string](Namespace(dir, 1, 2, time.Now()))
	require.NoError(t, err)
	defer db.Close()

	key := shardhash.Hash([]byte("a"))
	require.False(t, db.ContainsKey(key))

	require.NoError(t, db.Insert(key, "hello"))
	require.True(t, db.ContainsKey(key))

	got, ok := db.Get(key)
	require.True(t, ok)
	require.Equal(t, "hello", got)
	require.Equal(t, 1, db.Len())
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	db, err := Open[int](Namespace(dir, 0, 0, time.Now()))
	require.NoError(t, err)
	defer db.Close()

	key := shardhash.Hash([]byte("k"))
	require.NoError(t, db.Insert(key, 7))
	require.NoError(t, db.Remove(key))
	require.False(t, db.ContainsKey(key))
	require.Equal(t, 0, db.Len())
}

func TestIter(t *testing.T) {
	dir := t.TempDir()
	db, err := Open[int](Namespace(dir, 0, 0, time.Now()))
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Insert(shardhash.Hash([]byte{byte(i)}), i))
	}

	entries, err := db.Iter()
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestNamespaceDiffersByNodeID(t *testing.T) {
	now := time.Now()
	a := Namespace("/tmp/x", 0, 0, now)
	b := Namespace("/tmp/x", 0, 1, now)
	require.NotEqual(t, a, b)
}
