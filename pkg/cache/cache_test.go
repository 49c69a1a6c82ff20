package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/commitviz/pkg/cache"
)

type entry struct {
	Names []string
	Count int
}

func TestStore_MissIsNotAnError(t *testing.T) {
	t.Parallel()

	store, err := cache.New(t.TempDir())
	require.NoError(t, err)

	var got entry

	hit, err := store.Get("absent", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStore_PutThenGet(t *testing.T) {
	t.Parallel()

	store, err := cache.New(filepath.Join(t.TempDir(), "nested", "cache"))
	require.NoError(t, err)

	want := entry{Names: []string{"main.js", "style.css"}, Count: 42}
	require.NoError(t, store.Put("abc123", want))

	var got entry

	hit, err := store.Get("abc123", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, want, got)

	files, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Len(t, files, 1, "temp files must not linger")
}

func TestStore_CorruptEntry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	store, err := cache.New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.gob.lz4"), []byte("not lz4"), 0o600))

	var got entry

	hit, err := store.Get("bad", &got)
	require.Error(t, err)
	assert.False(t, hit)
}

func TestStore_RejectsPathKeys(t *testing.T) {
	t.Parallel()

	store, err := cache.New(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../escape", "a/b"} {
		err := store.Put(key, entry{})
		require.ErrorIs(t, err, cache.ErrInvalidKey, key)
	}
}
