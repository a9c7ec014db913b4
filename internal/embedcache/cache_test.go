package embedcache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
)

func TestCache_GetPut(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"))

	_, ok := c.Get("electronic security perimeter")
	assert.False(t, ok)

	vec := []float32{0.1, 0.2, 0.3}
	c.Put("electronic security perimeter", vec)

	got, ok := c.Get("electronic security perimeter")
	require.True(t, ok)
	assert.Equal(t, vec, got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_KeyNormalisesWhitespace(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"))
	c.Put("remote  access\n controls", []float32{1})

	// Identical text with different formatting shares the entry.
	got, ok := c.Get("remote access controls")
	require.True(t, ok)
	assert.Equal(t, []float32{1}, got)
}

func TestCache_RejectsEmptyVector(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"))
	c.Put("some text", nil)
	c.Put("some text", []float32{})
	assert.Equal(t, 0, c.Len())
}

func TestCache_PersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := New(path)
	c.Put("first passage", []float32{0.5, -0.25})
	c.Put("second passage", []float32{1, 2, 3})
	require.NoError(t, c.Persist())

	reloaded := New(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 2, reloaded.Len())

	got, ok := reloaded.Get("first passage")
	require.True(t, ok)
	assert.Equal(t, []float32{0.5, -0.25}, got)
}

func TestCache_LoadMissingFile(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, c.Load())
	assert.Equal(t, 0, c.Len())
}

func TestCache_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	c := New(path)
	require.NoError(t, c.Load(), "corrupt cache must never be fatal")
	assert.Equal(t, 0, c.Len())
}

func TestCache_PersistOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	c := New(path)
	c.Put("passage", []float32{1})
	require.NoError(t, c.Persist())
	c.Put("another", []float32{2})
	require.NoError(t, c.Persist())

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cache.json", entries[0].Name())

	reloaded := New(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 2, reloaded.Len())
}

func TestCache_PersistErrorWrapsCacheIO(t *testing.T) {
	// Persisting into a path whose parent is a file fails.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	c := New(filepath.Join(blocker, "cache.json"))
	c.Put("passage", []float32{1})

	err := c.Persist()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCacheIO))
}
