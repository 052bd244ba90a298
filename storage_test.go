package kermesse_test

import (
	"os"
	"path/filepath"
	"testing"

	kermesse "github.com/kermesse/go-kermesse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	storage, err := kermesse.NewFileStorage(path)
	require.NoError(t, err)

	require.NoError(t, storage.Set("kermesse.agent.actor", "actor-json"))
	require.NoError(t, storage.Set("kermesse.agent.session", "session-json"))

	val, ok, err := storage.Get("kermesse.agent.actor")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "actor-json", val)

	_, ok, err = storage.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoragePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	storage, err := kermesse.NewFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, storage.Set("key", "value"))

	reopened, err := kermesse.NewFileStorage(path)
	require.NoError(t, err)

	val, ok, err := reopened.Get("key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", val)
}

func TestFileStorageDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	storage, err := kermesse.NewFileStorage(path)
	require.NoError(t, err)

	require.NoError(t, storage.Set("a", "1"))
	require.NoError(t, storage.Set("b", "2"))
	require.NoError(t, storage.Set("c", "3"))

	// multi-key delete is one write
	require.NoError(t, storage.Delete("a", "b"))

	_, ok, _ := storage.Get("a")
	assert.False(t, ok)
	_, ok, _ = storage.Get("b")
	assert.False(t, ok)
	_, ok, _ = storage.Get("c")
	assert.True(t, ok)

	// deleting missing keys is fine
	require.NoError(t, storage.Delete("a", "nope"))
}

func TestFileStorageCorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	require.NoError(t, os.WriteFile(path, []byte("{i am not json"), 0o600))

	storage, err := kermesse.NewFileStorage(path)
	require.NoError(t, err)

	_, ok, err := storage.Get("key")
	require.NoError(t, err)
	assert.False(t, ok)

	// the next write rebuilds the document
	require.NoError(t, storage.Set("key", "value"))

	val, ok, err := storage.Get("key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", val)
}

func TestFileStorageCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "sessions.json")

	storage, err := kermesse.NewFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, storage.Set("key", "value"))

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestFileStorageRejectsEmptyPath(t *testing.T) {
	_, err := kermesse.NewFileStorage("")
	assert.Error(t, err)
}

func TestMemoryStorage(t *testing.T) {
	storage := kermesse.NewMemoryStorage()

	require.NoError(t, storage.Set("a", "1"))

	val, ok, err := storage.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", val)

	require.NoError(t, storage.Delete("a"))

	_, ok, err = storage.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}
