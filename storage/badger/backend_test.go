package badger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/colormatch/storage"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(tmpDir, false, WithLogger(slog.Default()))
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "missing directories are created")
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0o644))

	_, err := OpenBackend(tmpFile, false)
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestBackendClosedRejectsWork(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	catalog, err := NewCatalogRepository(backend)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	called := false
	err = backend.WithTx(func(_ *badger.Txn) error {
		called = true
		return nil
	}, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.False(t, called)

	_, err = backend.GetSequence("jobs")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = catalog.CountItems(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
