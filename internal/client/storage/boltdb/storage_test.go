package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()

	store, err := New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestNew_CreatesFileAndBuckets(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "client.db")

	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "в файле лежат токены")

	err = store.db.View(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAuth, bucketWallet, bucketSession} {
			assert.NotNil(t, tx.Bucket(name), "bucket %s", name)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestNew_BadPath(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "no", "such", "dir", "client.db"))
	require.Error(t, err)
	assert.Nil(t, store)
}

func TestClose_Idempotent(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)

	require.NoError(t, store.Close())
	assert.Nil(t, store.db)
	assert.NoError(t, store.Close())
}

func TestReopen_KeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "client.db")
	ctx := context.Background()

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveAuth(ctx, testAuthData(100)))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.GetAuth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stable_karl", got.Username)
}
