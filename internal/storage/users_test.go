package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLUserStore {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive for the
	// duration of the test.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewSQLUserStore(db, "sqlite", time.Second)
	require.NoError(t, err)
	return store
}

func TestSQLLookupNotFound(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.Lookup(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLCreateAndLookup(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "alice", "digest"))

	user, err := store.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.ID)
	assert.Equal(t, "digest", user.PasswordHash)
}

func TestSQLCreateDuplicate(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "alice", "digest"))
	err := store.Create(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrDuplicateID)

	// The losing insert must not have replaced the original row.
	user, err := store.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "digest", user.PasswordHash)
}

func TestSQLConcurrentLookups(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "alice", "digest"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := store.Lookup(ctx, "alice")
			assert.NoError(t, err)
			assert.Equal(t, "alice", user.ID)
		}()
	}
	wg.Wait()
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()

	_, err := store.Lookup(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Create(ctx, "alice", "digest"))
	user, err := store.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "digest", user.PasswordHash)

	assert.ErrorIs(t, store.Create(ctx, "alice", "other"), ErrDuplicateID)
}
