// pkg/store/store_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: SQLite (temp dir)
// PURPOSE: Run the same contract checks against the memory and SQLite stores

package store_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/store"
)

func implementations(t *testing.T) map[string]store.Store {
	t.Helper()
	sqlite, err := store.OpenSQLite(filepath.Join(t.TempDir(), "modsync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]store.Store{
		"memory": store.NewMemory(),
		"sqlite": sqlite,
	}
}

func TestGetPut(t *testing.T) {
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "snapshots", "missing")
			assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

			require.NoError(t, s.Put(ctx, "snapshots", "a", []byte("one")))
			require.NoError(t, s.Put(ctx, "snapshots", "a", []byte("two")))
			require.NoError(t, s.Put(ctx, "other", "a", []byte("elsewhere")))

			v, err := s.Get(ctx, "snapshots", "a")
			require.NoError(t, err)
			assert.Equal(t, []byte("two"), v)
		})
	}
}

func TestScan(t *testing.T) {
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, id := range []string{"L1/002", "L1/001", "L2/001", "L1", "L10/001"} {
				require.NoError(t, s.Put(ctx, "snapshots", id, []byte(id)))
			}

			recs, err := s.Scan(ctx, "snapshots", "L1/")
			require.NoError(t, err)
			var ids []string
			for _, r := range recs {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, []string{"L1/001", "L1/002"}, ids)

			all, err := s.Scan(ctx, "snapshots", "")
			require.NoError(t, err)
			assert.Len(t, all, 5)

			none, err := s.Scan(ctx, "nothing", "")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestCompareAndSwapRoot(t *testing.T) {
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := s.GetRoot(ctx, "loadout/L1")
			require.NoError(t, err)
			assert.False(t, ok)

			swapped, err := s.CompareAndSwapRoot(ctx, "loadout/L1", "", "r1")
			require.NoError(t, err)
			assert.True(t, swapped)

			swapped, err = s.CompareAndSwapRoot(ctx, "loadout/L1", "", "r-other")
			require.NoError(t, err)
			assert.False(t, swapped, "creating an existing root fails")

			swapped, err = s.CompareAndSwapRoot(ctx, "loadout/L1", "stale", "r2")
			require.NoError(t, err)
			assert.False(t, swapped)

			swapped, err = s.CompareAndSwapRoot(ctx, "loadout/L1", "r1", "r2")
			require.NoError(t, err)
			assert.True(t, swapped)

			id, ok, err := s.GetRoot(ctx, "loadout/L1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "r2", id)
		})
	}
}

func TestDelete(t *testing.T) {
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, "snapshots", "a", []byte("one")))
			require.NoError(t, s.Put(ctx, "other", "a", []byte("kept")))

			require.NoError(t, s.Delete(ctx, "snapshots", "a"))
			_, err := s.Get(ctx, "snapshots", "a")
			assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
			assert.NoError(t, s.Delete(ctx, "snapshots", "a"), "deleting twice is fine")

			v, err := s.Get(ctx, "other", "a")
			require.NoError(t, err)
			assert.Equal(t, []byte("kept"), v)

			require.NoError(t, mustSwap(ctx, s, "loadout/L1", "", "r1"))
			deleted, err := s.DeleteRoot(ctx, "loadout/L1", "stale")
			require.NoError(t, err)
			assert.False(t, deleted)

			deleted, err = s.DeleteRoot(ctx, "loadout/L1", "r1")
			require.NoError(t, err)
			assert.True(t, deleted)
			_, ok, err := s.GetRoot(ctx, "loadout/L1")
			require.NoError(t, err)
			assert.False(t, ok)

			deleted, err = s.DeleteRoot(ctx, "loadout/L1", "r1")
			require.NoError(t, err)
			assert.False(t, deleted, "a missing root is not deleted")
			assert.NoError(t, mustSwap(ctx, s, "loadout/L1", "", "r2"), "the root can be created again")
		})
	}
}

func TestConcurrentSwapHasOneWinner(t *testing.T) {
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, mustSwap(ctx, s, "root", "", "base"))

			const racers = 8
			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				wins int
			)
			for i := 0; i < racers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					ok, err := s.CompareAndSwapRoot(ctx, "root", "base", string(rune('a'+i)))
					assert.NoError(t, err)
					if ok {
						mu.Lock()
						wins++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()
			assert.Equal(t, 1, wins)
		})
	}
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	s, err := store.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "c", "id", []byte("persisted")))
	require.NoError(t, mustSwap(ctx, s, "root", "", "id"))
	require.NoError(t, s.Close())

	s, err = store.OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	v, err := s.Get(ctx, "c", "id")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), v)
	id, ok, err := s.GetRoot(ctx, "root")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "id", id)
}

func mustSwap(ctx context.Context, s store.Store, kind, prev, next string) error {
	ok, err := s.CompareAndSwapRoot(ctx, kind, prev, next)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Newf(errors.ErrRootContention, "swap %s lost", kind)
	}
	return nil
}
