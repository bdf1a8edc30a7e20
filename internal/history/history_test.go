package history

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// tick returns a clock advancing one second per call.
func tick() func() time.Time {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	}
}

func TestOpen_WALMode(t *testing.T) {
	s := openTestStore(t)
	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Save(context.Background(), "notes.txt", "one")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	snap, err := s.Latest(context.Background(), "notes.txt")
	require.NoError(t, err)
	require.Equal(t, "one", snap.Content)
}

func TestStore_SaveAndLatest(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, WithClock(tick()))

	first, err := s.Save(ctx, "notes.txt", "a\nb")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.Equal(t, 2, first.Lines)
	require.Equal(t, Stats{Added: 2}, first.Stats)

	second, err := s.Save(ctx, "notes.txt", "a\nc\nd")
	require.NoError(t, err)
	require.Equal(t, Stats{Added: 2, Removed: 1}, second.Stats)
	require.NotEqual(t, first.ID, second.ID)

	latest, err := s.Latest(ctx, "notes.txt")
	require.NoError(t, err)
	require.Equal(t, second.ID, latest.ID)
	require.Equal(t, "a\nc\nd", latest.Content)
	require.Equal(t, 3, latest.Lines)
	require.True(t, second.CreatedAt.Equal(latest.CreatedAt))

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "a\nb", got.Content)
}

func TestStore_StatsPerName(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, WithClock(tick()))

	_, err := s.Save(ctx, "a.txt", "one\ntwo")
	require.NoError(t, err)
	snap, err := s.Save(ctx, "b.txt", "one")
	require.NoError(t, err)
	require.Equal(t, Stats{Added: 1}, snap.Stats, "b.txt has no earlier snapshot")
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Latest(ctx, "missing.txt")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, WithClock(tick()))

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, list)

	for _, text := range []string{"v1", "v2", "v3"} {
		_, err := s.Save(ctx, "notes.txt", text)
		require.NoError(t, err)
	}

	list, err = s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "v3", list[0].Content)
	require.Equal(t, "v2", list[1].Content)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestStore_ListCacheInvalidatedOnSave(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, WithClock(tick()), WithCacheTTL(time.Hour))

	_, err := s.Save(ctx, "notes.txt", "v1")
	require.NoError(t, err)
	list, err := s.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// A row written behind the store's back is hidden by the cache.
	_, err = s.db.Exec(`INSERT INTO snapshots (` + snapshotColumns + `) VALUES ('x', 'other', 'raw', 1, 0, 0, 0)`)
	require.NoError(t, err)
	list, err = s.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = s.Save(ctx, "notes.txt", "v2")
	require.NoError(t, err)
	list, err = s.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 3)
}

func TestStore_ListWithoutCache(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, WithCacheTTL(0))

	_, err := s.List(ctx, 5)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO snapshots (` + snapshotColumns + `) VALUES ('x', 'other', 'raw', 1, 0, 0, 0)`)
	require.NoError(t, err)

	list, err := s.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
