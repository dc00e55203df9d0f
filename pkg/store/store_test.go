package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/goliatone/go-prefs/pkg/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the shared Load/Save contract against a backend.
func exerciseStore(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	data, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "fresh store should report absent document")
	assert.Nil(t, data)

	require.NoError(t, s.Save(ctx, []byte(`{"volume":0.8}`)))
	data, ok, err = s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"volume":0.8}`, string(data))

	require.NoError(t, s.Save(ctx, []byte(`{"volume":0.2}`)))
	data, ok, err = s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"volume":0.2}`, string(data), "save must replace the whole document")

	assert.NotEmpty(t, store.Describe(s))
}

func TestMemoryStore(t *testing.T) {
	s := store.NewMemoryStore()
	exerciseStore(t, s)
	assert.Equal(t, 2, s.Saves())

	boom := errors.New("disk full")
	s.FailNext(boom)
	err := s.Save(context.Background(), []byte("lost"))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, `{"volume":0.2}`, string(s.Bytes()), "failed save keeps previous document")
	assert.Equal(t, 3, s.Saves())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := store.NewMemoryStoreWith([]byte("abc"))
	data, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	data[0] = 'z'
	assert.Equal(t, "abc", string(s.Bytes()))
	assert.Equal(t, 0, s.Saves())
}

func TestFileStoreMemFs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := store.NewFileStore("/config/game/prefs.json", store.WithFs(fsys))
	exerciseStore(t, s)

	entries, err := afero.ReadDir(fsys, "/config/game")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, "prefs.json", entries[0].Name())
}

func TestFileStoreOsFs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")
	s := store.NewFileStore(path, store.WithFileMode(0o600))
	exerciseStore(t, s)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreReadOnlyFsFailsSave(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/prefs.json", []byte(`{}`), 0o644))
	s := store.NewFileStore("/prefs.json", store.WithFs(afero.NewReadOnlyFs(base)))

	data, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "{}", string(data))

	require.Error(t, s.Save(context.Background(), []byte(`{"a":1}`)))
}

func TestBoltStore(t *testing.T) {
	s, err := store.OpenBoltStore(filepath.Join(t.TempDir(), "prefs.db"), "", "settings")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.sqlite")
	s, err := store.OpenSQLiteStore(ctx, path, "", "settings")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)

	_, err = store.OpenSQLiteStore(ctx, path, "bad-name;", "settings")
	require.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("PREFS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PREFS_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	key := "go-prefs-test-" + t.Name()
	s, err := store.DialRedisStore(ctx, addr, "", 0, key)
	require.NoError(t, err)
	t.Cleanup(func() {
		client := redis.NewClient(&redis.Options{Addr: addr})
		_ = client.Del(ctx, key).Err()
		_ = client.Close()
		_ = s.Close()
	})
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cases := []struct {
		name    string
		cfg     store.Config
		wantErr bool
	}{
		{name: "default file", cfg: store.Config{Path: filepath.Join(dir, "a.json")}},
		{name: "memory", cfg: store.Config{Driver: "memory"}},
		{name: "bolt", cfg: store.Config{Driver: "bolt", Path: filepath.Join(dir, "b.db")}},
		{name: "sqlite", cfg: store.Config{Driver: "SQLite", Path: filepath.Join(dir, "c.sqlite"), Key: "game"}},
		{name: "file without path", cfg: store.Config{Driver: "file"}, wantErr: true},
		{name: "redis without addr", cfg: store.Config{Driver: "redis"}, wantErr: true},
		{name: "unknown", cfg: store.Config{Driver: "etcd"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := store.Open(ctx, tc.cfg)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close(s) })
			exerciseStore(t, s)
		})
	}
}
