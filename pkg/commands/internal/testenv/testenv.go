// Package testenv builds isolated command environments for tests: an
// in-memory filesystem holding /game and /saves, an in-memory store and
// data, config and state directories that never touch the real home.
package testenv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/config"
	"github.com/arthur-debert/modsync/pkg/datastore"
	"github.com/arthur-debert/modsync/pkg/paths"
)

// Directories of the test installation
const (
	GameDir  = "/game"
	SavesDir = "/saves"
)

// New opens an environment. edits adjust the configuration first.
func New(t testing.TB, edits ...func(*config.Config)) *app.Env {
	t.Helper()
	t.Setenv(config.EnvConfigFile, "")
	t.Setenv(paths.EnvDataDir, "/data")
	t.Setenv(paths.EnvConfigDir, "/config")
	t.Setenv(paths.EnvStateDir, "/state")

	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)
	cfg.Store.Driver = config.DriverMemory
	cfg.Apply.CheckFreeSpace = false
	cfg.Paths.Case = "sensitive"
	for _, edit := range edits {
		edit(cfg)
	}

	p, err := paths.New()
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(GameDir, 0755))
	require.NoError(t, fs.MkdirAll(SavesDir, 0755))

	env, err := app.Open(app.Options{Config: cfg, Paths: p, FS: fs})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	return env
}

// Locations maps the test installation's locations to their directories.
func Locations() map[string]string {
	return map[string]string{"Game": GameDir, "Saves": SavesDir}
}

// WriteFile creates path with content, making parents.
func WriteFile(t testing.TB, env *app.Env, path, content string) {
	t.Helper()
	require.NoError(t, env.FS.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(env.FS, path, []byte(content), 0644))
}

// ReadFile returns the content of path.
func ReadFile(t testing.TB, env *app.Env, path string) string {
	t.Helper()
	data, err := afero.ReadFile(env.FS, path)
	require.NoError(t, err)
	return string(data)
}

// Exists reports whether path exists.
func Exists(t testing.TB, env *app.Env, path string) bool {
	t.Helper()
	ok, err := afero.Exists(env.FS, path)
	require.NoError(t, err)
	return ok
}

// Manage starts tracking the test installation under name.
func Manage(t testing.TB, env *app.Env, name string) *datastore.Snapshot {
	t.Helper()
	snap, err := env.Sync.Manage(context.Background(), name, installation())
	require.NoError(t, err)
	return snap
}

// ModDir writes files (relative path to content) below dir.
func ModDir(t testing.TB, env *app.Env, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		WriteFile(t, env, filepath.Join(dir, filepath.FromSlash(rel)), content)
	}
}
