// pkg/paths/paths_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test directory resolution and environment overrides

package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/paths"
)

func TestEnvironmentOverrides(t *testing.T) {
	base := t.TempDir()
	t.Setenv(paths.EnvDataDir, filepath.Join(base, "data"))
	t.Setenv(paths.EnvConfigDir, filepath.Join(base, "config"))
	t.Setenv(paths.EnvStateDir, filepath.Join(base, "state"))

	p, err := paths.New()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "data"), p.DataDir())
	assert.Equal(t, filepath.Join(base, "data", "modsync.db"), p.StorePath())
	assert.Equal(t, filepath.Join(base, "data", "archive"), p.ArchiveDir())
	assert.Equal(t, filepath.Join(base, "config", "config.toml"), p.ConfigFilePath())
	assert.Equal(t, filepath.Join(base, "config", "rules.toml"), p.RulesFilePath())
	assert.Equal(t, filepath.Join(base, "state", "modsync.log"), p.LogFilePath())

	require.NoError(t, p.EnsureDataDirs())
	info, err := os.Stat(p.ArchiveDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestXDGDefaults(t *testing.T) {
	t.Setenv(paths.EnvDataDir, "")
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv(paths.EnvStateDir, "")

	p, err := paths.New()
	require.NoError(t, err)
	assert.Equal(t, "modsync", filepath.Base(p.DataDir()))
	assert.Equal(t, "modsync", filepath.Base(p.ConfigDir()))
	assert.Equal(t, "modsync", filepath.Base(p.StateDir()))
	assert.True(t, filepath.IsAbs(p.DataDir()))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/games", filepath.Join(home, "games")},
		{"~other/games", "~other/games"},
		{"/abs/path", "/abs/path"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, paths.ExpandHome(tt.in), tt.in)
	}
}
