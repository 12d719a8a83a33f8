// pkg/config/config_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: temp files, environment
// PURPOSE: Test layering of defaults, user file and environment overrides

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/config"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Paths.Case)
	assert.True(t, cfg.Indexing.TrustMtime)
	assert.Contains(t, cfg.Indexing.Ignore, "*.tmp")
	assert.Equal(t, config.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 10*time.Millisecond, cfg.Store.CASBaseBackoff)
	assert.Equal(t, 500*time.Millisecond, cfg.Store.CASMaxBackoff)
	assert.True(t, cfg.Apply.CleanEmptyDirs)
	assert.Equal(t, uint64(104857600), cfg.Apply.FreeSpaceReserve)
	assert.Equal(t, "overrides", cfg.Ingest.DefaultCategory)
	assert.Equal(t, "saves", cfg.Categories()[gamepath.LocationID("Saves")])
}

func TestLoadUserFile(t *testing.T) {
	path := writeConfig(t, `
[store]
driver = "memory"
cas_max_backoff = "2s"

[ingest]
prune_empty_mods = true
`)
	cfg, err := config.Load(config.Options{File: path})
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 2*time.Second, cfg.Store.CASMaxBackoff)
	assert.True(t, cfg.Ingest.PruneEmptyMods)
	// untouched keys keep their defaults
	assert.True(t, cfg.Apply.CheckFreeSpace)
}

func TestLoadMissingFile(t *testing.T) {
	t.Run("explicit file must exist", func(t *testing.T) {
		_, err := config.Load(config.Options{File: filepath.Join(t.TempDir(), "nope.toml")})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})

	t.Run("default location may be absent", func(t *testing.T) {
		_, err := config.Load(config.Options{DefaultFile: filepath.Join(t.TempDir(), "nope.toml")})
		assert.NoError(t, err)
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MODSYNC_INDEXING_TRUST_MTIME", "false")
	t.Setenv("MODSYNC_INDEXING_IGNORE", "*.bak,*.log")
	t.Setenv("MODSYNC_STORE_CAS_MAX_ATTEMPTS", "3")
	t.Setenv("MODSYNC_INGEST_CATEGORIES__Saves", "my saves")

	path := writeConfig(t, "[indexing]\ntrust_mtime = true\n")
	cfg, err := config.Load(config.Options{File: path})
	require.NoError(t, err)

	assert.False(t, cfg.Indexing.TrustMtime)
	assert.Equal(t, []string{"*.bak", "*.log"}, cfg.Indexing.Ignore)
	assert.Equal(t, 3, cfg.Store.CASMaxAttempts)
	assert.Equal(t, "my saves", cfg.Ingest.Categories["Saves"])
}

func TestLoadConfigEnvSelectsFile(t *testing.T) {
	path := writeConfig(t, "[rules]\nfile = \"/etc/rules.toml\"\n")
	t.Setenv(config.EnvConfigFile, path)

	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)
	assert.Equal(t, "/etc/rules.toml", cfg.Rules.File)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad case", "[paths]\ncase = \"sideways\"\n"},
		{"negative workers", "[indexing]\nworkers = -1\n"},
		{"unknown driver", "[store]\ndriver = \"postgres\"\n"},
		{"no attempts", "[store]\ncas_max_attempts = 0\n"},
		{"empty category", "[ingest]\ndefault_category = \" \"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(config.Options{File: writeConfig(t, tt.content)})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid), err.Error())
		})
	}
}

func TestLoadParseError(t *testing.T) {
	_, err := config.Load(config.Options{File: writeConfig(t, "[store\n")})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestGenerateConfigContent(t *testing.T) {
	content := config.GenerateConfigContent()

	assert.Contains(t, content, "[store]")
	assert.Contains(t, content, `# driver = "sqlite"`)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "[") {
			continue
		}
		assert.True(t, strings.HasPrefix(trimmed, "#"), "line %q is not commented", line)
	}

	// the generated file loads to the defaults
	cfg, err := config.Load(config.Options{File: writeConfig(t, content)})
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLite, cfg.Store.Driver)
}
