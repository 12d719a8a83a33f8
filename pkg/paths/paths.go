package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/modsync/pkg/errors"
)

// Environment variable names
const (
	EnvDataDir   = "MODSYNC_DATA_DIR"
	EnvConfigDir = "MODSYNC_CONFIG_DIR"
	EnvStateDir  = "MODSYNC_STATE_DIR"
	EnvHome      = "HOME"
)

// Fixed layout below the XDG directories. These are not configurable; the
// store and archive must be found again by later runs.
const (
	AppDirName     = "modsync"
	StoreFileName  = "modsync.db"
	ArchiveDirName = "archive"
	ConfigFileName = "config.toml"
	RulesFileName  = "rules.toml"
	LogFileName    = "modsync.log"
)

// Paths resolves modsync's directories once.
type Paths struct {
	dataDir   string
	configDir string
	stateDir  string
}

// New reads the environment overrides, falling back to XDG locations.
func New() (*Paths, error) {
	p := &Paths{
		dataDir:   dirFromEnv(EnvDataDir, xdg.DataHome),
		configDir: dirFromEnv(EnvConfigDir, xdg.ConfigHome),
		stateDir:  dirFromEnv(EnvStateDir, xdg.StateHome),
	}
	for _, dir := range []*string{&p.dataDir, &p.configDir, &p.stateDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrPathInvalid, "failed to get absolute path for %s", *dir)
		}
		*dir = abs
	}
	return p, nil
}

func dirFromEnv(name, xdgBase string) string {
	if dir := os.Getenv(name); dir != "" {
		return expandHome(dir)
	}
	return filepath.Join(xdgBase, AppDirName)
}

// DataDir holds the snapshot store and archive blobs.
func (p *Paths) DataDir() string { return p.dataDir }

// ConfigDir holds configuration and rule files.
func (p *Paths) ConfigDir() string { return p.configDir }

// StateDir holds the log file.
func (p *Paths) StateDir() string { return p.stateDir }

// StorePath is the SQLite database of loadout snapshots.
func (p *Paths) StorePath() string { return filepath.Join(p.dataDir, StoreFileName) }

// ArchiveDir is the root of the content-addressed blob store.
func (p *Paths) ArchiveDir() string { return filepath.Join(p.dataDir, ArchiveDirName) }

// ConfigFilePath is the user configuration file.
func (p *Paths) ConfigFilePath() string { return filepath.Join(p.configDir, ConfigFileName) }

// RulesFilePath is the default sort rules file.
func (p *Paths) RulesFilePath() string { return filepath.Join(p.configDir, RulesFileName) }

// LogFilePath is where the log file is written.
func (p *Paths) LogFilePath() string { return filepath.Join(p.stateDir, LogFileName) }

// EnsureDataDirs creates the data and archive directories.
func (p *Paths) EnsureDataDirs() error {
	for _, dir := range []string{p.dataDir, p.ArchiveDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
		}
	}
	return nil
}

// ExpandHome expands a leading ~ to the home directory.
func ExpandHome(path string) string { return expandHome(path) }

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}
	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	// ~user is left alone
	return path
}
