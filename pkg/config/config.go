package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "MODSYNC_"

// EnvConfigFile names an explicit config file.
const EnvConfigFile = "MODSYNC_CONFIG"

// Config is the decoded configuration.
type Config struct {
	Paths    Paths    `koanf:"paths"`
	Indexing Indexing `koanf:"indexing"`
	Store    Store    `koanf:"store"`
	Apply    Apply    `koanf:"apply"`
	Ingest   Ingest   `koanf:"ingest"`
	Rules    Rules    `koanf:"rules"`
}

type Paths struct {
	Case string `koanf:"case"`
}

type Indexing struct {
	Workers    int      `koanf:"workers"`
	TrustMtime bool     `koanf:"trust_mtime"`
	Ignore     []string `koanf:"ignore"`
}

type Store struct {
	Driver         string        `koanf:"driver"`
	CASMaxAttempts int           `koanf:"cas_max_attempts"`
	CASBaseBackoff time.Duration `koanf:"cas_base_backoff"`
	CASMaxBackoff  time.Duration `koanf:"cas_max_backoff"`
}

type Apply struct {
	CleanEmptyDirs   bool   `koanf:"clean_empty_dirs"`
	CheckFreeSpace   bool   `koanf:"check_free_space"`
	FreeSpaceReserve uint64 `koanf:"free_space_reserve"`
}

type Ingest struct {
	PruneEmptyMods  bool              `koanf:"prune_empty_mods"`
	Backup          bool              `koanf:"backup"`
	DefaultCategory string            `koanf:"default_category"`
	Categories      map[string]string `koanf:"categories"`
}

type Rules struct {
	File string `koanf:"file"`
}

// Store drivers
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Options selects the user file. An explicit File must exist; the default
// location may be absent.
type Options struct {
	File        string
	DefaultFile string
}

// Load layers defaults, the user file and the environment.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	path, explicit := opts.File, opts.File != ""
	if !explicit {
		if p := os.Getenv(EnvConfigFile); p != "" {
			path, explicit = p, true
		} else {
			path = opts.DefaultFile
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
			}
		} else if explicit {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps MODSYNC_INDEXING_TRUST_MTIME to indexing.trust_mtime: the
// first underscore ends the section and "__" separates deeper levels.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	if s == "CONFIG" {
		// the file selector, not a key
		return ""
	}
	parts := strings.Split(s, "__")
	parts[0] = strings.ToLower(strings.Replace(parts[0], "_", ".", 1))
	for i := 1; i < len(parts); i++ {
		// location ids keep their case
		if !strings.HasPrefix(parts[0], "ingest.categories") {
			parts[i] = strings.ToLower(parts[i])
		}
	}
	return strings.Join(parts, ".")
}

// Validate rejects values no component can use.
func (c *Config) Validate() error {
	if _, err := c.Case(); err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "paths.case")
	}
	if c.Indexing.Workers < 0 {
		return errors.Newf(errors.ErrConfigValid, "indexing.workers must not be negative, got %d", c.Indexing.Workers)
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverMemory:
	default:
		return errors.Newf(errors.ErrConfigValid, "store.driver must be %q or %q, got %q",
			DriverSQLite, DriverMemory, c.Store.Driver)
	}
	if c.Store.CASMaxAttempts < 1 {
		return errors.Newf(errors.ErrConfigValid, "store.cas_max_attempts must be at least 1")
	}
	if strings.TrimSpace(c.Ingest.DefaultCategory) == "" {
		return errors.New(errors.ErrConfigValid, "ingest.default_category must not be empty")
	}
	return nil
}

// Case parses paths.case.
func (c *Config) Case() (gamepath.Case, error) {
	return gamepath.ParseCase(c.Paths.Case)
}

// Categories returns ingest.categories keyed by location.
func (c *Config) Categories() map[gamepath.LocationID]string {
	out := make(map[gamepath.LocationID]string, len(c.Ingest.Categories))
	for loc, name := range c.Ingest.Categories {
		out[gamepath.LocationID(loc)] = name
	}
	return out
}
