// Package app wires the collaborators every command needs from the loaded
// configuration.
package app

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/modsync/pkg/archive"
	"github.com/arthur-debert/modsync/pkg/config"
	"github.com/arthur-debert/modsync/pkg/datastore"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/indexer"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/paths"
	"github.com/arthur-debert/modsync/pkg/preflight"
	"github.com/arthur-debert/modsync/pkg/rules"
	"github.com/arthur-debert/modsync/pkg/store"
	"github.com/arthur-debert/modsync/pkg/synchronizer"
)

// Options selects the environment's collaborators. Config and Paths are
// required; the rest default to the real system.
type Options struct {
	Config     *config.Config
	Paths      *paths.Paths
	FS         afero.Fs
	Generators loadout.Generators
	Space      synchronizer.SpaceChecker
}

// Env is an opened modsync environment.
type Env struct {
	Config  *config.Config
	Paths   *paths.Paths
	FS      afero.Fs
	Store   store.Store
	Data    *datastore.DataStore
	Archive *archive.FileStore
	Sync    *synchronizer.Synchronizer
	Log     zerolog.Logger
}

// Open builds an Env. The caller must Close it.
func Open(opts Options) (*Env, error) {
	if opts.Config == nil || opts.Paths == nil {
		return nil, errors.New(errors.ErrInvalidInput, "environment needs a config and paths")
	}
	cfg := opts.Config
	log := logging.GetLogger("commands")

	cs, err := cfg.Case()
	if err != nil {
		return nil, err
	}
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	st, err := openStore(cfg, opts.Paths)
	if err != nil {
		return nil, err
	}
	env := &Env{Config: cfg, Paths: opts.Paths, FS: fs, Store: st, Log: log}

	env.Data = datastore.New(st, datastore.Options{
		MaxAttempts: cfg.Store.CASMaxAttempts,
		BaseBackoff: cfg.Store.CASBaseBackoff,
		MaxBackoff:  cfg.Store.CASMaxBackoff,
		Case:        cs,
	})
	env.Archive = archive.NewFileStore(fs, opts.Paths.ArchiveDir())

	provider, err := loadRules(fs, cfg, opts.Paths)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	space := opts.Space
	if space == nil && cfg.Apply.CheckFreeSpace {
		space = preflight.New(cfg.Apply.FreeSpaceReserve)
	}

	env.Sync, err = synchronizer.New(synchronizer.Deps{
		FS:      fs,
		Archive: env.Archive,
		Indexer: indexer.New(fs, indexer.Options{
			Workers:    cfg.Indexing.Workers,
			TrustMtime: cfg.Indexing.TrustMtime,
			Ignore:     cfg.Indexing.Ignore,
			Case:       cs,
		}),
		DataStore:  env.Data,
		Rules:      provider,
		Generators: opts.Generators,
		Space:      space,
	}, synchronizer.Options{
		Case:                  cs,
		Categories:            cfg.Categories(),
		DefaultCategory:       cfg.Ingest.DefaultCategory,
		PruneEmptyMods:        cfg.Ingest.PruneEmptyMods,
		CleanEmptyDirectories: cfg.Apply.CleanEmptyDirs,
		CheckFreeSpace:        cfg.Apply.CheckFreeSpace,
		BackupFiles:           cfg.Ingest.Backup,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	log.Debug().
		Str("driver", cfg.Store.Driver).
		Str("case", cs.String()).
		Str("archive", opts.Paths.ArchiveDir()).
		Msg("Opened environment")
	return env, nil
}

func openStore(cfg *config.Config, p *paths.Paths) (store.Store, error) {
	if cfg.Store.Driver == config.DriverMemory {
		return store.NewMemory(), nil
	}
	if err := p.EnsureDataDirs(); err != nil {
		return nil, err
	}
	return store.OpenSQLite(p.StorePath())
}

// loadRules chains the per-mod rules with the rules file. An explicitly
// configured file must exist; the default one may be absent.
func loadRules(fs afero.Fs, cfg *config.Config, p *paths.Paths) (rules.Provider, error) {
	path := cfg.Rules.File
	if path != "" {
		path = paths.ExpandHome(path)
	} else {
		path = p.RulesFilePath()
		if ok, _ := afero.Exists(fs, path); !ok {
			return rules.Static{}, nil
		}
	}
	fp, err := rules.LoadFile(fs, filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return rules.Chain{rules.Static{}, fp}, nil
}

// Close releases the store.
func (e *Env) Close() error {
	return e.Store.Close()
}

// Find resolves a loadout by id or name.
func (e *Env) Find(ctx context.Context, ref string) (*datastore.Snapshot, error) {
	if ref == "" {
		return nil, errors.New(errors.ErrInvalidInput, "no loadout given")
	}
	return e.Data.Find(ctx, ref)
}
