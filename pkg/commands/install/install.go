package install

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/output"
	"github.com/arthur-debert/modsync/pkg/paths"
)

// DefaultCategory is given to installed mods without one.
const DefaultCategory = "mods"

// InstallOptions defines the options for the InstallMod command.
type InstallOptions struct {
	Loadout string
	// Dir holds the mod's files laid out as they go below Location.
	Dir      string
	Name     string
	Category string
	Location gamepath.LocationID
	// Replace swaps the files of an existing mod with the same name.
	Replace bool
}

// InstallResult describes the installed mod.
type InstallResult struct {
	Loadout  string `json:"loadout" yaml:"loadout"`
	Revision uint64 `json:"revision" yaml:"revision"`
	Mod      string `json:"mod" yaml:"mod"`
	ModID    string `json:"mod_id" yaml:"mod_id"`
	Files    int    `json:"files" yaml:"files"`
	Bytes    int64  `json:"bytes" yaml:"bytes"`
	Replaced bool   `json:"replaced" yaml:"replaced"`
}

// InstallMod archives the files of a directory and adds them to the
// loadout as a mod. The installation changes on the next apply.
func InstallMod(ctx context.Context, env *app.Env, opts InstallOptions) (*InstallResult, error) {
	log := env.Log.With().Str("command", "InstallMod").Logger()
	log.Debug().Str("loadout", opts.Loadout).Str("dir", opts.Dir).Msg("Executing command")

	snap, err := env.Find(ctx, opts.Loadout)
	if err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(paths.ExpandHome(opts.Dir))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPathInvalid, "mod directory %s", opts.Dir)
	}
	if ok, _ := afero.DirExists(env.FS, dir); !ok {
		return nil, errors.Newf(errors.ErrNotFound, "mod directory %s does not exist", dir)
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = filepath.Base(dir)
	}
	category := opts.Category
	if category == "" {
		category = DefaultCategory
	}
	loc := opts.Location
	if loc == "" {
		loc = gamepath.Game
	}
	if _, ok := snap.Loadout.Installation.Root(loc); !ok {
		return nil, errors.Newf(errors.ErrInvalidInput, "loadout %s has no location %s", snap.Loadout.Name, loc)
	}

	mod, replaced := loadout.NewMod(name, category), false
	if existing, err := snap.Loadout.FindMod(name); err == nil {
		if !opts.Replace {
			return nil, errors.Newf(errors.ErrAlreadyExists, "loadout %s already has a mod named %s", snap.Loadout.Name, name).
				WithDetail("mod", string(existing.ID))
		}
		mod = existing.Clone()
		mod.Files = make(map[loadout.FileID]loadout.ModFile)
		replaced = true
	}

	result := &InstallResult{Mod: name, ModID: string(mod.ID), Replaced: replaced}
	err = afero.Walk(env.FS, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCancelled, "install cancelled")
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		to, err := gamepath.New(loc, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := env.FS.Open(path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileRead, "open %s", path)
		}
		h, err := env.Archive.Put(ctx, f)
		_ = f.Close()
		if err != nil {
			return err
		}
		mod.Add(loadout.FromArchive{ID: loadout.NewFileID(), Path: to, Hash: h, Size: info.Size()})
		result.Files++
		result.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Files == 0 {
		return nil, errors.Newf(errors.ErrInvalidInput, "mod directory %s has no files", dir)
	}

	published, err := env.Sync.Update(ctx, snap.Loadout.ID, func(cur *loadout.Loadout) (*loadout.Loadout, error) {
		return cur.WithMod(mod), nil
	})
	if err != nil {
		return nil, err
	}
	result.Loadout = published.Loadout.Name
	result.Revision = published.Loadout.Revision

	log.Info().Str("mod", name).Int("files", result.Files).Msg("Command finished")
	return result, nil
}

// Write implements output.View.
func (r *InstallResult) Write(p *output.Printer) error {
	verb := "Installed"
	if r.Replaced {
		verb = "Replaced"
	}
	p.Line("%s %s into %s: %s, %s", p.Style("Success", verb), p.Style("Mod", r.Mod), p.Style("Loadout", r.Loadout),
		output.Count(r.Files, "file"), output.Bytes(r.Bytes))
	p.Line("Revision %d is pending. Run 'modsync apply' to update the installation.", r.Revision)
	return nil
}
