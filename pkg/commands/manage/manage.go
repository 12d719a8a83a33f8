package manage

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/output"
	"github.com/arthur-debert/modsync/pkg/paths"
)

// ManageOptions defines the options for the Manage command.
type ManageOptions struct {
	// Name of the new loadout.
	Name string
	// Game identifies the installation; defaults to Name.
	Game string
	// Locations maps location ids (Game, Saves, ...) to directories.
	Locations map[string]string
}

// ManageResult describes the new loadout.
type ManageResult struct {
	Loadout   app.LoadoutSummary `json:"loadout" yaml:"loadout"`
	GameFiles int                `json:"game_files" yaml:"game_files"`
}

// Manage starts tracking an installation.
func Manage(ctx context.Context, env *app.Env, opts ManageOptions) (*ManageResult, error) {
	log := env.Log.With().Str("command", "Manage").Logger()
	log.Debug().Str("name", opts.Name).Msg("Executing command")

	inst, err := installation(env.FS, opts)
	if err != nil {
		return nil, err
	}
	snap, err := env.Sync.Manage(ctx, opts.Name, inst)
	if err != nil {
		return nil, err
	}

	result := &ManageResult{Loadout: app.Summarize(snap), GameFiles: snap.Loadout.FileCount()}
	log.Info().Str("loadout", result.Loadout.ID).Int("gameFiles", result.GameFiles).Msg("Command finished")
	return result, nil
}

func installation(fs afero.Fs, opts ManageOptions) (loadout.Installation, error) {
	inst := loadout.Installation{
		Game:      strings.TrimSpace(opts.Game),
		Locations: make(map[gamepath.LocationID]string, len(opts.Locations)),
	}
	if inst.Game == "" {
		inst.Game = strings.TrimSpace(opts.Name)
	}
	for loc, dir := range opts.Locations {
		if strings.TrimSpace(loc) == "" {
			return inst, errors.New(errors.ErrInvalidInput, "location id must not be empty")
		}
		abs, err := filepath.Abs(paths.ExpandHome(dir))
		if err != nil {
			return inst, errors.Wrapf(err, errors.ErrPathInvalid, "location %s", loc)
		}
		if ok, _ := afero.DirExists(fs, abs); !ok {
			return inst, errors.Newf(errors.ErrNotFound, "location %s: directory %s does not exist", loc, abs).
				WithDetail("location", loc)
		}
		inst.Locations[gamepath.LocationID(loc)] = abs
	}
	return inst, nil
}

// Write implements output.View.
func (r *ManageResult) Write(p *output.Printer) error {
	p.Header("Managing " + r.Loadout.Name)
	p.Line("%s %s", p.Style("Muted", "id:  "), r.Loadout.ID)
	p.Line("%s %s", p.Style("Muted", "game:"), r.Loadout.Game)
	p.Blank()

	locs := make([]string, 0, len(r.Loadout.Locations))
	for loc := range r.Loadout.Locations {
		locs = append(locs, loc)
	}
	slices.Sort(locs)
	rows := make([][]string, 0, len(locs))
	for _, loc := range locs {
		rows = append(rows, []string{loc, p.Style("Path", r.Loadout.Locations[loc])})
	}
	p.Table([]string{"Location", "Directory"}, rows)
	p.Line("%s", p.Style("Success", output.Count(r.GameFiles, "game file")+" recorded at revision 1"))
	return nil
}
