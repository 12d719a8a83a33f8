// Package edit holds the commands that change a loadout without touching
// disk: renaming it and enabling, disabling or removing its mods. The new
// revision takes effect on the next apply.
package edit

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/output"
)

// EditResult describes the published revision.
type EditResult struct {
	Loadout  string `json:"loadout" yaml:"loadout"`
	Revision uint64 `json:"revision" yaml:"revision"`
	Applied  uint64 `json:"applied" yaml:"applied"`
	Message  string `json:"message" yaml:"message"`
}

// RenameOptions defines the options for the Rename command.
type RenameOptions struct {
	Loadout string
	Name    string
}

// Rename gives a loadout a new name.
func Rename(ctx context.Context, env *app.Env, opts RenameOptions) (*EditResult, error) {
	all, err := env.Data.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if strings.EqualFold(s.Loadout.Name, opts.Name) && s.Loadout.Name != opts.Loadout && string(s.Loadout.ID) != opts.Loadout {
			return nil, errors.Newf(errors.ErrAlreadyExists, "a loadout named %q already exists", opts.Name)
		}
	}
	var old string
	return update(ctx, env, "Rename", opts.Loadout, func(l *loadout.Loadout) (*loadout.Loadout, string, error) {
		old = l.Name
		next, err := l.Renamed(opts.Name)
		return next, fmt.Sprintf("Renamed %s to %s", old, opts.Name), err
	})
}

// ToggleOptions defines the options for the Toggle command. A nil Enabled
// flips the mod's current state.
type ToggleOptions struct {
	Loadout string
	Mod     string
	Enabled *bool
}

// Toggle enables or disables a mod.
func Toggle(ctx context.Context, env *app.Env, opts ToggleOptions) (*EditResult, error) {
	return update(ctx, env, "Toggle", opts.Loadout, func(l *loadout.Loadout) (*loadout.Loadout, string, error) {
		m, err := l.FindMod(opts.Mod)
		if err != nil {
			return nil, "", err
		}
		enabled := !m.Enabled
		if opts.Enabled != nil {
			enabled = *opts.Enabled
		}
		next, err := l.WithModEnabled(m.ID, enabled)
		state := "Disabled"
		if enabled {
			state = "Enabled"
		}
		return next, fmt.Sprintf("%s %s", state, m.Name), err
	})
}

// RemoveModOptions defines the options for the RemoveMod command.
type RemoveModOptions struct {
	Loadout string
	Mod     string
}

// RemoveMod drops a mod from the loadout.
func RemoveMod(ctx context.Context, env *app.Env, opts RemoveModOptions) (*EditResult, error) {
	return update(ctx, env, "RemoveMod", opts.Loadout, func(l *loadout.Loadout) (*loadout.Loadout, string, error) {
		m, err := l.FindMod(opts.Mod)
		if err != nil {
			return nil, "", err
		}
		next, err := l.WithoutMod(m.ID)
		return next, "Removed " + m.Name, err
	})
}

type editFunc func(*loadout.Loadout) (*loadout.Loadout, string, error)

func update(ctx context.Context, env *app.Env, command, ref string, fn editFunc) (*EditResult, error) {
	log := env.Log.With().Str("command", command).Logger()
	log.Debug().Str("loadout", ref).Msg("Executing command")

	snap, err := env.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	var msg string
	published, err := env.Sync.Update(ctx, snap.Loadout.ID, func(cur *loadout.Loadout) (*loadout.Loadout, error) {
		next, m, err := fn(cur)
		msg = m
		return next, err
	})
	if err != nil {
		return nil, err
	}

	result := &EditResult{
		Loadout:  published.Loadout.Name,
		Revision: published.Loadout.Revision,
		Applied:  published.Applied.Revision,
		Message:  msg,
	}
	log.Info().Uint64("revision", result.Revision).Msg("Command finished")
	return result, nil
}

// Write implements output.View.
func (r *EditResult) Write(p *output.Printer) error {
	p.Line("%s", p.Style("Success", r.Message))
	p.Line("%s is at revision %d, applied revision %d. Run 'modsync apply' to update the installation.",
		p.Style("Loadout", r.Loadout), r.Revision, r.Applied)
	return nil
}
