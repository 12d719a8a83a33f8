// Package lifecycle holds the commands that end or fork a loadout's life:
// resetting its installation to the original files, deleting it, unmanaging
// the installation altogether and copying it under a new name.
package lifecycle

import (
	"context"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/commands/plan"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/output"
	"github.com/arthur-debert/modsync/pkg/synchronizer"
)

// ResetOptions defines the options for the Reset and Unmanage commands.
type ResetOptions struct {
	Loadout string
}

// ResetResult describes a reset. Removed is set when the loadout was also
// deleted.
type ResetResult struct {
	Loadout string               `json:"loadout" yaml:"loadout"`
	Outcome synchronizer.Outcome `json:"outcome" yaml:"outcome"`
	Summary synchronizer.Summary `json:"summary" yaml:"summary"`
	Drift   []app.DriftInfo      `json:"drift,omitempty" yaml:"drift,omitempty"`
	Removed bool                 `json:"removed" yaml:"removed"`
	Error   string               `json:"error,omitempty" yaml:"error,omitempty"`
}

// Reset restores the original game files of a loadout's installation. The
// loadout's mods stay, pending the next apply.
func Reset(ctx context.Context, env *app.Env, opts ResetOptions) (*ResetResult, error) {
	return reset(ctx, env, "Reset", opts, env.Sync.ResetToOriginal, false)
}

// Unmanage restores the original game files and deletes the loadout.
func Unmanage(ctx context.Context, env *app.Env, opts ResetOptions) (*ResetResult, error) {
	return reset(ctx, env, "Unmanage", opts, env.Sync.Unmanage, true)
}

type resetFunc func(context.Context, loadout.LoadoutID) (*synchronizer.ApplyResult, error)

func reset(ctx context.Context, env *app.Env, command string, opts ResetOptions, fn resetFunc, removes bool) (*ResetResult, error) {
	log := env.Log.With().Str("command", command).Logger()
	log.Debug().Str("loadout", opts.Loadout).Msg("Executing command")

	snap, err := env.Find(ctx, opts.Loadout)
	if err != nil {
		return nil, err
	}
	res, err := fn(ctx, snap.Loadout.ID)

	result := &ResetResult{
		Loadout: snap.Loadout.Name,
		Outcome: res.Outcome,
		Drift:   app.Drift(res.Drift),
		Removed: removes && err == nil,
	}
	if res.Plan != nil {
		result.Summary = res.Plan.Summary()
	}
	if err != nil {
		result.Error = err.Error()
	}
	log.Info().Str("outcome", string(result.Outcome)).Bool("removed", result.Removed).Msg("Command finished")
	return result, err
}

// Write implements output.View.
func (r *ResetResult) Write(p *output.Printer) error {
	switch r.Outcome {
	case synchronizer.OutcomeApplied:
		p.Line("%s %s to its original files", p.Style("Success", "Reset"), p.Style("Loadout", r.Loadout))
		plan.WriteSummary(p, r.Summary)
		if r.Removed {
			p.Line("%s", p.Style("Muted", "Loadout deleted; the installation is no longer managed"))
		}
	case synchronizer.OutcomeNeedsIngest:
		p.Line("%s %s", p.Style("Warning", "Not reset:"), p.Style("Loadout", r.Loadout))
		plan.WriteDrift(p, r.Drift)
	default:
		p.Line("%s %s", p.Style("Error", "Reset failed:"), p.Style("Loadout", r.Loadout))
	}
	return nil
}

// DeleteOptions defines the options for the Delete command. Force deletes a
// loadout whose mods are still on disk.
type DeleteOptions struct {
	Loadout string
	Force   bool
}

// DeleteResult names the deleted loadout.
type DeleteResult struct {
	Loadout string `json:"loadout" yaml:"loadout"`
	ID      string `json:"id" yaml:"id"`
	Forced  bool   `json:"forced" yaml:"forced"`
}

// Delete removes a loadout and its history without touching disk.
func Delete(ctx context.Context, env *app.Env, opts DeleteOptions) (*DeleteResult, error) {
	log := env.Log.With().Str("command", "Delete").Logger()
	log.Debug().Str("loadout", opts.Loadout).Bool("force", opts.Force).Msg("Executing command")

	snap, err := env.Find(ctx, opts.Loadout)
	if err != nil {
		return nil, err
	}
	if err := env.Sync.DeleteLoadout(ctx, snap.Loadout.ID, opts.Force); err != nil {
		return nil, err
	}
	result := &DeleteResult{Loadout: snap.Loadout.Name, ID: string(snap.Loadout.ID), Forced: opts.Force}
	log.Info().Str("loadout", result.ID).Msg("Command finished")
	return result, nil
}

// Write implements output.View.
func (r *DeleteResult) Write(p *output.Printer) error {
	p.Line("%s %s (%s)", p.Style("Success", "Deleted"), p.Style("Loadout", r.Loadout), app.ShortID(r.ID))
	if r.Forced {
		p.Line("%s", p.Style("Warning", "Files it placed were left on disk"))
	}
	return nil
}

// CopyOptions defines the options for the Copy command. An empty Name gives
// "<loadout> (copy)".
type CopyOptions struct {
	Loadout string
	Name    string
}

// CopyResult describes the new loadout.
type CopyResult struct {
	From    string             `json:"from" yaml:"from"`
	Loadout app.LoadoutSummary `json:"loadout" yaml:"loadout"`
}

// Copy duplicates a loadout under a new id and name.
func Copy(ctx context.Context, env *app.Env, opts CopyOptions) (*CopyResult, error) {
	log := env.Log.With().Str("command", "Copy").Logger()
	log.Debug().Str("loadout", opts.Loadout).Str("name", opts.Name).Msg("Executing command")

	snap, err := env.Find(ctx, opts.Loadout)
	if err != nil {
		return nil, err
	}
	copied, err := env.Sync.CopyLoadout(ctx, snap.Loadout.ID, opts.Name)
	if err != nil {
		return nil, err
	}
	result := &CopyResult{From: snap.Loadout.Name, Loadout: app.Summarize(copied)}
	log.Info().Str("loadout", result.Loadout.ID).Msg("Command finished")
	return result, nil
}

// Write implements output.View.
func (r *CopyResult) Write(p *output.Printer) error {
	p.Line("%s %s as %s (%s)", p.Style("Success", "Copied"), p.Style("Loadout", r.From),
		p.Style("Loadout", r.Loadout.Name), app.ShortID(r.Loadout.ID))
	p.Line("%s", p.Style("Muted", output.Count(r.Loadout.Mods, "mod")+", "+output.Count(r.Loadout.Files, "file")))
	return nil
}
