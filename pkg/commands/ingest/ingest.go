package ingest

import (
	"context"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/output"
	"github.com/arthur-debert/modsync/pkg/synchronizer"
)

// IngestOptions defines the options for the Ingest command.
type IngestOptions struct {
	Loadout string
}

// IngestResult lists what was folded back into the loadout.
type IngestResult struct {
	Loadout  string               `json:"loadout" yaml:"loadout"`
	Outcome  synchronizer.Outcome `json:"outcome" yaml:"outcome"`
	Revision uint64               `json:"revision" yaml:"revision"`
	Added    []string             `json:"added,omitempty" yaml:"added,omitempty"`
	Changed  []string             `json:"changed,omitempty" yaml:"changed,omitempty"`
	Deleted  []string             `json:"deleted,omitempty" yaml:"deleted,omitempty"`
}

// Ingest absorbs external changes to the installation into the loadout.
func Ingest(ctx context.Context, env *app.Env, opts IngestOptions) (*IngestResult, error) {
	log := env.Log.With().Str("command", "Ingest").Logger()
	log.Debug().Str("loadout", opts.Loadout).Msg("Executing command")

	snap, err := env.Find(ctx, opts.Loadout)
	if err != nil {
		return nil, err
	}
	res, err := env.Sync.Ingest(ctx, snap.Loadout.ID)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{
		Loadout:  snap.Loadout.Name,
		Outcome:  res.Outcome,
		Revision: res.Snapshot.Loadout.Revision,
		Added:    app.Strings(res.Added),
		Changed:  app.Strings(res.Changed),
		Deleted:  app.Strings(res.Deleted),
	}
	log.Info().
		Int("added", len(result.Added)).
		Int("changed", len(result.Changed)).
		Int("deleted", len(result.Deleted)).
		Msg("Command finished")
	return result, nil
}

// Write implements output.View.
func (r *IngestResult) Write(p *output.Printer) error {
	if len(r.Added)+len(r.Changed)+len(r.Deleted) == 0 {
		p.Line("%s %s", p.Style("Success", "No external changes in"), p.Style("Loadout", r.Loadout))
		return nil
	}
	p.Header("Ingested into " + r.Loadout)
	for _, path := range r.Added {
		p.Line("  %s   %s", p.Style("Write", "added"), path)
	}
	for _, path := range r.Changed {
		p.Line("  %s %s", p.Style("Extract", "changed"), path)
	}
	for _, path := range r.Deleted {
		p.Line("  %s %s", p.Style("Delete", "deleted"), path)
	}
	p.Blank()
	p.Line("Loadout %s is now at revision %d", r.Loadout, r.Revision)
	return nil
}
