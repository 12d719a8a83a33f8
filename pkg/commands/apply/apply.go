package apply

import (
	"context"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/commands/plan"
	"github.com/arthur-debert/modsync/pkg/output"
	"github.com/arthur-debert/modsync/pkg/synchronizer"
)

// ApplyOptions defines the options for the Apply command.
type ApplyOptions struct {
	Loadout string
}

// ApplyResult describes one apply. It is returned with the error when the
// apply did not go through.
type ApplyResult struct {
	Loadout  string               `json:"loadout" yaml:"loadout"`
	Outcome  synchronizer.Outcome `json:"outcome" yaml:"outcome"`
	Revision uint64               `json:"revision" yaml:"revision"`
	Sequence uint64               `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Summary  synchronizer.Summary `json:"summary" yaml:"summary"`
	Drift    []app.DriftInfo      `json:"drift,omitempty" yaml:"drift,omitempty"`
	Error    string               `json:"error,omitempty" yaml:"error,omitempty"`
}

// Apply projects the current revision of a loadout onto its installation.
func Apply(ctx context.Context, env *app.Env, opts ApplyOptions) (*ApplyResult, error) {
	log := env.Log.With().Str("command", "Apply").Logger()
	log.Debug().Str("loadout", opts.Loadout).Msg("Executing command")

	snap, err := env.Find(ctx, opts.Loadout)
	if err != nil {
		return nil, err
	}
	res, err := env.Sync.Apply(ctx, snap.Loadout)

	result := &ApplyResult{
		Loadout:  snap.Loadout.Name,
		Outcome:  res.Outcome,
		Revision: snap.Loadout.Revision,
		Drift:    app.Drift(res.Drift),
	}
	if res.Plan != nil {
		result.Summary = res.Plan.Summary()
	}
	if res.Snapshot != nil {
		result.Sequence = res.Snapshot.Sequence
	}
	if err != nil {
		result.Error = err.Error()
	}

	log.Info().Str("outcome", string(result.Outcome)).Msg("Command finished")
	return result, err
}

// Write implements output.View.
func (r *ApplyResult) Write(p *output.Printer) error {
	switch r.Outcome {
	case synchronizer.OutcomeApplied:
		p.Line("%s %s at revision %d", p.Style("Success", "Applied"), p.Style("Loadout", r.Loadout), r.Revision)
		plan.WriteSummary(p, r.Summary)
	case synchronizer.OutcomeNeedsIngest:
		p.Line("%s %s", p.Style("Warning", "Not applied:"), p.Style("Loadout", r.Loadout))
		plan.WriteDrift(p, r.Drift)
	default:
		p.Line("%s %s", p.Style("Error", "Apply failed:"), p.Style("Loadout", r.Loadout))
	}
	return nil
}
