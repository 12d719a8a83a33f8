package plan

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/output"
	"github.com/arthur-debert/modsync/pkg/synchronizer"
)

// PlanOptions defines the options for the Plan command.
type PlanOptions struct {
	Loadout string
}

// PlanResult is what an apply of the loadout would do.
type PlanResult struct {
	Loadout  string               `json:"loadout" yaml:"loadout"`
	Revision uint64               `json:"revision" yaml:"revision"`
	Summary  synchronizer.Summary `json:"summary" yaml:"summary"`
	ToWrite  []string             `json:"write,omitempty" yaml:"write,omitempty"`
	Extract  []string             `json:"extract,omitempty" yaml:"extract,omitempty"`
	Delete   []string             `json:"delete,omitempty" yaml:"delete,omitempty"`
	Drift    []app.DriftInfo      `json:"drift,omitempty" yaml:"drift,omitempty"`
}

// Plan previews an apply without touching disk. When the installation
// drifted the result is returned together with the drift error.
func Plan(ctx context.Context, env *app.Env, opts PlanOptions) (*PlanResult, error) {
	log := env.Log.With().Str("command", "Plan").Logger()
	log.Debug().Str("loadout", opts.Loadout).Msg("Executing command")

	snap, err := env.Find(ctx, opts.Loadout)
	if err != nil {
		return nil, err
	}
	p, err := env.Sync.Preview(ctx, snap.Loadout)
	var drift *synchronizer.DriftError
	if err != nil && !stderrors.As(err, &drift) {
		return nil, err
	}

	result := FromPlan(snap.Loadout.Name, p)
	log.Info().
		Int("write", result.Summary.Write).
		Int("extract", result.Summary.Extract).
		Int("delete", result.Summary.Delete).
		Int("drift", result.Summary.Drift).
		Msg("Command finished")
	return result, err
}

// FromPlan describes a synchronizer plan.
func FromPlan(name string, p *synchronizer.Plan) *PlanResult {
	return &PlanResult{
		Loadout:  name,
		Revision: p.Revision,
		Summary:  p.Summary(),
		ToWrite:  app.TreePaths(p.ToWrite),
		Extract:  app.TreePaths(p.ToExtract),
		Delete:   app.TreePaths(p.ToDelete),
		Drift:    app.Drift(p.Drift),
	}
}

// Empty reports whether the plan changes nothing.
func (r *PlanResult) Empty() bool {
	return len(r.ToWrite)+len(r.Extract)+len(r.Delete) == 0
}

// Write implements output.View.
func (r *PlanResult) Write(p *output.Printer) error {
	p.Header(fmt.Sprintf("Plan for %s (revision %d)", r.Loadout, r.Revision))
	WriteDrift(p, r.Drift)
	if len(r.Drift) > 0 {
		return nil
	}
	if r.Empty() {
		p.Line("%s", p.Style("Success", "Nothing to do, the installation matches the loadout."))
		return nil
	}
	for _, path := range r.Extract {
		p.Line("  %s %s", p.Style("Extract", "extract"), path)
	}
	for _, path := range r.ToWrite {
		p.Line("  %s   %s", p.Style("Write", "write"), path)
	}
	for _, path := range r.Delete {
		p.Line("  %s  %s", p.Style("Delete", "delete"), path)
	}
	p.Blank()
	WriteSummary(p, r.Summary)
	return nil
}

// WriteSummary prints the partition counts of a plan.
func WriteSummary(p *output.Printer, s synchronizer.Summary) {
	p.Line("%d to extract, %d to write, %d to delete, %d unchanged (%s)",
		s.Extract, s.Write, s.Delete, s.Unmodified, output.Bytes(s.Bytes))
}

// WriteDrift prints drifted paths and the way out.
func WriteDrift(p *output.Printer, drift []app.DriftInfo) {
	if len(drift) == 0 {
		return
	}
	p.Line("%s", p.Style("Drift", output.Count(len(drift), "file")+" changed outside modsync:"))
	for _, d := range drift {
		p.Line("  %s %s", p.Style("Warning", fmt.Sprintf("%-10s", d.Kind)), d.Path)
	}
	p.Blank()
	p.Line("Run 'modsync ingest' to fold them into the loadout first.")
}
