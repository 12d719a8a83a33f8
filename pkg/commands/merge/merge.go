package merge

import (
	"context"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/output"
	"github.com/arthur-debert/modsync/pkg/synchronizer"
)

// MergeOptions defines the options for the Merge command.
type MergeOptions struct {
	// Into is the loadout that receives the merge result.
	Into string
	From string
	// Algorithm is "a-overrides-b" (Into wins) or "b-overrides-a".
	Algorithm string
}

// MergeResult describes the merged revision of Into.
type MergeResult struct {
	Loadout   string `json:"loadout" yaml:"loadout"`
	From      string `json:"from" yaml:"from"`
	Algorithm string `json:"algorithm" yaml:"algorithm"`
	Revision  uint64 `json:"revision" yaml:"revision"`
	Mods      int    `json:"mods" yaml:"mods"`
	Files     int    `json:"files" yaml:"files"`
}

// Merge folds the mods of From into Into and publishes the result as the
// next revision of Into.
func Merge(ctx context.Context, env *app.Env, opts MergeOptions) (*MergeResult, error) {
	log := env.Log.With().Str("command", "Merge").Logger()
	log.Debug().Str("into", opts.Into).Str("from", opts.From).Msg("Executing command")

	algo, err := synchronizer.ParseMergeAlgorithm(opts.Algorithm)
	if err != nil {
		return nil, err
	}
	a, err := env.Find(ctx, opts.Into)
	if err != nil {
		return nil, err
	}
	b, err := env.Find(ctx, opts.From)
	if err != nil {
		return nil, err
	}
	if a.Loadout.ID == b.Loadout.ID {
		return nil, errors.New(errors.ErrInvalidInput, "cannot merge a loadout into itself")
	}

	merged, err := env.Sync.MergeLoadouts(ctx, a.Loadout, b.Loadout, algo)
	if err != nil {
		return nil, err
	}
	base := a.Loadout.Revision
	published, err := env.Sync.Update(ctx, a.Loadout.ID, func(cur *loadout.Loadout) (*loadout.Loadout, error) {
		if cur.Revision != base {
			return nil, errors.Newf(errors.ErrStaleState, "loadout %s changed while merging", cur.Name)
		}
		return merged, nil
	})
	if err != nil {
		return nil, err
	}

	result := &MergeResult{
		Loadout:   published.Loadout.Name,
		From:      b.Loadout.Name,
		Algorithm: algo.String(),
		Revision:  published.Loadout.Revision,
		Mods:      len(published.Loadout.Mods),
		Files:     published.Loadout.FileCount(),
	}
	log.Info().Uint64("revision", result.Revision).Int("mods", result.Mods).Msg("Command finished")
	return result, nil
}

// Write implements output.View.
func (r *MergeResult) Write(p *output.Printer) error {
	p.Line("%s %s into %s (%s)", p.Style("Success", "Merged"), p.Style("Loadout", r.From), p.Style("Loadout", r.Loadout), r.Algorithm)
	p.Line("Revision %d has %s and %s. Run 'modsync apply' to update the installation.",
		r.Revision, output.Count(r.Mods, "mod"), output.Count(r.Files, "file"))
	return nil
}
