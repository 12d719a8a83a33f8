package conflicts

import (
	"context"
	"strings"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/output"
)

// ConflictsOptions defines the options for the ListConflicts command.
type ConflictsOptions struct {
	Loadout string
	// Mod limits the report to paths this mod claims.
	Mod string
}

// ConflictInfo is one contested path. Claimants are mod names in sort
// order; Winner is the last of them.
type ConflictInfo struct {
	Path      string   `json:"path" yaml:"path"`
	Winner    string   `json:"winner" yaml:"winner"`
	Claimants []string `json:"claimants" yaml:"claimants"`
}

// ConflictsResult lists contested paths, ordered by path.
type ConflictsResult struct {
	Loadout   string         `json:"loadout" yaml:"loadout"`
	Conflicts []ConflictInfo `json:"conflicts" yaml:"conflicts"`
}

// ListConflicts reports every path more than one enabled mod claims.
func ListConflicts(ctx context.Context, env *app.Env, opts ConflictsOptions) (*ConflictsResult, error) {
	log := env.Log.With().Str("command", "ListConflicts").Logger()
	log.Debug().Str("loadout", opts.Loadout).Msg("Executing command")

	snap, err := env.Find(ctx, opts.Loadout)
	if err != nil {
		return nil, err
	}
	l := snap.Loadout

	var only string
	if opts.Mod != "" {
		m, err := l.FindMod(opts.Mod)
		if err != nil {
			return nil, err
		}
		only = string(m.ID)
	}

	found, err := env.Sync.Conflicts(ctx, l)
	if err != nil {
		return nil, err
	}

	result := &ConflictsResult{Loadout: l.Name, Conflicts: make([]ConflictInfo, 0, len(found))}
	for _, c := range found {
		info := ConflictInfo{Path: c.Path.String(), Winner: c.Winner().Mod.Name}
		involved := only == ""
		for _, pair := range c.Claimants {
			info.Claimants = append(info.Claimants, pair.Mod.Name)
			if string(pair.Mod.ID) == only {
				involved = true
			}
		}
		if involved {
			result.Conflicts = append(result.Conflicts, info)
		}
	}

	log.Info().Int("conflictCount", len(result.Conflicts)).Msg("Command finished")
	return result, nil
}

// Write implements output.View.
func (r *ConflictsResult) Write(p *output.Printer) error {
	if len(r.Conflicts) == 0 {
		p.Line("%s %s", p.Style("Success", "No conflicts in"), p.Style("Loadout", r.Loadout))
		return nil
	}
	rows := make([][]string, 0, len(r.Conflicts))
	for _, c := range r.Conflicts {
		losers := c.Claimants[:len(c.Claimants)-1]
		rows = append(rows, []string{
			p.Style("Path", c.Path),
			p.Style("Winner", c.Winner),
			p.Style("Muted", strings.Join(losers, ", ")),
		})
	}
	p.Table([]string{"Path", "Winner", "Overrides"}, rows)
	p.Line("%s", output.Count(len(r.Conflicts), "conflicting path"))
	return nil
}
