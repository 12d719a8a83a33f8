package list

import (
	"context"
	"strconv"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/output"
)

// ListResult holds every managed loadout.
type ListResult struct {
	Loadouts []app.LoadoutSummary `json:"loadouts" yaml:"loadouts"`
}

// ListLoadouts returns every managed loadout, ordered by id.
func ListLoadouts(ctx context.Context, env *app.Env) (*ListResult, error) {
	log := env.Log.With().Str("command", "ListLoadouts").Logger()
	log.Debug().Msg("Executing command")

	snaps, err := env.Data.List(ctx)
	if err != nil {
		return nil, err
	}
	result := &ListResult{Loadouts: make([]app.LoadoutSummary, 0, len(snaps))}
	for _, s := range snaps {
		result.Loadouts = append(result.Loadouts, app.Summarize(s))
	}

	log.Info().Int("loadoutCount", len(result.Loadouts)).Msg("Command finished")
	return result, nil
}

// Write implements output.View.
func (r *ListResult) Write(p *output.Printer) error {
	if len(r.Loadouts) == 0 {
		p.Line("No loadouts managed yet. Start with 'modsync manage'.")
		return nil
	}
	rows := make([][]string, 0, len(r.Loadouts))
	for _, l := range r.Loadouts {
		status := p.Style("Success", l.Status())
		if l.Pending() {
			status = p.Style("Warning", l.Status())
		}
		rows = append(rows, []string{
			p.Style("Loadout", l.Name),
			app.ShortID(l.ID),
			l.Game,
			strconv.FormatUint(l.Revision, 10),
			strconv.FormatUint(l.Applied, 10),
			strconv.Itoa(l.Mods),
			strconv.Itoa(l.Files),
			status,
		})
	}
	p.Table([]string{"Name", "ID", "Game", "Revision", "Applied", "Mods", "Files", "Status"}, rows)
	return nil
}
