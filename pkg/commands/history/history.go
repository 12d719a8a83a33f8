package history

import (
	"context"
	"strconv"
	"time"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/output"
)

// HistoryOptions defines the options for the History command.
type HistoryOptions struct {
	Loadout string
	// Limit keeps the newest entries; zero keeps all.
	Limit int
}

// Entry is one published snapshot.
type Entry struct {
	Sequence uint64    `json:"sequence" yaml:"sequence"`
	Revision uint64    `json:"revision" yaml:"revision"`
	Applied  uint64    `json:"applied" yaml:"applied"`
	Name     string    `json:"name" yaml:"name"`
	Mods     int       `json:"mods" yaml:"mods"`
	Files    int       `json:"files" yaml:"files"`
	Tracked  int       `json:"tracked" yaml:"tracked"`
	Created  time.Time `json:"created" yaml:"created"`
}

// HistoryResult lists a loadout's snapshots, newest first.
type HistoryResult struct {
	Loadout string  `json:"loadout" yaml:"loadout"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// History returns the published snapshots of a loadout.
func History(ctx context.Context, env *app.Env, opts HistoryOptions) (*HistoryResult, error) {
	log := env.Log.With().Str("command", "History").Logger()
	log.Debug().Str("loadout", opts.Loadout).Msg("Executing command")

	snap, err := env.Find(ctx, opts.Loadout)
	if err != nil {
		return nil, err
	}
	chain, err := env.Data.History(ctx, snap.Loadout.ID)
	if err != nil {
		return nil, err
	}

	result := &HistoryResult{Loadout: snap.Loadout.Name, Entries: make([]Entry, 0, len(chain))}
	for i := len(chain) - 1; i >= 0; i-- {
		s := chain[i]
		e := Entry{
			Sequence: s.Sequence,
			Revision: s.Loadout.Revision,
			Name:     s.Loadout.Name,
			Mods:     len(s.Loadout.Mods),
			Files:    s.Loadout.FileCount(),
			Created:  s.Created,
		}
		if s.Applied != nil {
			e.Applied = s.Applied.Revision
		}
		if s.DiskState != nil {
			e.Tracked = s.DiskState.Len()
		}
		result.Entries = append(result.Entries, e)
		if opts.Limit > 0 && len(result.Entries) == opts.Limit {
			break
		}
	}

	log.Info().Int("entries", len(result.Entries)).Msg("Command finished")
	return result, nil
}

// Write implements output.View.
func (r *HistoryResult) Write(p *output.Printer) error {
	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		rows = append(rows, []string{
			strconv.FormatUint(e.Sequence, 10),
			strconv.FormatUint(e.Revision, 10),
			strconv.FormatUint(e.Applied, 10),
			e.Name,
			strconv.Itoa(e.Mods),
			strconv.Itoa(e.Files),
			strconv.Itoa(e.Tracked),
			p.Style("Muted", e.Created.Local().Format(time.DateTime)),
		})
	}
	p.Header("History of " + r.Loadout)
	p.Table([]string{"Seq", "Revision", "Applied", "Name", "Mods", "Files", "On disk", "Created"}, rows)
	return nil
}
