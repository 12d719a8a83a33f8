package mods

import (
	"context"
	"strconv"

	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/output"
)

// ModsOptions defines the options for the ListMods command.
type ModsOptions struct {
	Loadout string
}

// ModInfo describes one mod. Position is its place in sort order, counted
// from 1; disabled mods have none.
type ModInfo struct {
	Position int    `json:"position,omitempty" yaml:"position,omitempty"`
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Files    int    `json:"files" yaml:"files"`
	Bytes    int64  `json:"bytes" yaml:"bytes"`
}

// ModsResult lists the mods of a loadout, enabled ones in sort order
// followed by disabled ones in collection order.
type ModsResult struct {
	Loadout  string    `json:"loadout" yaml:"loadout"`
	Revision uint64    `json:"revision" yaml:"revision"`
	Mods     []ModInfo `json:"mods" yaml:"mods"`
}

// ListMods returns the mods of a loadout.
func ListMods(ctx context.Context, env *app.Env, opts ModsOptions) (*ModsResult, error) {
	log := env.Log.With().Str("command", "ListMods").Logger()
	log.Debug().Str("loadout", opts.Loadout).Msg("Executing command")

	snap, err := env.Find(ctx, opts.Loadout)
	if err != nil {
		return nil, err
	}
	l := snap.Loadout
	sorted, err := env.Sync.SortMods(ctx, l)
	if err != nil {
		return nil, err
	}

	result := &ModsResult{Loadout: l.Name, Revision: l.Revision, Mods: make([]ModInfo, 0, len(l.Mods))}
	for i, m := range sorted {
		info := describe(m)
		info.Position = i + 1
		result.Mods = append(result.Mods, info)
	}
	for _, m := range l.Mods {
		if !m.Enabled {
			result.Mods = append(result.Mods, describe(m))
		}
	}

	log.Info().Int("modCount", len(result.Mods)).Msg("Command finished")
	return result, nil
}

func describe(m *loadout.Mod) ModInfo {
	info := ModInfo{
		ID:       string(m.ID),
		Name:     m.Name,
		Category: m.Category,
		Enabled:  m.Enabled,
		Files:    len(m.Files),
	}
	for _, f := range m.Files {
		if _, size, ok := loadout.KnownHash(f); ok {
			info.Bytes += size
		}
	}
	return info
}

// Write implements output.View.
func (r *ModsResult) Write(p *output.Printer) error {
	p.Header(r.Loadout + " (revision " + strconv.FormatUint(r.Revision, 10) + ")")
	if len(r.Mods) == 0 {
		p.Line("No mods.")
		return nil
	}
	rows := make([][]string, 0, len(r.Mods))
	for _, m := range r.Mods {
		pos, name := "-", p.Style("Disabled", m.Name)
		if m.Enabled {
			pos, name = strconv.Itoa(m.Position), p.Style("Mod", m.Name)
		}
		rows = append(rows, []string{pos, name, m.Category, strconv.Itoa(m.Files), output.Bytes(m.Bytes), app.ShortID(m.ID)})
	}
	p.Table([]string{"#", "Mod", "Category", "Files", "Size", "ID"}, rows)
	return nil
}
