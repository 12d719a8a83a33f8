package app

import (
	"github.com/arthur-debert/modsync/pkg/datastore"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/pathtree"
	"github.com/arthur-debert/modsync/pkg/synchronizer"
)

// LoadoutSummary is the listing form of a snapshot.
type LoadoutSummary struct {
	ID        string            `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	Game      string            `json:"game" yaml:"game"`
	Revision  uint64            `json:"revision" yaml:"revision"`
	Applied   uint64            `json:"applied" yaml:"applied"`
	Mods      int               `json:"mods" yaml:"mods"`
	Files     int               `json:"files" yaml:"files"`
	Locations map[string]string `json:"locations" yaml:"locations"`
}

// Summarize describes a snapshot.
func Summarize(s *datastore.Snapshot) LoadoutSummary {
	l := s.Loadout
	sum := LoadoutSummary{
		ID:        string(l.ID),
		Name:      l.Name,
		Game:      l.Installation.Game,
		Revision:  l.Revision,
		Mods:      len(l.Mods),
		Files:     l.FileCount(),
		Locations: make(map[string]string, len(l.Installation.Locations)),
	}
	if s.Applied != nil {
		sum.Applied = s.Applied.Revision
	}
	for loc, root := range l.Installation.Locations {
		sum.Locations[string(loc)] = root
	}
	return sum
}

// Pending reports whether the loadout has edits not yet applied.
func (s LoadoutSummary) Pending() bool { return s.Applied != s.Revision }

// Status is a one word state for listings.
func (s LoadoutSummary) Status() string {
	if s.Pending() {
		return "pending"
	}
	return "applied"
}

// ShortID trims an id for tables.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// DriftInfo is the listing form of a drifted path.
type DriftInfo struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"`
}

// Drift converts drift entries.
func Drift(entries []synchronizer.DriftEntry) []DriftInfo {
	out := make([]DriftInfo, 0, len(entries))
	for _, d := range entries {
		out = append(out, DriftInfo{Path: d.Path.String(), Kind: string(d.Kind)})
	}
	return out
}

// Strings formats game paths.
func Strings(ps []gamepath.GamePath) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}

// TreePaths lists the paths of a tree in enumeration order.
func TreePaths[T any](t *pathtree.Tree[T]) []string {
	out := make([]string, 0, t.Len())
	for p := range t.All() {
		out = append(out, p.String())
	}
	return out
}
