package synchronizer

import (
	"context"
	"slices"

	"github.com/RoaringBitmap/roaring"

	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/pathtree"
	"github.com/arthur-debert/modsync/pkg/sorter"
)

// SortMods orders the enabled mods of l by their sort rules. Disabled mods
// are left out and rules naming them have no effect.
func (s *Synchronizer) SortMods(ctx context.Context, l *loadout.Loadout) ([]*loadout.Mod, error) {
	enabled := l.EnabledMods()
	ruleSets := make(map[loadout.ModID][]sorter.Rule[loadout.ModID], len(enabled))
	for _, m := range enabled {
		rs, err := s.rules.RulesFor(ctx, l, m)
		if err != nil {
			return nil, err
		}
		ruleSets[m.ID] = rs
	}
	return sorter.Sort(enabled,
		func(m *loadout.Mod) loadout.ModID { return m.ID },
		func(m *loadout.Mod) []sorter.Rule[loadout.ModID] { return ruleSets[m.ID] },
	)
}

// LoadoutToFlattened resolves every targeted path to one (mod, file) pair.
// Mods are walked in sort order and each file overwrites whatever an earlier
// mod placed at its path, so the last mod in sort order wins.
func (s *Synchronizer) LoadoutToFlattened(ctx context.Context, l *loadout.Loadout) (*loadout.Flattened, error) {
	sorted, err := s.SortMods(ctx, l)
	if err != nil {
		return nil, err
	}

	winners := make(map[gamepath.Key]int)
	var entries []pathtree.Entry[loadout.Pair]
	overridden := 0
	for _, m := range sorted {
		for _, f := range m.SortedFiles() {
			key := s.opts.Case.Key(f.To())
			pair := pathtree.Entry[loadout.Pair]{Path: f.To(), Value: loadout.Pair{Mod: m, File: f}}
			if i, ok := winners[key]; ok {
				entries[i] = pair
				overridden++
				continue
			}
			winners[key] = len(entries)
			entries = append(entries, pair)
		}
	}

	s.log.Debug().
		Str("loadout", string(l.ID)).
		Int("mods", len(sorted)).
		Int("paths", len(entries)).
		Int("overridden", overridden).
		Msg("Flattened loadout")
	return &loadout.Flattened{
		Loadout:  l.ID,
		Revision: l.Revision,
		Tree:     pathtree.New(entries, s.treeOpts()),
	}, nil
}

// FlattenedToFileTree drops mod attribution.
func (s *Synchronizer) FlattenedToFileTree(f *loadout.Flattened) *loadout.FileTree {
	return &loadout.FileTree{
		Loadout:  f.Loadout,
		Revision: f.Revision,
		Tree: pathtree.Map(f.Tree, func(_ gamepath.GamePath, p loadout.Pair) loadout.ModFile {
			return p.File
		}),
	}
}

// LoadoutToFileTree runs both projections.
func (s *Synchronizer) LoadoutToFileTree(ctx context.Context, l *loadout.Loadout) (*loadout.FileTree, *loadout.Flattened, error) {
	flat, err := s.LoadoutToFlattened(ctx, l)
	if err != nil {
		return nil, nil, err
	}
	return s.FlattenedToFileTree(flat), flat, nil
}

// Conflict is a path claimed by more than one enabled mod. Claimants are in
// sort order; the last one wins.
type Conflict struct {
	Path      gamepath.GamePath
	Claimants []loadout.Pair
}

// Winner returns the claimant that ends up on disk.
func (c Conflict) Winner() loadout.Pair { return c.Claimants[len(c.Claimants)-1] }

// Conflicts lists every path more than one enabled mod targets, ordered by
// path.
func (s *Synchronizer) Conflicts(ctx context.Context, l *loadout.Loadout) ([]Conflict, error) {
	sorted, err := s.SortMods(ctx, l)
	if err != nil {
		return nil, err
	}

	type claim struct {
		path  gamepath.GamePath
		mods  *roaring.Bitmap
		files map[uint32]loadout.ModFile
	}
	claims := make(map[gamepath.Key]*claim)
	for i, m := range sorted {
		idx := uint32(i)
		for _, f := range m.SortedFiles() {
			key := s.opts.Case.Key(f.To())
			c, ok := claims[key]
			if !ok {
				c = &claim{path: f.To(), mods: roaring.New(), files: make(map[uint32]loadout.ModFile)}
				claims[key] = c
			}
			c.mods.Add(idx)
			c.files[idx] = f
		}
	}

	var out []Conflict
	for _, c := range claims {
		if c.mods.GetCardinality() < 2 {
			continue
		}
		conflict := Conflict{Path: c.path}
		it := c.mods.Iterator()
		for it.HasNext() {
			idx := it.Next()
			conflict.Claimants = append(conflict.Claimants, loadout.Pair{Mod: sorted[idx], File: c.files[idx]})
		}
		out = append(out, conflict)
	}
	slices.SortFunc(out, func(a, b Conflict) int { return s.opts.Case.Compare(a.Path, b.Path) })
	return out, nil
}
