package synchronizer

import (
	"context"
	"slices"
	"strings"

	"github.com/arthur-debert/modsync/pkg/archive"
	"github.com/arthur-debert/modsync/pkg/datastore"
	"github.com/arthur-debert/modsync/pkg/diskstate"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/pathtree"
	"github.com/arthur-debert/modsync/pkg/sorter"
)

// IngestResult describes one ingest.
type IngestResult struct {
	Outcome  Outcome
	Added    []gamepath.GamePath
	Changed  []gamepath.GamePath
	Deleted  []gamepath.GamePath
	Snapshot *datastore.Snapshot
	Err      error
}

// Changes reports whether the ingest altered the loadout.
func (r *IngestResult) Changes() bool {
	return len(r.Added)+len(r.Changed)+len(r.Deleted) > 0
}

// IngestDelta is what DiskToFileTree found: the synthesized descriptors of
// changed and new paths, the replaced descriptors, and the paths that
// disappeared.
type IngestDelta struct {
	Changed  map[gamepath.Key]loadout.ModFile
	Replaced map[gamepath.Key]loadout.ModFile
	Added    map[gamepath.Key]loadout.ModFile
	Deleted  []gamepath.GamePath
}

func newDelta() *IngestDelta {
	return &IngestDelta{
		Changed:  make(map[gamepath.Key]loadout.ModFile),
		Replaced: make(map[gamepath.Key]loadout.ModFile),
		Added:    make(map[gamepath.Key]loadout.ModFile),
	}
}

// Empty reports whether nothing changed.
func (d *IngestDelta) Empty() bool {
	return len(d.Changed) == 0 && len(d.Added) == 0 && len(d.Deleted) == 0
}

// DiskToFileTree rebuilds the file tree from the live directory. Unchanged
// paths keep their prior descriptor, changed and new paths go through the
// ChangeHandler, and paths missing from live are dropped.
func (s *Synchronizer) DiskToFileTree(ctx context.Context, prior *loadout.FileTree, recorded *diskstate.State, live *pathtree.Tree[diskstate.Entry]) (*loadout.FileTree, *IngestDelta, error) {
	delta := newDelta()
	entries := make([]pathtree.Entry[loadout.ModFile], 0, live.Len())

	for p, e := range live.All() {
		prev, targeted := prior.Tree.Get(p)
		rec, known := recorded.Get(p)

		var f loadout.ModFile
		var err error
		switch {
		case known && targeted && rec.SameContent(e):
			f = prev
		case known && targeted:
			if f, err = s.changes.HandleChangedFile(ctx, prev, p, e); err != nil {
				return nil, nil, err
			}
			delta.Changed[s.opts.Case.Key(p)] = retarget(f, p)
			delta.Replaced[s.opts.Case.Key(p)] = prev
		default:
			if f, err = s.changes.HandleNewFile(ctx, p, e); err != nil {
				return nil, nil, err
			}
			delta.Added[s.opts.Case.Key(p)] = retarget(f, p)
		}
		f = retarget(f, p)
		entries = append(entries, pathtree.Entry[loadout.ModFile]{Path: p, Value: f})
		s.log.Trace().Str("path", p.String()).Msg("Ingested file")
	}

	for p := range prior.Tree.All() {
		if !live.Has(p) {
			delta.Deleted = append(delta.Deleted, p)
		}
	}

	return &loadout.FileTree{
		Loadout:  prior.Loadout,
		Revision: prior.Revision,
		Tree:     pathtree.New(entries, s.treeOpts()),
	}, delta, nil
}

func retarget(f loadout.ModFile, p gamepath.GamePath) loadout.ModFile {
	if f.To() == p {
		return f
	}
	return loadout.Retarget(f, p)
}

// categoryMods indexes the enabled mods of l that collect ingested files,
// keyed by folded category. Only mods shaped like newCategoryMod qualify, so
// a user mod that merely shares the category never absorbs ingested files.
// The first such mod in collection order is used.
func categoryMods(l *loadout.Loadout) map[string]*loadout.Mod {
	idx := make(map[string]*loadout.Mod)
	for _, m := range l.EnabledMods() {
		if !isCategoryMod(m) {
			continue
		}
		key := strings.ToLower(m.Category)
		if _, ok := idx[key]; !ok {
			idx[key] = m
		}
	}
	return idx
}

// FileTreeToFlattened attributes a rebuilt file tree to mods. Unchanged
// paths keep their prior pair, changed paths stay with the mod that owned
// them, and new paths go to the category mod of their location. Category
// mods missing from l are created on the returned loadout copy.
func (s *Synchronizer) FileTreeToFlattened(l *loadout.Loadout, prior *loadout.Flattened, tree *loadout.FileTree, delta *IngestDelta) (*loadout.Flattened, *loadout.Loadout) {
	out := l.Clone()
	byCategory := categoryMods(out)
	owners := make(map[loadout.ModID]*loadout.Mod, len(out.Mods))
	for _, m := range out.Mods {
		owners[m.ID] = m
	}

	entries := make([]pathtree.Entry[loadout.Pair], 0, tree.Tree.Len())
	for p, f := range tree.Tree.All() {
		key := s.opts.Case.Key(p)
		var owner *loadout.Mod
		if _, added := delta.Added[key]; !added {
			if pair, ok := prior.Tree.Get(p); ok {
				owner = owners[pair.Mod.ID]
			}
		}
		if owner == nil {
			owner = s.categoryMod(out, byCategory, p.Location)
		}
		entries = append(entries, pathtree.Entry[loadout.Pair]{Path: p, Value: loadout.Pair{Mod: owner, File: f}})
	}

	return &loadout.Flattened{
		Loadout:  tree.Loadout,
		Revision: tree.Revision,
		Tree:     pathtree.New(entries, s.treeOpts()),
	}, out
}

// categoryMod returns the mod collecting new files in loc, adding it to l on
// first use.
func (s *Synchronizer) categoryMod(l *loadout.Loadout, idx map[string]*loadout.Mod, loc gamepath.LocationID) *loadout.Mod {
	category := s.categoryFor(loc)
	key := strings.ToLower(category)
	if m, ok := idx[key]; ok {
		return m
	}
	m := newCategoryMod(category)
	l.Mods = append(l.Mods, m)
	idx[key] = m
	s.log.Info().Str("loadout", string(l.ID)).Str("mod", m.Name).Msg("Created category mod for ingested files")
	return m
}

func newCategoryMod(category string) *loadout.Mod {
	m := loadout.NewMod(category, category)
	m.SortRules = []sorter.Rule[loadout.ModID]{sorter.AtLast[loadout.ModID]()}
	return m
}

func isCategoryMod(m *loadout.Mod) bool {
	if !strings.EqualFold(m.Name, m.Category) {
		return false
	}
	return slices.Contains(m.SortRules, sorter.AtLast[loadout.ModID]())
}

// FlattenedToLoadout folds an ingest back into l's mods: replaced files are
// swapped for their new descriptors in the owning mod, new files join their
// category mod and every enabled mod loses its files at deleted paths, so
// that re-applying the result reproduces the ingested directory. The
// returned loadout is a copy at revision.
func (s *Synchronizer) FlattenedToLoadout(l *loadout.Loadout, flat *loadout.Flattened, delta *IngestDelta, revision uint64) *loadout.Loadout {
	out := l.Clone()
	out.Revision = revision
	byID := make(map[loadout.ModID]*loadout.Mod, len(out.Mods))
	for _, m := range out.Mods {
		byID[m.ID] = m
	}
	byCategory := categoryMods(out)

	touched := make(map[loadout.ModID]bool)
	place := func(p gamepath.GamePath, f loadout.ModFile) {
		var owner *loadout.Mod
		if pair, ok := flat.Tree.Get(p); ok {
			owner = byID[pair.Mod.ID]
			category := strings.ToLower(pair.Mod.Category)
			if owner == nil {
				owner = byCategory[category]
			}
			if owner == nil && category == strings.ToLower(s.categoryFor(p.Location)) {
				// a category mod created by this ingest keeps its id
				owner = pair.Mod.Clone()
				owner.Files = make(map[loadout.FileID]loadout.ModFile)
				out.Mods = append(out.Mods, owner)
				byID[owner.ID] = owner
				byCategory[category] = owner
			}
		}
		if owner == nil {
			owner = s.categoryMod(out, byCategory, p.Location)
			byID[owner.ID] = owner
		}
		owner.Add(f)
		touched[owner.ID] = true
	}

	for _, f := range delta.Replaced {
		for _, m := range out.Mods {
			if _, ok := m.Files[f.FileID()]; ok {
				delete(m.Files, f.FileID())
				touched[m.ID] = true
			}
		}
	}
	for _, key := range sortedKeys(delta.Changed) {
		f := delta.Changed[key]
		place(f.To(), f)
	}
	for _, key := range sortedKeys(delta.Added) {
		f := delta.Added[key]
		place(f.To(), f)
	}

	for _, p := range delta.Deleted {
		key := s.opts.Case.Key(p)
		for _, m := range out.Mods {
			if !m.Enabled {
				continue
			}
			for id, f := range m.Files {
				if s.opts.Case.Key(f.To()) == key {
					delete(m.Files, id)
					touched[m.ID] = true
				}
			}
		}
	}

	if s.opts.PruneEmptyMods {
		out.Mods = slices.DeleteFunc(out.Mods, func(m *loadout.Mod) bool {
			return touched[m.ID] && len(m.Files) == 0
		})
	}
	return out
}

func sortedKeys(m map[gamepath.Key]loadout.ModFile) []gamepath.Key {
	keys := make([]gamepath.Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b gamepath.Key) int {
		if a.Location != b.Location {
			return strings.Compare(string(a.Location), string(b.Location))
		}
		return strings.Compare(a.Path, b.Path)
	})
	return keys
}

// Ingest absorbs changes made to the installation outside modsync into the
// loadout id and publishes the result, with the fresh disk state paired to
// the new applied revision.
func (s *Synchronizer) Ingest(ctx context.Context, id loadout.LoadoutID) (*IngestResult, error) {
	res := &IngestResult{Outcome: OutcomeFailed}
	fail := func(err error) (*IngestResult, error) {
		res.Err = err
		return res, err
	}

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return fail(err)
	}
	defer unlock()
	defer logging.LogOperationStart(s.log.With().Str("loadout", string(id)).Logger(), "ingest")()

	snap, err := s.data.Current(ctx, id)
	if err != nil {
		return fail(err)
	}
	if err := checkPairing(snap); err != nil {
		return fail(err)
	}
	applied := snap.Applied

	priorTree, priorFlat, err := s.LoadoutToFileTree(ctx, applied)
	if err != nil {
		return fail(err)
	}
	live, err := s.indexer.Index(ctx, applied.Installation, snap.DiskState.Tree, priorTree.Tree.Has)
	if err != nil {
		return fail(err)
	}

	tree, delta, err := s.DiskToFileTree(ctx, priorTree, snap.DiskState, live)
	if err != nil {
		return fail(err)
	}
	res.Added = pathsOf(delta.Added)
	res.Changed = pathsOf(delta.Changed)
	res.Deleted = delta.Deleted

	if delta.Empty() {
		refreshed := diskstate.New(id, applied.Revision, live)
		if sameFingerprints(snap.DiskState, refreshed) {
			res.Outcome = OutcomeIngested
			res.Snapshot = snap
			s.log.Info().Str("loadout", string(id)).Msg("Nothing to ingest")
			return res, nil
		}
		published, err := s.publishIngest(ctx, snap, snap.Loadout, applied, refreshed)
		if err != nil {
			return fail(err)
		}
		res.Outcome = OutcomeIngested
		res.Snapshot = published
		return res, nil
	}

	if s.opts.BackupFiles {
		if err := s.backupSynthesized(ctx, applied.Installation, delta); err != nil {
			return fail(err)
		}
	}

	flat, withCategories := s.FileTreeToFlattened(applied, priorFlat, tree, delta)

	base := snap.Loadout.Revision
	var nextApplied, nextLoadout *loadout.Loadout
	if applied.Revision == snap.Loadout.Revision {
		nextApplied = s.FlattenedToLoadout(withCategories, flat, delta, base+1)
		nextLoadout = nextApplied
	} else {
		nextApplied = s.FlattenedToLoadout(withCategories, flat, delta, base+1)
		nextLoadout = s.FlattenedToLoadout(snap.Loadout, flat, delta, base+2)
	}
	state := diskstate.New(id, nextApplied.Revision, live)

	published, err := s.publishIngest(ctx, snap, nextLoadout, nextApplied, state)
	if err != nil {
		return fail(err)
	}
	res.Outcome = OutcomeIngested
	res.Snapshot = published
	s.log.Info().
		Str("loadout", string(id)).
		Int("added", len(res.Added)).
		Int("changed", len(res.Changed)).
		Int("deleted", len(res.Deleted)).
		Uint64("revision", nextLoadout.Revision).
		Msg("Ingested changes")
	return res, nil
}

func (s *Synchronizer) publishIngest(ctx context.Context, snap *datastore.Snapshot, l, applied *loadout.Loadout, state *diskstate.State) (*datastore.Snapshot, error) {
	seq := snap.Sequence
	return s.data.Publish(ctx, l.ID, func(cur *datastore.Snapshot) (*datastore.Snapshot, error) {
		if cur == nil || cur.Sequence != seq {
			return nil, errors.Newf(errors.ErrStaleState, "loadout %s changed while ingesting", l.ID)
		}
		return &datastore.Snapshot{Loadout: l, Applied: applied, DiskState: state}, nil
	})
}

func (s *Synchronizer) backupSynthesized(ctx context.Context, inst loadout.Installation, delta *IngestDelta) error {
	var reqs []archive.BackupRequest
	for _, m := range []map[gamepath.Key]loadout.ModFile{delta.Changed, delta.Added} {
		for _, key := range sortedKeys(m) {
			f, ok := m[key].(loadout.FromArchive)
			if !ok {
				continue
			}
			abs, err := inst.Resolve(f.Path)
			if err != nil {
				return err
			}
			reqs = append(reqs, archive.BackupRequest{Hash: f.Hash, Source: abs})
		}
	}
	return s.archive.Backup(ctx, reqs)
}

func pathsOf(m map[gamepath.Key]loadout.ModFile) []gamepath.GamePath {
	keys := sortedKeys(m)
	out := make([]gamepath.GamePath, len(keys))
	for i, k := range keys {
		out[i] = m[k].To()
	}
	return out
}

// sameFingerprints compares content and mtimes.
func sameFingerprints(a, b *diskstate.State) bool {
	if a.Len() != b.Len() {
		return false
	}
	for p, e := range a.Tree.All() {
		o, ok := b.Get(p)
		if !ok || !e.SameContent(o) || !e.LastModified.Equal(o.LastModified) {
			return false
		}
	}
	return true
}
