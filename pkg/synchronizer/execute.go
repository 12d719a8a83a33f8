package synchronizer

import (
	"context"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"github.com/arthur-debert/modsync/pkg/archive"
	"github.com/arthur-debert/modsync/pkg/diskstate"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/hashing"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/pathtree"
)

// Preflight checks what a plan needs before anything on disk changes: every
// blob to extract or restore is in the archive store and, when enabled, each
// location's volume has room for the bytes written there.
func (s *Synchronizer) Preflight(ctx context.Context, l *loadout.Loadout, plan *Plan) error {
	var missing []hashing.Hash
	seen := make(map[hashing.Hash]bool)
	check := func(f loadout.ModFile) error {
		var h hashing.Hash
		switch v := f.(type) {
		case loadout.FromArchive:
			h = v.Hash
		case loadout.GameFile:
			h = v.Hash
		default:
			return nil
		}
		if seen[h] {
			return nil
		}
		seen[h] = true
		ok, err := s.archive.Has(ctx, h)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, h)
		}
		return nil
	}
	for _, f := range plan.ToExtract.All() {
		if err := check(f); err != nil {
			return err
		}
	}
	for _, f := range plan.ToWrite.All() {
		if err := check(f); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return errors.Newf(errors.ErrArchiveMissing, "%d blob(s) needed by loadout %s are not in the archive store, first %s",
			len(missing), l.Name, missing[0]).WithDetail("hashes", missing)
	}

	if !s.opts.CheckFreeSpace || s.space == nil {
		return nil
	}
	need := make(map[gamepath.LocationID]int64)
	for _, tree := range []*pathtree.Tree[loadout.ModFile]{plan.ToExtract, plan.ToWrite} {
		for p, f := range tree.All() {
			if _, size, ok := loadout.KnownHash(f); ok {
				need[p.Location] += size
			}
		}
	}
	for _, loc := range slices.Sorted(maps.Keys(need)) {
		root, ok := l.Installation.Root(loc)
		if !ok {
			return errors.Newf(errors.ErrPathInvalid, "loadout %s has no root for location %s", l.Name, loc)
		}
		if err := s.space.Check(ctx, s.existingAncestor(root), need[loc]); err != nil {
			return err
		}
	}
	return nil
}

// existingAncestor walks up from dir until it finds a directory that exists.
func (s *Synchronizer) existingAncestor(dir string) string {
	for {
		if _, err := s.fs.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// ExecutePlan performs a plan's deletions, writes and extractions, in that
// order, and returns the disk state the loadout revision now pairs with.
func (s *Synchronizer) ExecutePlan(ctx context.Context, l *loadout.Loadout, plan *Plan) (*diskstate.State, error) {
	if len(plan.Drift) > 0 {
		return nil, &DriftError{Loadout: plan.Loadout, Entries: plan.Drift}
	}
	inst := l.Installation

	if err := s.deleteFiles(ctx, inst, plan.ToDelete); err != nil {
		return nil, err
	}

	results := make([]pathtree.Entry[diskstate.Entry], 0, plan.ToWrite.Len()+plan.ToExtract.Len()+plan.Retained.Len())
	results = append(results, plan.Retained.Entries()...)

	for p, f := range plan.ToWrite.All() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCancelled, "apply cancelled")
		}
		entry, err := s.writeFile(ctx, l, p, f)
		if err != nil {
			return nil, err
		}
		results = append(results, pathtree.Entry[diskstate.Entry]{Path: p, Value: entry})
	}

	extracted, err := s.extractFiles(ctx, inst, plan.ToExtract)
	if err != nil {
		return nil, err
	}
	results = append(results, extracted...)

	state := diskstate.New(plan.Loadout, plan.Revision, pathtree.New(results, s.treeOpts()))
	s.log.Info().
		Str("loadout", string(l.ID)).
		Uint64("revision", plan.Revision).
		Int("files", state.Len()).
		Msg("Executed plan")
	return state, nil
}

func (s *Synchronizer) deleteFiles(ctx context.Context, inst loadout.Installation, del *pathtree.Tree[diskstate.Entry]) error {
	dirs := make(map[string]gamepath.LocationID)
	for p := range del.All() {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCancelled, "apply cancelled")
		}
		abs, err := inst.Resolve(p)
		if err != nil {
			return err
		}
		if err := s.fs.Remove(abs); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileDelete, "delete %s", p)
		}
		s.log.Debug().Str("path", p.String()).Msg("Deleted file")
		dirs[filepath.Dir(abs)] = p.Location
	}
	if !s.opts.CleanEmptyDirectories {
		return nil
	}

	// deepest first so parents see their emptied children gone
	ordered := slices.Sorted(maps.Keys(dirs))
	slices.Reverse(ordered)
	for _, dir := range ordered {
		root, _ := inst.Root(dirs[dir])
		s.pruneEmptyDirs(dir, filepath.Clean(root))
	}
	return nil
}

// pruneEmptyDirs removes dir and its ancestors while they are empty, never
// touching root itself.
func (s *Synchronizer) pruneEmptyDirs(dir, root string) {
	for dir != root && len(dir) > len(root) {
		empty, err := afero.IsEmpty(s.fs, dir)
		if err != nil || !empty {
			return
		}
		if err := s.fs.Remove(dir); err != nil {
			return
		}
		s.log.Trace().Str("dir", dir).Msg("Removed empty directory")
		dir = filepath.Dir(dir)
	}
}

// writeFile produces a generated file or restores a game file from the
// archive store, hashing the content as it is written.
func (s *Synchronizer) writeFile(ctx context.Context, l *loadout.Loadout, p gamepath.GamePath, f loadout.ModFile) (diskstate.Entry, error) {
	abs, err := l.Installation.Resolve(p)
	if err != nil {
		return diskstate.Entry{}, err
	}

	var src io.Reader
	switch v := f.(type) {
	case loadout.Generated:
		gen, err := s.generators.Lookup(v.Generator)
		if err != nil {
			return diskstate.Entry{}, err
		}
		pr, pw := io.Pipe()
		go func() {
			pw.CloseWithError(gen.Generate(ctx, pw, l, v))
		}()
		defer pr.Close()
		src = pr
	case loadout.GameFile:
		rc, err := s.archive.Open(ctx, v.Hash)
		if err != nil {
			return diskstate.Entry{}, err
		}
		defer rc.Close()
		src = rc
	default:
		return diskstate.Entry{}, errors.Newf(errors.ErrInternal, "%T cannot be written directly", f)
	}

	hw := hashing.NewWriter(nil)
	if err := archive.WriteFileAtomic(s.fs, abs, io.TeeReader(src, hw)); err != nil {
		return diskstate.Entry{}, err
	}
	info, err := s.fs.Stat(abs)
	if err != nil {
		return diskstate.Entry{}, errors.Wrapf(err, errors.ErrFileRead, "stat %s", p)
	}
	s.log.Debug().Str("path", p.String()).Str("hash", hw.Sum().String()).Msg("Wrote file")
	return diskstate.Entry{Hash: hw.Sum(), Size: hw.Size(), LastModified: info.ModTime()}, nil
}

// extractFiles hands every archived file to the store in one batch and
// fingerprints the results from their descriptors.
func (s *Synchronizer) extractFiles(ctx context.Context, inst loadout.Installation, tree *pathtree.Tree[loadout.ModFile]) ([]pathtree.Entry[diskstate.Entry], error) {
	if tree.Len() == 0 {
		return nil, nil
	}
	reqs := make([]archive.ExtractRequest, 0, tree.Len())
	paths := make([]gamepath.GamePath, 0, tree.Len())
	for p, f := range tree.All() {
		v, ok := f.(loadout.FromArchive)
		if !ok {
			return nil, errors.Newf(errors.ErrInternal, "%T cannot be extracted", f)
		}
		abs, err := inst.Resolve(p)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, archive.ExtractRequest{Hash: v.Hash, Destination: abs})
		paths = append(paths, p)
	}
	if err := s.archive.ExtractFiles(ctx, reqs); err != nil {
		return nil, err
	}

	out := make([]pathtree.Entry[diskstate.Entry], 0, len(reqs))
	for i, p := range paths {
		info, err := s.fs.Stat(reqs[i].Destination)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrExtract, "extracted file %s is missing", p)
		}
		f, _ := tree.Get(p)
		v := f.(loadout.FromArchive)
		out = append(out, pathtree.Entry[diskstate.Entry]{
			Path:  p,
			Value: diskstate.Entry{Hash: v.Hash, Size: v.Size, LastModified: info.ModTime()},
		})
	}
	s.log.Debug().Int("files", len(out)).Msg("Extracted files")
	return out, nil
}
