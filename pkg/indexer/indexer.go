// Package indexer fingerprints the live files of an installation.
package indexer

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/modsync/pkg/diskstate"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/hashing"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/pathtree"
)

// Options tunes indexing.
type Options struct {
	// Workers bounds concurrent hashing; zero means GOMAXPROCS.
	Workers int
	// TrustMtime reuses a hinted hash when size and mtime are unchanged.
	TrustMtime bool
	// Ignore holds patterns matched against "{Location}/path", the relative
	// path and the file name.
	Ignore []string
	Case   gamepath.Case
}

// Indexer walks installation locations on a filesystem.
type Indexer struct {
	fs   afero.Fs
	opts Options
	log  zerolog.Logger
}

// New returns an Indexer over fs.
func New(fs afero.Fs, opts Options) *Indexer {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Indexer{fs: fs, opts: opts, log: logging.GetLogger("indexer")}
}

// Tracked reports paths that must be indexed even when an ignore pattern
// matches them, such as files a loadout places.
type Tracked func(gamepath.GamePath) bool

type job struct {
	path gamepath.GamePath
	abs  string
	info os.FileInfo
}

// Index fingerprints every regular file under the installation's locations.
// A location whose root does not exist contributes nothing. hint, when not
// nil, is a previous state whose hashes may be reused. Ignore patterns never
// hide a path recorded in hint or one tracked reports.
func (ix *Indexer) Index(ctx context.Context, inst loadout.Installation, hint *pathtree.Tree[diskstate.Entry], tracked Tracked) (*pathtree.Tree[diskstate.Entry], error) {
	done := logging.LogOperationStart(ix.log, "index")
	defer done()

	keep := func(p gamepath.GamePath) bool {
		return (hint != nil && hint.Has(p)) || (tracked != nil && tracked(p))
	}
	jobs, err := ix.collect(ctx, inst, keep)
	if err != nil {
		return nil, err
	}

	results := make([]pathtree.Entry[diskstate.Entry], len(jobs))
	var reused int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.Workers)
	for i, j := range jobs {
		if gctx.Err() != nil {
			break
		}
		if ix.opts.TrustMtime && hint != nil {
			if prev, ok := hint.Get(j.path); ok && prev.Size == j.info.Size() && prev.LastModified.Equal(j.info.ModTime()) {
				results[i] = pathtree.Entry[diskstate.Entry]{Path: j.path, Value: prev}
				reused++
				continue
			}
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			h, size, err := hashing.HashFile(ix.fs, j.abs)
			if err != nil {
				return errors.Wrapf(err, errors.ErrIndex, "index %s", j.path)
			}
			results[i] = pathtree.Entry[diskstate.Entry]{
				Path: j.path,
				Value: diskstate.Entry{
					Hash:         h,
					Size:         size,
					LastModified: j.info.ModTime(),
				},
			}
			ix.log.Trace().Str("path", j.path.String()).Str("hash", h.String()).Msg("Hashed file")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, cancelled(ctx, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled(ctx, err)
	}

	ix.log.Debug().
		Int("files", len(jobs)).
		Int64("reused", reused).
		Msg("Indexed installation")
	return pathtree.New(results, pathtree.WithCase(ix.opts.Case)), nil
}

func (ix *Indexer) collect(ctx context.Context, inst loadout.Installation, keep Tracked) ([]job, error) {
	roots := make(map[string]gamepath.LocationID, len(inst.Locations))
	for loc, root := range inst.Locations {
		roots[filepath.Clean(root)] = loc
	}

	var jobs []job
	for _, loc := range inst.LocationIDs() {
		root := filepath.Clean(inst.Locations[loc])
		if _, err := ix.fs.Stat(root); err != nil {
			if os.IsNotExist(err) {
				ix.log.Debug().Str("location", string(loc)).Str("root", root).Msg("Location root missing, skipping")
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrIndex, "stat location %s", loc)
		}

		err := afero.Walk(ix.fs, root, func(abs string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if info.IsDir() {
				// nested locations are indexed under their own id
				if other, ok := roots[filepath.Clean(abs)]; ok && other != loc {
					return filepath.SkipDir
				}
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(root, abs)
			if err != nil {
				return err
			}
			p, err := gamepath.New(loc, filepath.ToSlash(rel))
			if err != nil {
				return err
			}
			if ix.ignored(p) && !keep(p) {
				ix.log.Trace().Str("path", p.String()).Msg("Ignoring file")
				return nil
			}
			jobs = append(jobs, job{path: p, abs: abs, info: info})
			return nil
		})
		if err != nil {
			return nil, cancelled(ctx, errors.Wrapf(err, errors.ErrIndex, "walk location %s", loc))
		}
	}
	return jobs, nil
}

func (ix *Indexer) ignored(p gamepath.GamePath) bool {
	for _, pattern := range ix.opts.Ignore {
		for _, candidate := range []string{p.String(), string(p.Path), p.Path.Name()} {
			if matched, _ := path.Match(pattern, candidate); matched {
				return true
			}
		}
	}
	return false
}

// Ignored reports whether p is excluded by the configured patterns.
func (ix *Indexer) Ignored(p gamepath.GamePath) bool { return ix.ignored(p) }

func cancelled(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), errors.ErrCancelled, "indexing cancelled")
	}
	return err
}
