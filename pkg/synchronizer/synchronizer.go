package synchronizer

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/modsync/pkg/archive"
	"github.com/arthur-debert/modsync/pkg/datastore"
	"github.com/arthur-debert/modsync/pkg/diskstate"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/indexer"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/pathtree"
	"github.com/arthur-debert/modsync/pkg/rules"
)

// DiskIndexer fingerprints the live files of an installation. Paths in hint
// or reported by tracked are indexed whatever the ignore patterns say.
type DiskIndexer interface {
	Index(ctx context.Context, inst loadout.Installation, hint *pathtree.Tree[diskstate.Entry], tracked indexer.Tracked) (*pathtree.Tree[diskstate.Entry], error)
}

// SpaceChecker verifies that a directory's volume can hold need more bytes.
type SpaceChecker interface {
	Check(ctx context.Context, dir string, need int64) error
}

// Options holds synchronizer policy.
type Options struct {
	Case gamepath.Case
	// Categories names the mod that receives new files found in a location
	// during ingest; DefaultCategory covers locations not listed.
	Categories      map[gamepath.LocationID]string
	DefaultCategory string
	// PruneEmptyMods removes mods that lose their last file during ingest.
	PruneEmptyMods bool
	// CleanEmptyDirectories removes directories emptied by deletions.
	CleanEmptyDirectories bool
	// CheckFreeSpace runs the SpaceChecker before executing a plan.
	CheckFreeSpace bool
	// BackupFiles copies originals found by Manage and files synthesized by
	// Ingest into the archive store.
	BackupFiles bool
}

// DefaultCategories maps the well-known locations to their override mods.
var DefaultCategories = map[gamepath.LocationID]string{
	gamepath.Game:        "overrides",
	gamepath.Saves:       "saves",
	gamepath.Preferences: "preferences",
}

// Deps are the collaborators of a Synchronizer. Rules, Changes, Generators
// and Space are optional.
type Deps struct {
	FS         afero.Fs
	Archive    archive.Store
	Indexer    DiskIndexer
	DataStore  *datastore.DataStore
	Rules      rules.Provider
	Changes    ChangeHandler
	Generators loadout.Generators
	Space      SpaceChecker
}

// Synchronizer runs apply, ingest and manage for loadouts.
type Synchronizer struct {
	fs         afero.Fs
	archive    archive.Store
	indexer    DiskIndexer
	data       *datastore.DataStore
	rules      rules.Provider
	changes    ChangeHandler
	generators loadout.Generators
	space      SpaceChecker
	opts       Options
	locks      *keyedLock
	log        zerolog.Logger
}

// New wires a Synchronizer.
func New(deps Deps, opts Options) (*Synchronizer, error) {
	switch {
	case deps.FS == nil:
		return nil, errors.New(errors.ErrInvalidInput, "synchronizer needs a filesystem")
	case deps.Archive == nil:
		return nil, errors.New(errors.ErrInvalidInput, "synchronizer needs an archive store")
	case deps.Indexer == nil:
		return nil, errors.New(errors.ErrInvalidInput, "synchronizer needs an indexer")
	case deps.DataStore == nil:
		return nil, errors.New(errors.ErrInvalidInput, "synchronizer needs a datastore")
	}
	if deps.Rules == nil {
		deps.Rules = rules.Static{}
	}
	if deps.Changes == nil {
		deps.Changes = DefaultChangeHandler{}
	}
	if deps.Generators == nil {
		deps.Generators = loadout.Generators{}
	}
	if opts.Categories == nil {
		opts.Categories = DefaultCategories
	}
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = "overrides"
	}
	return &Synchronizer{
		fs:         deps.FS,
		archive:    deps.Archive,
		indexer:    deps.Indexer,
		data:       deps.DataStore,
		rules:      deps.Rules,
		changes:    deps.Changes,
		generators: deps.Generators,
		space:      deps.Space,
		opts:       opts,
		locks:      newKeyedLock(),
		log:        logging.GetLogger("synchronizer"),
	}, nil
}

// Case returns the path comparison rule in use.
func (s *Synchronizer) Case() gamepath.Case { return s.opts.Case }

func (s *Synchronizer) treeOpts() pathtree.Option { return pathtree.WithCase(s.opts.Case) }

// categoryFor names the mod that receives new files in loc.
func (s *Synchronizer) categoryFor(loc gamepath.LocationID) string {
	if c, ok := s.opts.Categories[loc]; ok {
		return c
	}
	return s.opts.DefaultCategory
}

// checkPairing rejects snapshots whose DiskState was not produced by their
// Applied loadout revision.
func checkPairing(snap *datastore.Snapshot) error {
	if snap.Applied == nil || snap.DiskState == nil {
		return errors.Newf(errors.ErrStaleState, "loadout %s has no applied disk state", snap.Loadout.ID)
	}
	if snap.DiskState.Loadout != snap.Loadout.ID || snap.Applied.ID != snap.Loadout.ID {
		return errors.Newf(errors.ErrStaleState, "disk state of %s belongs to loadout %s", snap.Loadout.ID, snap.DiskState.Loadout)
	}
	if snap.DiskState.Revision != snap.Applied.Revision {
		return errors.Newf(errors.ErrStaleState,
			"disk state of %s pairs with revision %d, applied revision is %d",
			snap.Loadout.ID, snap.DiskState.Revision, snap.Applied.Revision)
	}
	return nil
}
