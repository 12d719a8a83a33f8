package synchronizer

import (
	"context"
	"strings"

	"github.com/arthur-debert/modsync/pkg/archive"
	"github.com/arthur-debert/modsync/pkg/datastore"
	"github.com/arthur-debert/modsync/pkg/diskstate"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/sorter"
)

// GameFilesMod is the name of the mod holding an installation's original
// files.
const GameFilesMod = "Game Files"

// Manage starts tracking an installation: every file already present
// becomes a GameFile of a "Game Files" mod sorted first, and the new
// loadout is published at revision 1 together with the disk state it was
// built from.
func (s *Synchronizer) Manage(ctx context.Context, name string, inst loadout.Installation) (*datastore.Snapshot, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(errors.ErrInvalidInput, "loadout name must not be empty")
	}
	if len(inst.Locations) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "installation has no locations")
	}
	existing, err := s.data.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, snap := range existing {
		if strings.EqualFold(snap.Loadout.Name, name) {
			return nil, errors.Newf(errors.ErrAlreadyExists, "a loadout named %q already exists", name).
				WithDetail("loadout", string(snap.Loadout.ID))
		}
	}
	defer logging.LogOperationStart(s.log, "manage")()

	live, err := s.indexer.Index(ctx, inst, nil, nil)
	if err != nil {
		return nil, err
	}

	l := loadout.New(name, inst)
	game := loadout.NewMod(GameFilesMod, "game")
	game.SortRules = []sorter.Rule[loadout.ModID]{sorter.AtFirst[loadout.ModID]()}
	var reqs []archive.BackupRequest
	for p, e := range live.All() {
		game.Add(loadout.GameFile{ID: loadout.NewFileID(), Path: p, Hash: e.Hash, Size: e.Size})
		if s.opts.BackupFiles {
			abs, err := inst.Resolve(p)
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, archive.BackupRequest{Hash: e.Hash, Source: abs})
		}
	}
	l.Mods = append(l.Mods, game)

	if len(reqs) > 0 {
		if err := s.archive.Backup(ctx, reqs); err != nil {
			return nil, err
		}
	}

	state := diskstate.New(l.ID, l.Revision, live)
	snap, err := s.data.Publish(ctx, l.ID, func(cur *datastore.Snapshot) (*datastore.Snapshot, error) {
		if cur != nil {
			return nil, errors.Newf(errors.ErrAlreadyExists, "loadout %s already exists", l.ID)
		}
		return &datastore.Snapshot{Loadout: l, Applied: l, DiskState: state}, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("loadout", string(l.ID)).
		Str("name", name).
		Int("files", live.Len()).
		Msg("Managing installation")
	return snap, nil
}

// Update publishes an edited virtual loadout without touching disk. fn
// receives the current loadout and returns its next revision; the applied
// revision and its disk state are carried over.
func (s *Synchronizer) Update(ctx context.Context, id loadout.LoadoutID, fn func(*loadout.Loadout) (*loadout.Loadout, error)) (*datastore.Snapshot, error) {
	return s.data.Publish(ctx, id, func(cur *datastore.Snapshot) (*datastore.Snapshot, error) {
		if cur == nil {
			return nil, errors.Newf(errors.ErrNotFound, "loadout %s not found", id)
		}
		next, err := fn(cur.Loadout)
		if err != nil {
			return nil, err
		}
		if next.ID != id {
			return nil, errors.Newf(errors.ErrInvalidInput, "update of %s returned loadout %s", id, next.ID)
		}
		if next.Revision <= cur.Loadout.Revision {
			return nil, errors.Newf(errors.ErrStaleState,
				"update of %s must move past revision %d", id, cur.Loadout.Revision)
		}
		return &datastore.Snapshot{Loadout: next, Applied: cur.Applied, DiskState: cur.DiskState}, nil
	})
}
