package synchronizer

import (
	"context"
	"strings"

	"github.com/arthur-debert/modsync/pkg/datastore"
	"github.com/arthur-debert/modsync/pkg/diskstate"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/logging"
)

// ResetToOriginal puts the installation of loadout id back to the files
// Manage found: everything but the "Game Files" mod is removed from disk
// and the originals are restored from the archive. The loadout itself is
// kept as a pending edit, so a later Apply deploys it again. Drift refuses
// the reset like any apply.
func (s *Synchronizer) ResetToOriginal(ctx context.Context, id loadout.LoadoutID) (*ApplyResult, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return failed(&ApplyResult{}, err)
	}
	defer unlock()

	defer logging.LogOperationStart(s.log.With().Str("loadout", string(id)).Logger(), "reset")()
	return s.resetLocked(ctx, id)
}

func (s *Synchronizer) resetLocked(ctx context.Context, id loadout.LoadoutID) (*ApplyResult, error) {
	snap, err := s.data.Current(ctx, id)
	if err != nil {
		return failed(&ApplyResult{}, err)
	}
	original, err := originalState(snap.Loadout)
	if err != nil {
		return failed(&ApplyResult{}, err)
	}
	pending := snap.Loadout.Clone()
	pending.Revision = original.Revision + 1

	res, err := s.applyLocked(ctx, original, pending)
	if err != nil {
		return res, err
	}
	s.log.Info().
		Str("loadout", string(id)).
		Int("restored", original.FileCount()).
		Msg("Reset installation to its original files")
	return res, nil
}

// originalState is the next revision of l holding only its game files.
func originalState(l *loadout.Loadout) (*loadout.Loadout, error) {
	out := l.Clone()
	out.Revision = l.Revision + 1
	out.Mods = nil
	for _, m := range l.Mods {
		if isGameFilesMod(m) {
			game := m.Clone()
			game.Enabled = true
			out.Mods = append(out.Mods, game)
		}
	}
	if len(out.Mods) == 0 {
		return nil, errors.Newf(errors.ErrNotFound, "loadout %s has no %q mod to reset to", l.Name, GameFilesMod)
	}
	return out, nil
}

func isGameFilesMod(m *loadout.Mod) bool {
	return m.Name == GameFilesMod && m.Category == "game"
}

// deployed reports whether l places anything beyond the original files.
func deployed(l *loadout.Loadout) bool {
	for _, m := range l.EnabledMods() {
		if !isGameFilesMod(m) && len(m.Files) > 0 {
			return true
		}
	}
	return false
}

// DeleteLoadout removes loadout id and its history from the store. Disk is
// not touched: a loadout whose applied revision still places mod files is
// refused with LOADOUT_ACTIVE unless force is set, since nothing would be
// left to record what those files are.
func (s *Synchronizer) DeleteLoadout(ctx context.Context, id loadout.LoadoutID, force bool) error {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()
	return s.deleteLocked(ctx, id, force)
}

func (s *Synchronizer) deleteLocked(ctx context.Context, id loadout.LoadoutID, force bool) error {
	err := s.data.Delete(ctx, id, func(cur *datastore.Snapshot) error {
		if force || cur.Applied == nil || !deployed(cur.Applied) {
			return nil
		}
		return errors.Newf(errors.ErrLoadoutActive,
			"loadout %s still has mod files on disk; reset it first", cur.Loadout.Name).
			WithDetail("loadout", string(id))
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("loadout", string(id)).Bool("force", force).Msg("Deleted loadout")
	return nil
}

// Unmanage stops tracking the installation of loadout id: it is reset to
// its original files and the loadout is deleted. The returned result is the
// reset's; when it fails the loadout is kept.
func (s *Synchronizer) Unmanage(ctx context.Context, id loadout.LoadoutID) (*ApplyResult, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return failed(&ApplyResult{}, err)
	}
	defer unlock()

	defer logging.LogOperationStart(s.log.With().Str("loadout", string(id)).Logger(), "unmanage")()
	res, err := s.resetLocked(ctx, id)
	if err != nil {
		return res, err
	}
	if err := s.deleteLocked(ctx, id, false); err != nil {
		return failed(res, err)
	}
	return res, nil
}

// CopyLoadout publishes a new loadout that starts as an exact copy of id:
// same mods and files, same applied revision and disk state, under a fresh
// id. An empty name becomes "<name> (copy)". Names are unique ignoring case.
func (s *Synchronizer) CopyLoadout(ctx context.Context, id loadout.LoadoutID, name string) (*datastore.Snapshot, error) {
	src, err := s.data.Current(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkPairing(src); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = src.Loadout.Name + " (copy)"
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

	newID := loadout.NewLoadoutID()
	relabel := func(l *loadout.Loadout) *loadout.Loadout {
		c := l.Clone()
		c.ID = newID
		c.Name = name
		return c
	}
	l := relabel(src.Loadout)
	applied := relabel(src.Applied)
	state := diskstate.New(newID, applied.Revision, src.DiskState.Tree)

	snap, err := s.data.Publish(ctx, newID, func(cur *datastore.Snapshot) (*datastore.Snapshot, error) {
		if cur != nil {
			return nil, errors.Newf(errors.ErrAlreadyExists, "loadout %s already exists", newID)
		}
		return &datastore.Snapshot{Loadout: l, Applied: applied, DiskState: state}, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("loadout", string(newID)).
		Str("from", string(id)).
		Str("name", name).
		Msg("Copied loadout")
	return snap, nil
}
