package synchronizer

import (
	"context"
	stderrors "errors"

	"github.com/arthur-debert/modsync/pkg/datastore"
	"github.com/arthur-debert/modsync/pkg/diskstate"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/logging"
)

// Outcome tells apart the ways an apply or ingest can end.
type Outcome string

const (
	OutcomeApplied     Outcome = "applied"
	OutcomeIngested    Outcome = "ingested"
	OutcomeNeedsIngest Outcome = "needs_ingest"
	OutcomeFailed      Outcome = "failed"
)

// ApplyResult describes one apply. It is returned even when the apply fails;
// Plan is set once planning got that far.
type ApplyResult struct {
	Outcome   Outcome
	Plan      *Plan
	DiskState *diskstate.State
	Snapshot  *datastore.Snapshot
	Drift     []DriftEntry
	Err       error
}

func failed(res *ApplyResult, err error) (*ApplyResult, error) {
	res.Err = err
	var drift *DriftError
	if stderrors.As(err, &drift) {
		res.Outcome = OutcomeNeedsIngest
		res.Drift = drift.Entries
	} else {
		res.Outcome = OutcomeFailed
	}
	return res, err
}

// Apply projects l onto its installation. l must be the current loadout
// revision of its snapshot or a newer in-memory edit of it. When any live
// file drifted from the recorded disk state nothing is touched and the
// result carries OutcomeNeedsIngest; the recorded state only changes after
// the whole plan has executed.
func (s *Synchronizer) Apply(ctx context.Context, l *loadout.Loadout) (*ApplyResult, error) {
	unlock, err := s.locks.Lock(ctx, l.ID)
	if err != nil {
		return failed(&ApplyResult{}, err)
	}
	defer unlock()

	defer logging.LogOperationStart(s.log.With().Str("loadout", string(l.ID)).Logger(), "apply")()
	return s.applyLocked(ctx, l, nil)
}

// applyLocked runs an apply of l with the loadout lock held. When pending is
// set it becomes the published virtual loadout instead of l, leaving l as
// the applied revision only.
func (s *Synchronizer) applyLocked(ctx context.Context, l, pending *loadout.Loadout) (*ApplyResult, error) {
	res := &ApplyResult{}

	snap, plan, err := s.plan(ctx, l)
	res.Plan = plan
	if err != nil {
		return failed(res, err)
	}

	if err := s.Preflight(ctx, l, plan); err != nil {
		return failed(res, err)
	}

	state := snap.DiskState
	if !plan.Empty() {
		if state, err = s.ExecutePlan(ctx, l, plan); err != nil {
			return failed(res, err)
		}
	} else {
		// nothing on disk changed; pair the recorded entries with l
		state = diskstate.New(l.ID, l.Revision, plan.Retained)
	}
	res.DiskState = state

	applied := snap.Applied.Revision
	published, err := s.data.Publish(ctx, l.ID, func(cur *datastore.Snapshot) (*datastore.Snapshot, error) {
		if cur == nil || cur.Applied == nil || cur.Applied.Revision != applied {
			return nil, errors.Newf(errors.ErrStaleState, "loadout %s was applied by someone else meanwhile", l.ID)
		}
		next := &datastore.Snapshot{Loadout: l, Applied: l, DiskState: state}
		if pending != nil {
			next.Loadout = pending
		}
		if cur.Loadout.Revision > next.Loadout.Revision {
			next.Loadout = cur.Loadout
		}
		return next, nil
	})
	if err != nil {
		return failed(res, err)
	}
	res.Snapshot = published
	res.Outcome = OutcomeApplied

	s.log.Info().
		Str("loadout", string(l.ID)).
		Uint64("revision", l.Revision).
		Uint64("sequence", published.Sequence).
		Msg("Applied loadout")
	return res, nil
}

// Preview computes the plan Apply would execute without touching disk. A
// *DriftError is returned alongside the plan when the directory drifted.
func (s *Synchronizer) Preview(ctx context.Context, l *loadout.Loadout) (*Plan, error) {
	unlock, err := s.locks.Lock(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	_, plan, err := s.plan(ctx, l)
	return plan, err
}

func (s *Synchronizer) plan(ctx context.Context, l *loadout.Loadout) (*datastore.Snapshot, *Plan, error) {
	snap, err := s.data.Current(ctx, l.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := checkPairing(snap); err != nil {
		return nil, nil, err
	}
	if snap.Loadout.Revision > l.Revision {
		return nil, nil, errors.Newf(errors.ErrStaleState,
			"loadout %s is at revision %d, cannot apply revision %d", l.ID, snap.Loadout.Revision, l.Revision)
	}

	tree, _, err := s.LoadoutToFileTree(ctx, l)
	if err != nil {
		return nil, nil, err
	}
	live, err := s.indexer.Index(ctx, l.Installation, snap.DiskState.Tree, tree.Tree.Has)
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.PlanApply(ctx, l, tree, snap.DiskState, live)
	return snap, plan, err
}
