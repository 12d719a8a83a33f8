package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/modsync/pkg/diskstate"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/store"
)

const (
	categorySnapshots = "snapshots"
	categoryLoadouts  = "loadouts"
)

// Snapshot is the persisted aggregate of one loadout.
type Snapshot struct {
	// Sequence counts publications, starting at 1.
	Sequence uint64
	// Record is the store id of this snapshot; Parent is the previous one.
	Record string
	Parent string
	// Loadout is the current virtual model.
	Loadout *loadout.Loadout
	// Applied is the loadout revision DiskState pairs with.
	Applied *loadout.Loadout
	// DiskState is what was last written or observed on disk.
	DiskState *diskstate.State
	Created   time.Time
}

// Options bounds the publish retry loop.
type Options struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Case        gamepath.Case
}

// DefaultOptions are used for zero fields.
var DefaultOptions = Options{
	MaxAttempts: 8,
	BaseBackoff: 10 * time.Millisecond,
	MaxBackoff:  500 * time.Millisecond,
}

// DataStore reads and publishes snapshots.
type DataStore struct {
	store store.Store
	opts  Options
	log   zerolog.Logger
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// New returns a DataStore over s.
func New(s store.Store, opts Options) *DataStore {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultOptions.MaxAttempts
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = DefaultOptions.BaseBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = DefaultOptions.MaxBackoff
	}
	return &DataStore{
		store: s,
		opts:  opts,
		log:   logging.GetLogger("datastore"),
		now:   time.Now,
		sleep: sleepContext,
	}
}

func rootKind(id loadout.LoadoutID) string { return "loadout/" + string(id) }

func recordPrefix(id loadout.LoadoutID) string { return string(id) + "/" }

// Current returns the snapshot the root of id points at.
func (d *DataStore) Current(ctx context.Context, id loadout.LoadoutID) (*Snapshot, error) {
	rec, ok, err := d.store.GetRoot(ctx, rootKind(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "loadout %s not found", id)
	}
	return d.load(ctx, rec)
}

func (d *DataStore) load(ctx context.Context, rec string) (*Snapshot, error) {
	data, err := d.store.Get(ctx, categorySnapshots, rec)
	if err != nil {
		return nil, err
	}
	return d.decode(rec, data)
}

// Publish derives a new snapshot from the current one with fn and makes it
// current. fn receives nil when the loadout has no snapshot yet; it may run
// several times when other writers race, each time on a freshly read
// snapshot. On success the published snapshot is returned.
func (d *DataStore) Publish(ctx context.Context, id loadout.LoadoutID, fn func(cur *Snapshot) (*Snapshot, error)) (*Snapshot, error) {
	kind := rootKind(id)
	for attempt := 0; attempt < d.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := d.sleep(ctx, d.backoff(attempt)); err != nil {
				return nil, errors.Wrap(err, errors.ErrCancelled, "publish cancelled")
			}
		}

		prevRec, exists, err := d.store.GetRoot(ctx, kind)
		if err != nil {
			return nil, err
		}
		var cur *Snapshot
		if exists {
			if cur, err = d.load(ctx, prevRec); err != nil {
				return nil, err
			}
		}

		next, err := fn(cur)
		if err != nil {
			return nil, err
		}
		if next.Loadout == nil || next.Loadout.ID != id {
			return nil, errors.Newf(errors.ErrInternal, "snapshot for %s carries a different loadout", id)
		}

		next.Sequence = 1
		next.Parent = ""
		if cur != nil {
			next.Sequence = cur.Sequence + 1
			next.Parent = cur.Record
		}
		next.Record = fmt.Sprintf("%s%020d-%s", recordPrefix(id), next.Sequence, uuid.NewString()[:8])
		next.Created = d.now().UTC()

		data, err := d.encode(next)
		if err != nil {
			return nil, err
		}
		if err := d.store.Put(ctx, categorySnapshots, next.Record, data); err != nil {
			return nil, err
		}

		swapped, err := d.store.CompareAndSwapRoot(ctx, kind, prevRec, next.Record)
		if err != nil {
			return nil, err
		}
		if swapped {
			if !exists {
				if err := d.store.Put(ctx, categoryLoadouts, string(id), []byte(next.Loadout.Name)); err != nil {
					return nil, err
				}
			}
			d.log.Debug().
				Str("loadout", string(id)).
				Uint64("sequence", next.Sequence).
				Int("attempt", attempt+1).
				Msg("Published snapshot")
			return next, nil
		}
		d.log.Debug().Str("loadout", string(id)).Int("attempt", attempt+1).Msg("Root moved, retrying publish")
	}
	return nil, errors.Newf(errors.ErrRootContention, "gave up publishing loadout %s after %d attempts", id, d.opts.MaxAttempts).
		WithDetail("attempts", d.opts.MaxAttempts)
}

// Delete removes loadout id: its root pointer, its index entry and every
// snapshot record it published. check sees the current snapshot and may
// refuse the deletion by returning an error; like Publish it is called again
// when another writer moves the root in between.
func (d *DataStore) Delete(ctx context.Context, id loadout.LoadoutID, check func(cur *Snapshot) error) error {
	kind := rootKind(id)
	for attempt := 0; attempt < d.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := d.sleep(ctx, d.backoff(attempt)); err != nil {
				return errors.Wrap(err, errors.ErrCancelled, "delete cancelled")
			}
		}

		rec, ok, err := d.store.GetRoot(ctx, kind)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Newf(errors.ErrNotFound, "loadout %s not found", id)
		}
		cur, err := d.load(ctx, rec)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(cur); err != nil {
				return err
			}
		}

		deleted, err := d.store.DeleteRoot(ctx, kind, rec)
		if err != nil {
			return err
		}
		if !deleted {
			d.log.Debug().Str("loadout", string(id)).Int("attempt", attempt+1).Msg("Root moved, retrying delete")
			continue
		}
		return d.purge(ctx, id)
	}
	return errors.Newf(errors.ErrRootContention, "gave up deleting loadout %s after %d attempts", id, d.opts.MaxAttempts).
		WithDetail("attempts", d.opts.MaxAttempts)
}

// purge drops the records of a loadout whose root is already gone.
func (d *DataStore) purge(ctx context.Context, id loadout.LoadoutID) error {
	if err := d.store.Delete(ctx, categoryLoadouts, string(id)); err != nil {
		return err
	}
	recs, err := d.store.Scan(ctx, categorySnapshots, recordPrefix(id))
	if err != nil {
		return err
	}
	for _, r := range recs {
		if err := d.store.Delete(ctx, categorySnapshots, r.ID); err != nil {
			return err
		}
	}
	d.log.Debug().Str("loadout", string(id)).Int("records", len(recs)).Msg("Deleted loadout")
	return nil
}

// backoff returns base * 2^(attempt-1), capped at MaxBackoff.
func (d *DataStore) backoff(attempt int) time.Duration {
	delay := d.opts.BaseBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= d.opts.MaxBackoff {
			return d.opts.MaxBackoff
		}
	}
	return min(delay, d.opts.MaxBackoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// History returns the published snapshots of id, oldest first. Records
// written by publishers that lost the root race are not included.
func (d *DataStore) History(ctx context.Context, id loadout.LoadoutID) ([]*Snapshot, error) {
	head, ok, err := d.store.GetRoot(ctx, rootKind(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "loadout %s not found", id)
	}

	recs, err := d.store.Scan(ctx, categorySnapshots, recordPrefix(id))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Snapshot, len(recs))
	for _, r := range recs {
		s, err := d.decode(r.ID, r.Value)
		if err != nil {
			return nil, err
		}
		byID[r.ID] = s
	}

	var chain []*Snapshot
	for rec := head; rec != ""; {
		s, ok := byID[rec]
		if !ok {
			return nil, errors.Newf(errors.ErrStoreRead, "snapshot %s of loadout %s is missing", rec, id)
		}
		chain = append(chain, s)
		rec = s.Parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// List returns the current snapshot of every known loadout, ordered by id.
// Index entries left behind by an interrupted Delete are skipped.
func (d *DataStore) List(ctx context.Context) ([]*Snapshot, error) {
	recs, err := d.store.Scan(ctx, categoryLoadouts, "")
	if err != nil {
		return nil, err
	}
	out := make([]*Snapshot, 0, len(recs))
	for _, r := range recs {
		s, err := d.Current(ctx, loadout.LoadoutID(r.ID))
		if errors.IsErrorCode(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Find resolves a loadout by id or, failing that, by name.
func (d *DataStore) Find(ctx context.Context, ref string) (*Snapshot, error) {
	if s, err := d.Current(ctx, loadout.LoadoutID(ref)); err == nil {
		return s, nil
	} else if !errors.IsErrorCode(err, errors.ErrNotFound) {
		return nil, err
	}
	all, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	var found *Snapshot
	for _, s := range all {
		if s.Loadout.Name == ref {
			if found != nil {
				return nil, errors.Newf(errors.ErrInvalidInput, "loadout name %q is ambiguous", ref)
			}
			found = s
		}
	}
	if found == nil {
		return nil, errors.Newf(errors.ErrNotFound, "loadout %q not found", ref)
	}
	return found, nil
}

type snapshotRecord struct {
	Sequence  uint64           `json:"sequence"`
	Parent    string           `json:"parent,omitempty"`
	Loadout   *loadout.Loadout `json:"loadout"`
	Applied   *loadout.Loadout `json:"applied,omitempty"`
	DiskState json.RawMessage  `json:"disk_state,omitempty"`
	Created   time.Time        `json:"created"`
}

func (d *DataStore) encode(s *Snapshot) ([]byte, error) {
	rec := snapshotRecord{
		Sequence: s.Sequence,
		Parent:   s.Parent,
		Loadout:  s.Loadout,
		Applied:  s.Applied,
		Created:  s.Created,
	}
	if s.DiskState != nil {
		ds, err := diskstate.Marshal(s.DiskState)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrStoreWrite, "encode disk state")
		}
		rec.DiskState = ds
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStoreWrite, "encode snapshot")
	}
	return data, nil
}

func (d *DataStore) decode(id string, data []byte) (*Snapshot, error) {
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreRead, "decode snapshot %s", id)
	}
	s := &Snapshot{
		Sequence: rec.Sequence,
		Record:   id,
		Parent:   rec.Parent,
		Loadout:  rec.Loadout,
		Applied:  rec.Applied,
		Created:  rec.Created,
	}
	if len(rec.DiskState) > 0 {
		ds, err := diskstate.Unmarshal(rec.DiskState, d.opts.Case)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrStoreRead, "decode disk state of %s", id)
		}
		s.DiskState = ds
	}
	return s, nil
}
