package synchronizer

import (
	"context"
	"sync"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/loadout"
)

// keyedLock serializes operations per loadout id. Waiting honors ctx.
type keyedLock struct {
	mu    sync.Mutex
	slots map[loadout.LoadoutID]*slot
}

type slot struct {
	sem  chan struct{}
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{slots: make(map[loadout.LoadoutID]*slot)}
}

// Lock blocks until id is free and returns the release function.
func (k *keyedLock) Lock(ctx context.Context, id loadout.LoadoutID) (func(), error) {
	k.mu.Lock()
	sl, ok := k.slots[id]
	if !ok {
		sl = &slot{sem: make(chan struct{}, 1)}
		k.slots[id] = sl
	}
	sl.refs++
	k.mu.Unlock()

	select {
	case sl.sem <- struct{}{}:
		return func() {
			<-sl.sem
			k.release(id, sl)
		}, nil
	case <-ctx.Done():
		k.release(id, sl)
		return nil, errors.Wrapf(ctx.Err(), errors.ErrCancelled, "waiting for loadout %s", id)
	}
}

func (k *keyedLock) release(id loadout.LoadoutID, sl *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	sl.refs--
	if sl.refs == 0 {
		delete(k.slots, id)
	}
}
