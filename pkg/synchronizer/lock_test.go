package synchronizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/errors"
)

func TestKeyedLock(t *testing.T) {
	ctx := context.Background()
	k := newKeyedLock()

	release, err := k.Lock(ctx, "a")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = k.Lock(waitCtx, "a")
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))

	// other loadouts are not blocked
	releaseB, err := k.Lock(ctx, "b")
	require.NoError(t, err)
	releaseB()

	acquired := make(chan struct{})
	go func() {
		r, err := k.Lock(ctx, "a")
		if err == nil {
			r()
		}
		close(acquired)
	}()
	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the lock")
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.slots)
}
