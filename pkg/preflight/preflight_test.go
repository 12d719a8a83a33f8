// pkg/preflight/preflight_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test free space checks against a stubbed volume

package preflight_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/preflight"
)

func fixed(free uint64) preflight.UsageFunc {
	return func(context.Context, string) (uint64, error) { return free, nil }
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		free    uint64
		reserve uint64
		need    int64
		wantErr bool
	}{
		{"enough", 1000, 0, 999, false},
		{"exact", 1000, 0, 1000, false},
		{"short", 1000, 0, 1001, true},
		{"reserve_counts", 1000, 100, 950, true},
		{"nothing_needed", 0, 100, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := preflight.WithUsage(tt.reserve, fixed(tt.free)).Check(ctx, "/game", tt.need)
			if tt.wantErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrNoSpace))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUsageFailure(t *testing.T) {
	d := preflight.WithUsage(0, func(context.Context, string) (uint64, error) {
		return 0, stderrors.New("no such volume")
	})
	err := d.Check(context.Background(), "/nowhere", 1)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileRead))
}

func TestSystemUsage(t *testing.T) {
	// the temp dir's volume always has room for one byte
	assert.NoError(t, preflight.New(0).Check(context.Background(), t.TempDir(), 1))
}
