// Package preflight checks that a target volume can hold the files a plan
// is about to write.
package preflight

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/arthur-debert/modsync/pkg/errors"
)

// UsageFunc reports the free bytes of the volume holding path.
type UsageFunc func(ctx context.Context, path string) (uint64, error)

// DiskSpace checks free space with gopsutil, keeping Reserve bytes free on
// top of what is needed.
type DiskSpace struct {
	Reserve uint64
	usage   UsageFunc
}

// New returns a checker reading volume usage from the OS.
func New(reserve uint64) *DiskSpace {
	return &DiskSpace{Reserve: reserve, usage: systemFree}
}

// WithUsage returns a checker using fn for volume usage.
func WithUsage(reserve uint64, fn UsageFunc) *DiskSpace {
	return &DiskSpace{Reserve: reserve, usage: fn}
}

func systemFree(ctx context.Context, path string) (uint64, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, err
	}
	return u.Free, nil
}

// Check fails with NO_SPACE when dir's volume has less than need plus the
// reserve available.
func (d *DiskSpace) Check(ctx context.Context, dir string, need int64) error {
	if need <= 0 {
		return nil
	}
	free, err := d.usage(ctx, dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "read free space of %s", dir)
	}
	want := uint64(need) + d.Reserve
	if free < want {
		return errors.Newf(errors.ErrNoSpace, "%s has %s free, %s needed",
			dir, humanize.IBytes(free), humanize.IBytes(want)).
			WithDetail("free", free).
			WithDetail("need", want)
	}
	return nil
}
