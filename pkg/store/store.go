// Package store is the persistent key-value layer under modsync's
// datastore: records addressed by (category, id) with prefix scans, plus a
// table of root pointers updated by compare-and-swap.
package store

import (
	"context"
)

// Record is one stored value.
type Record struct {
	ID    string
	Value []byte
}

// Store is the persistence contract. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the value at (category, id) or an ErrNotFound error.
	Get(ctx context.Context, category, id string) ([]byte, error)
	// Put writes the value at (category, id), replacing any previous one.
	Put(ctx context.Context, category, id string, value []byte) error
	// Scan returns every record of category whose id starts with prefix,
	// ordered by id.
	Scan(ctx context.Context, category, prefix string) ([]Record, error)
	// GetRoot returns the id a root pointer names.
	GetRoot(ctx context.Context, kind string) (string, bool, error)
	// CompareAndSwapRoot points kind at next if it currently names prev. An
	// empty prev means the root must not exist yet.
	CompareAndSwapRoot(ctx context.Context, kind, prev, next string) (bool, error)
	// Delete removes the record at (category, id). Deleting a missing record
	// is not an error.
	Delete(ctx context.Context, category, id string) error
	// DeleteRoot removes the root pointer kind if it currently names prev.
	DeleteRoot(ctx context.Context, kind, prev string) (bool, error)
	Close() error
}

// prefixEnd returns the smallest string greater than every string with the
// given prefix, or "" when there is none.
func prefixEnd(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}
