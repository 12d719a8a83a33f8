// Package diskstate records what modsync last wrote or observed on disk for
// a loadout: one fingerprint (hash, size, mtime) per GamePath.
//
// The persisted form is an ordered list of
// (location, path, hash, size, mtime ticks) tuples. It is the one format kept
// bit-stable across releases, since drift detection after a restart depends
// on reading it back exactly.
package diskstate

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/hashing"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/pathtree"
)

// Entry fingerprints one file.
type Entry struct {
	Hash         hashing.Hash
	Size         int64
	LastModified time.Time
}

// SameContent compares hash and size, ignoring mtime.
func (e Entry) SameContent(o Entry) bool {
	return e.Hash == o.Hash && e.Size == o.Size
}

// State is a DiskState: the fingerprints of one loadout's files, paired with
// the loadout revision that produced them.
type State struct {
	Loadout  loadout.LoadoutID
	Revision uint64
	Tree     *pathtree.Tree[Entry]
}

// New wraps a tree.
func New(id loadout.LoadoutID, revision uint64, tree *pathtree.Tree[Entry]) *State {
	if tree == nil {
		tree = pathtree.Empty[Entry]()
	}
	return &State{Loadout: id, Revision: revision, Tree: tree}
}

// Empty returns a state without entries.
func Empty(id loadout.LoadoutID, revision uint64, cs gamepath.Case) *State {
	return New(id, revision, pathtree.Empty[Entry](pathtree.WithCase(cs)))
}

// Len returns the number of recorded files.
func (s *State) Len() int { return s.Tree.Len() }

// Get returns the entry at p.
func (s *State) Get(p gamepath.GamePath) (Entry, bool) { return s.Tree.Get(p) }

// ContentEqual reports whether both states record the same paths with the
// same hash and size. Pairing and mtimes are not compared.
func (s *State) ContentEqual(o *State) bool {
	if s.Len() != o.Len() {
		return false
	}
	for p, e := range s.Tree.All() {
		other, ok := o.Tree.Get(p)
		if !ok || !e.SameContent(other) {
			return false
		}
	}
	return true
}

// TotalSize sums the sizes of all entries.
func (s *State) TotalSize() int64 {
	var n int64
	for _, e := range s.Tree.All() {
		n += e.Size
	}
	return n
}

type document struct {
	Loadout  loadout.LoadoutID `json:"loadout"`
	Revision uint64            `json:"revision"`
	Entries  []tuple           `json:"entries"`
}

// tuple encodes as [location, path, hash, size, ticks].
type tuple struct {
	Location gamepath.LocationID
	Path     gamepath.RelativePath
	Hash     hashing.Hash
	Size     int64
	Ticks    int64
}

func (t tuple) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{string(t.Location), string(t.Path), t.Hash.String(), t.Size, t.Ticks})
}

func (t *tuple) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 5 {
		return errors.Newf(errors.ErrInvalidInput, "disk state entry has %d fields, want 5", len(raw))
	}
	var (
		loc, rel, hash string
	)
	for i, dst := range []any{&loc, &rel, &hash, &t.Size, &t.Ticks} {
		if err := json.Unmarshal(raw[i], dst); err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "disk state entry field %d", i)
		}
	}
	h, err := hashing.ParseHash(hash)
	if err != nil {
		return err
	}
	p, err := gamepath.New(gamepath.LocationID(loc), rel)
	if err != nil {
		return err
	}
	t.Location, t.Path, t.Hash = p.Location, p.Path, h
	return nil
}

// Marshal encodes s. Entries are sorted by location then byte-wise path, so
// equal states always produce identical bytes.
func Marshal(s *State) ([]byte, error) {
	doc := document{
		Loadout:  s.Loadout,
		Revision: s.Revision,
		Entries:  make([]tuple, 0, s.Len()),
	}
	for p, e := range s.Tree.All() {
		doc.Entries = append(doc.Entries, tuple{
			Location: p.Location,
			Path:     p.Path,
			Hash:     e.Hash,
			Size:     e.Size,
			Ticks:    e.LastModified.UnixNano(),
		})
	}
	slices.SortFunc(doc.Entries, func(a, b tuple) int {
		if c := strings.Compare(string(a.Location), string(b.Location)); c != 0 {
			return c
		}
		return strings.Compare(string(a.Path), string(b.Path))
	})
	return json.Marshal(doc)
}

// Unmarshal decodes the Marshal form, building the tree under cs.
func Unmarshal(data []byte, cs gamepath.Case) (*State, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "decode disk state")
	}
	entries := make([]pathtree.Entry[Entry], len(doc.Entries))
	for i, t := range doc.Entries {
		entries[i] = pathtree.Entry[Entry]{
			Path: gamepath.GamePath{Location: t.Location, Path: t.Path},
			Value: Entry{
				Hash:         t.Hash,
				Size:         t.Size,
				LastModified: time.Unix(0, t.Ticks).UTC(),
			},
		}
	}
	return New(doc.Loadout, doc.Revision, pathtree.New(entries, pathtree.WithCase(cs))), nil
}
