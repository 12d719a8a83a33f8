// Package pathtree provides Tree, an immutable multi-root tree keyed by
// gamepath.GamePath.
//
// A Tree is built once from a flat list of entries and never mutated: every
// change in modsync produces a new tree. Entries are grouped by location
// first, and each location is stored as an arena of nodes addressed by index,
// so readers can share a tree across goroutines without locking.
//
// Duplicate paths are resolved last-writer-wins: when the input names the
// same path twice (under the tree's case rule), the later value silently
// replaces the earlier one, exactly like assigning into a map.
package pathtree

import (
	"iter"
	"slices"
	"strings"

	"github.com/arthur-debert/modsync/pkg/gamepath"
)

// Entry is one (path, value) input or output pair.
type Entry[T any] struct {
	Path  gamepath.GamePath
	Value T
}

type options struct {
	cs gamepath.Case
}

// Option configures tree construction.
type Option func(*options)

// WithCase selects how paths are compared; the default is case-sensitive.
func WithCase(c gamepath.Case) Option {
	return func(o *options) { o.cs = c }
}

// Tree maps GamePaths to values.
type Tree[T any] struct {
	cs        gamepath.Case
	locations map[gamepath.LocationID]*Subtree[T]
	order     []gamepath.LocationID
	size      int
}

// New builds a tree from entries.
func New[T any](entries []Entry[T], opts ...Option) *Tree[T] {
	return Build(func(yield func(gamepath.GamePath, T) bool) {
		for _, e := range entries {
			if !yield(e.Path, e.Value) {
				return
			}
		}
	}, opts...)
}

// Build builds a tree from a sequence of (path, value) pairs.
func Build[T any](seq iter.Seq2[gamepath.GamePath, T], opts ...Option) *Tree[T] {
	o := options{cs: gamepath.CaseSensitive}
	for _, opt := range opts {
		opt(&o)
	}

	grouped := make(map[gamepath.LocationID][]Entry[T])
	for p, v := range seq {
		grouped[p.Location] = append(grouped[p.Location], Entry[T]{Path: p, Value: v})
	}

	t := &Tree[T]{
		cs:        o.cs,
		locations: make(map[gamepath.LocationID]*Subtree[T], len(grouped)),
	}
	for loc, list := range grouped {
		sub := buildSubtree(loc, o.cs, list)
		t.locations[loc] = sub
		t.order = append(t.order, loc)
		t.size += sub.files
	}
	slices.Sort(t.order)
	return t
}

// Empty returns a tree with no entries.
func Empty[T any](opts ...Option) *Tree[T] {
	return New[T](nil, opts...)
}

// Case returns the comparison rule the tree was built with.
func (t *Tree[T]) Case() gamepath.Case { return t.cs }

// Len returns the number of paths holding a value.
func (t *Tree[T]) Len() int { return t.size }

// Locations returns the locations present in the tree, sorted.
func (t *Tree[T]) Locations() []gamepath.LocationID {
	return slices.Clone(t.order)
}

// Location returns the subtree of loc. A location absent from the input
// yields an empty subtree, never nil.
func (t *Tree[T]) Location(loc gamepath.LocationID) *Subtree[T] {
	if sub, ok := t.locations[loc]; ok {
		return sub
	}
	return emptySubtree[T](loc, t.cs)
}

// Get returns the value stored at p.
func (t *Tree[T]) Get(p gamepath.GamePath) (T, bool) {
	return t.Location(p.Location).Get(p.Path)
}

// Has reports whether p holds a value.
func (t *Tree[T]) Has(p gamepath.GamePath) bool {
	_, ok := t.Get(p)
	return ok
}

// HasDescendants reports whether any value lives strictly below p.
func (t *Tree[T]) HasDescendants(p gamepath.GamePath) bool {
	return t.Location(p.Location).HasDescendants(p.Path)
}

// All yields every (path, value) pair: locations in sorted order, each
// location depth-first pre-order with siblings in folded-name order.
func (t *Tree[T]) All() iter.Seq2[gamepath.GamePath, T] {
	return func(yield func(gamepath.GamePath, T) bool) {
		for _, loc := range t.order {
			for p, v := range t.locations[loc].All() {
				if !yield(p, v) {
					return
				}
			}
		}
	}
}

// Entries collects All into a slice.
func (t *Tree[T]) Entries() []Entry[T] {
	out := make([]Entry[T], 0, t.size)
	for p, v := range t.All() {
		out = append(out, Entry[T]{Path: p, Value: v})
	}
	return out
}

// Map projects every value through f, keeping paths and structure unchanged.
func Map[T, U any](t *Tree[T], f func(gamepath.GamePath, T) U) *Tree[U] {
	out := &Tree[U]{
		cs:        t.cs,
		locations: make(map[gamepath.LocationID]*Subtree[U], len(t.locations)),
		order:     slices.Clone(t.order),
		size:      t.size,
	}
	for loc, sub := range t.locations {
		nodes := make([]node[U], len(sub.nodes))
		for i, n := range sub.nodes {
			nodes[i] = node[U]{
				name:     n.name,
				path:     n.path,
				parent:   n.parent,
				children: n.children,
				hasValue: n.hasValue,
			}
			if n.hasValue {
				nodes[i].value = f(gamepath.GamePath{Location: loc, Path: n.path}, n.value)
			}
		}
		out.locations[loc] = &Subtree[U]{
			location: loc,
			cs:       sub.cs,
			nodes:    nodes,
			index:    sub.index,
			files:    sub.files,
		}
	}
	return out
}

type node[T any] struct {
	name     string
	path     gamepath.RelativePath
	parent   int32
	children []int32
	value    T
	hasValue bool
}

// Subtree holds the entries of one location. Node 0 is the location root.
type Subtree[T any] struct {
	location gamepath.LocationID
	cs       gamepath.Case
	nodes    []node[T]
	index    map[string]int32
	files    int
}

func emptySubtree[T any](loc gamepath.LocationID, cs gamepath.Case) *Subtree[T] {
	return &Subtree[T]{
		location: loc,
		cs:       cs,
		nodes:    []node[T]{{parent: -1}},
		index:    map[string]int32{"": 0},
	}
}

func buildSubtree[T any](loc gamepath.LocationID, cs gamepath.Case, entries []Entry[T]) *Subtree[T] {
	sub := emptySubtree[T](loc, cs)

	for _, e := range entries {
		idx := sub.ensure(e.Path.Path)
		n := &sub.nodes[idx]
		if !n.hasValue {
			sub.files++
		}
		n.value = e.Value
		n.hasValue = true
	}

	for i := range sub.nodes {
		children := sub.nodes[i].children
		slices.SortFunc(children, func(a, b int32) int {
			return strings.Compare(cs.Fold(sub.nodes[a].name), cs.Fold(sub.nodes[b].name))
		})
	}
	return sub
}

// ensure returns the node index for rel, creating missing ancestors.
func (s *Subtree[T]) ensure(rel gamepath.RelativePath) int32 {
	if idx, ok := s.index[s.cs.Fold(string(rel))]; ok {
		return idx
	}
	parent := s.ensure(rel.Parent())
	idx := int32(len(s.nodes))
	s.nodes = append(s.nodes, node[T]{
		name:   rel.Name(),
		path:   rel,
		parent: parent,
	})
	s.nodes[parent].children = append(s.nodes[parent].children, idx)
	s.index[s.cs.Fold(string(rel))] = idx
	return idx
}

// Location returns the location this subtree belongs to.
func (s *Subtree[T]) Location() gamepath.LocationID { return s.location }

// Len returns the number of paths holding a value.
func (s *Subtree[T]) Len() int { return s.files }

// Get returns the value at rel.
func (s *Subtree[T]) Get(rel gamepath.RelativePath) (T, bool) {
	var zero T
	idx, ok := s.index[s.cs.Fold(string(rel))]
	if !ok || !s.nodes[idx].hasValue {
		return zero, false
	}
	return s.nodes[idx].value, true
}

// IsDirectory reports whether rel is an interior node.
func (s *Subtree[T]) IsDirectory(rel gamepath.RelativePath) bool {
	idx, ok := s.index[s.cs.Fold(string(rel))]
	return ok && len(s.nodes[idx].children) > 0
}

// HasDescendants reports whether any value lives strictly below rel.
func (s *Subtree[T]) HasDescendants(rel gamepath.RelativePath) bool {
	for range s.Descendants(rel) {
		return true
	}
	return false
}

// All yields every value in the location, depth-first pre-order.
func (s *Subtree[T]) All() iter.Seq2[gamepath.GamePath, T] {
	return s.walk(0, true)
}

// Descendants yields every value strictly below rel.
func (s *Subtree[T]) Descendants(rel gamepath.RelativePath) iter.Seq2[gamepath.GamePath, T] {
	idx, ok := s.index[s.cs.Fold(string(rel))]
	if !ok {
		return func(func(gamepath.GamePath, T) bool) {}
	}
	return s.walk(idx, false)
}

func (s *Subtree[T]) walk(start int32, includeStart bool) iter.Seq2[gamepath.GamePath, T] {
	return func(yield func(gamepath.GamePath, T) bool) {
		stack := []int32{start}
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n := &s.nodes[idx]
			if n.hasValue && (includeStart || idx != start) {
				if !yield(gamepath.GamePath{Location: s.location, Path: n.path}, n.value) {
					return
				}
			}
			for i := len(n.children) - 1; i >= 0; i-- {
				stack = append(stack, n.children[i])
			}
		}
	}
}
