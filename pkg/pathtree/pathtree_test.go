// pkg/pathtree/pathtree_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test tree construction, lookup, enumeration order and projection

package pathtree_test

import (
	"testing"

	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/pathtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gp(loc gamepath.LocationID, rel string) gamepath.GamePath {
	return gamepath.MustNew(loc, rel)
}

func paths[T any](t *pathtree.Tree[T]) []string {
	var out []string
	for p := range t.All() {
		out = append(out, p.String())
	}
	return out
}

func TestNewGroupsByLocation(t *testing.T) {
	tree := pathtree.New([]pathtree.Entry[int]{
		{Path: gp(gamepath.Saves, "slot1.sav"), Value: 1},
		{Path: gp(gamepath.Game, "bin/game.exe"), Value: 2},
		{Path: gp(gamepath.Game, "data/a.pak"), Value: 3},
	})

	assert.Equal(t, 3, tree.Len())
	assert.Equal(t, []gamepath.LocationID{gamepath.Game, gamepath.Saves}, tree.Locations())
	assert.Equal(t, 2, tree.Location(gamepath.Game).Len())
	assert.Equal(t, 1, tree.Location(gamepath.Saves).Len())

	v, ok := tree.Get(gp(gamepath.Game, "data/a.pak"))
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestMissingLocationIsEmpty(t *testing.T) {
	tree := pathtree.New([]pathtree.Entry[int]{
		{Path: gp(gamepath.Game, "a.txt"), Value: 1},
	})

	sub := tree.Location(gamepath.Preferences)
	require.NotNil(t, sub)
	assert.Equal(t, 0, sub.Len())
	assert.False(t, tree.Has(gp(gamepath.Preferences, "a.txt")))

	count := 0
	for range sub.All() {
		count++
	}
	assert.Zero(t, count)
}

func TestLastWriterWins(t *testing.T) {
	tree := pathtree.New([]pathtree.Entry[string]{
		{Path: gp(gamepath.Game, "readme.txt"), Value: "first"},
		{Path: gp(gamepath.Game, "other.txt"), Value: "x"},
		{Path: gp(gamepath.Game, "readme.txt"), Value: "second"},
	})

	v, ok := tree.Get(gp(gamepath.Game, "readme.txt"))
	require.True(t, ok)
	assert.Equal(t, "second", v)
	assert.Equal(t, 2, tree.Len())
}

func TestDirectoriesHoldNoValue(t *testing.T) {
	tree := pathtree.New([]pathtree.Entry[int]{
		{Path: gp(gamepath.Game, "data/textures/a.dds"), Value: 1},
	})

	assert.False(t, tree.Has(gp(gamepath.Game, "data")))
	assert.False(t, tree.Has(gp(gamepath.Game, "data/textures")))
	assert.True(t, tree.Location(gamepath.Game).IsDirectory("data/textures"))
	assert.True(t, tree.HasDescendants(gp(gamepath.Game, "data")))
	assert.False(t, tree.HasDescendants(gp(gamepath.Game, "data/textures/a.dds")))
	assert.False(t, tree.HasDescendants(gp(gamepath.Game, "nowhere")))
}

func TestAllIsDepthFirstPreOrder(t *testing.T) {
	tree := pathtree.New([]pathtree.Entry[int]{
		{Path: gp(gamepath.Saves, "z.sav"), Value: 0},
		{Path: gp(gamepath.Game, "b/2.txt"), Value: 0},
		{Path: gp(gamepath.Game, "a.txt"), Value: 0},
		{Path: gp(gamepath.Game, "b"), Value: 0},
		{Path: gp(gamepath.Game, "b/1.txt"), Value: 0},
		{Path: gp(gamepath.Game, "c/d/e.txt"), Value: 0},
	})

	assert.Equal(t, []string{
		"{Game}/a.txt",
		"{Game}/b",
		"{Game}/b/1.txt",
		"{Game}/b/2.txt",
		"{Game}/c/d/e.txt",
		"{Saves}/z.sav",
	}, paths(tree))
}

func TestEnumerationIndependentOfInputOrder(t *testing.T) {
	entries := []pathtree.Entry[int]{
		{Path: gp(gamepath.Game, "x/y.txt"), Value: 1},
		{Path: gp(gamepath.Game, "a.txt"), Value: 2},
		{Path: gp(gamepath.Saves, "s.sav"), Value: 3},
	}
	reversed := []pathtree.Entry[int]{entries[2], entries[1], entries[0]}

	assert.Equal(t, pathtree.New(entries).Entries(), pathtree.New(reversed).Entries())
}

func TestCaseInsensitiveLookup(t *testing.T) {
	tree := pathtree.New([]pathtree.Entry[int]{
		{Path: gp(gamepath.Game, "Data/Readme.TXT"), Value: 1},
		{Path: gp(gamepath.Game, "data/readme.txt"), Value: 2},
	}, pathtree.WithCase(gamepath.CaseInsensitive))

	assert.Equal(t, 1, tree.Len())
	v, ok := tree.Get(gp(gamepath.Game, "DATA/README.txt"))
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, gamepath.CaseInsensitive, tree.Case())

	sensitive := pathtree.New([]pathtree.Entry[int]{
		{Path: gp(gamepath.Game, "Data/Readme.TXT"), Value: 1},
		{Path: gp(gamepath.Game, "data/readme.txt"), Value: 2},
	})
	assert.Equal(t, 2, sensitive.Len())
}

func TestEarlyStop(t *testing.T) {
	tree := pathtree.New([]pathtree.Entry[int]{
		{Path: gp(gamepath.Game, "a"), Value: 1},
		{Path: gp(gamepath.Game, "b"), Value: 2},
		{Path: gp(gamepath.Saves, "c"), Value: 3},
	})

	seen := 0
	for range tree.All() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestMap(t *testing.T) {
	tree := pathtree.New([]pathtree.Entry[int]{
		{Path: gp(gamepath.Game, "a/b.txt"), Value: 2},
		{Path: gp(gamepath.Saves, "c.sav"), Value: 5},
	})

	doubled := pathtree.Map(tree, func(_ gamepath.GamePath, v int) string {
		return string(rune('a' + v))
	})

	assert.Equal(t, paths(tree), paths(doubled))
	v, ok := doubled.Get(gp(gamepath.Saves, "c.sav"))
	require.True(t, ok)
	assert.Equal(t, "f", v)

	// the source is untouched
	orig, _ := tree.Get(gp(gamepath.Saves, "c.sav"))
	assert.Equal(t, 5, orig)
}

func TestDescendants(t *testing.T) {
	tree := pathtree.New([]pathtree.Entry[int]{
		{Path: gp(gamepath.Game, "mods/a/1.esp"), Value: 1},
		{Path: gp(gamepath.Game, "mods/b.esp"), Value: 2},
		{Path: gp(gamepath.Game, "readme.txt"), Value: 3},
	})

	var got []string
	for p := range tree.Location(gamepath.Game).Descendants("mods") {
		got = append(got, string(p.Path))
	}
	assert.Equal(t, []string{"mods/a/1.esp", "mods/b.esp"}, got)
}

func TestEmpty(t *testing.T) {
	tree := pathtree.Empty[int]()
	assert.Zero(t, tree.Len())
	assert.Empty(t, tree.Locations())
	assert.Empty(t, tree.Entries())
}
