// pkg/indexer/indexer_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: afero MemMapFs
// PURPOSE: Test installation indexing, nested locations, ignores and mtime trust

package indexer_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/diskstate"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/hashing"
	"github.com/arthur-debert/modsync/pkg/indexer"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/pathtree"
)

func setup(t *testing.T) (afero.Fs, loadout.Installation) {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/game/bin/game.exe":   "exe",
		"/game/data/a.pak":     "pak",
		"/game/saves/s1.sav":   "save",
		"/game/logs/debug.log": "log",
	}
	for p, c := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte(c), 0644))
	}
	inst := loadout.Installation{
		Game: "test",
		Locations: map[gamepath.LocationID]string{
			gamepath.Game:        "/game",
			gamepath.Saves:       "/game/saves",
			gamepath.Preferences: "/prefs",
		},
	}
	return fs, inst
}

func TestIndex(t *testing.T) {
	fs, inst := setup(t)
	ix := indexer.New(fs, indexer.Options{Workers: 2})

	tree, err := ix.Index(context.Background(), inst, nil, nil)
	require.NoError(t, err)

	var got []string
	for p := range tree.All() {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{
		"{Game}/bin/game.exe",
		"{Game}/data/a.pak",
		"{Game}/logs/debug.log",
		"{Saves}/s1.sav",
	}, got, "nested saves root is indexed under Saves only, missing prefs root is skipped")

	e, ok := tree.Get(gamepath.MustNew(gamepath.Game, "data/a.pak"))
	require.True(t, ok)
	assert.Equal(t, hashing.HashBytes([]byte("pak")), e.Hash)
	assert.Equal(t, int64(3), e.Size)
	assert.False(t, e.LastModified.IsZero())
}

func TestIndexIgnore(t *testing.T) {
	fs, inst := setup(t)
	ix := indexer.New(fs, indexer.Options{Ignore: []string{"*.log", "{Game}/bin/*"}})

	tree, err := ix.Index(context.Background(), inst, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, tree.Len())
	assert.False(t, tree.Has(gamepath.MustNew(gamepath.Game, "logs/debug.log")))
	assert.False(t, tree.Has(gamepath.MustNew(gamepath.Game, "bin/game.exe")))
	assert.True(t, ix.Ignored(gamepath.MustNew(gamepath.Saves, "x.log")))
}

func TestIndexIgnoreSparesTrackedPaths(t *testing.T) {
	fs, inst := setup(t)
	ix := indexer.New(fs, indexer.Options{Ignore: []string{"*.log", "*.exe"}})

	log := gamepath.MustNew(gamepath.Game, "logs/debug.log")
	exe := gamepath.MustNew(gamepath.Game, "bin/game.exe")
	hint := pathtree.New([]pathtree.Entry[diskstate.Entry]{{Path: log, Value: diskstate.Entry{Size: 1}}})
	tracked := func(p gamepath.GamePath) bool { return p == exe }

	tree, err := ix.Index(context.Background(), inst, hint, tracked)
	require.NoError(t, err)
	assert.True(t, tree.Has(log), "recorded path is indexed")
	assert.True(t, tree.Has(exe), "tracked path is indexed")
	assert.Equal(t, 4, tree.Len())
}

func TestIndexTrustMtime(t *testing.T) {
	fs, inst := setup(t)
	stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, fs.Chtimes("/game/data/a.pak", stamp, stamp))

	p := gamepath.MustNew(gamepath.Game, "data/a.pak")
	hint := pathtree.New([]pathtree.Entry[diskstate.Entry]{
		{Path: p, Value: diskstate.Entry{Hash: 0xfeed, Size: 3, LastModified: stamp}},
	})

	trusting := indexer.New(fs, indexer.Options{TrustMtime: true})
	tree, err := trusting.Index(context.Background(), inst, hint, nil)
	require.NoError(t, err)
	e, _ := tree.Get(p)
	assert.Equal(t, hashing.Hash(0xfeed), e.Hash, "unchanged size and mtime reuse the hint")

	strict := indexer.New(fs, indexer.Options{TrustMtime: false})
	tree, err = strict.Index(context.Background(), inst, hint, nil)
	require.NoError(t, err)
	e, _ = tree.Get(p)
	assert.Equal(t, hashing.HashBytes([]byte("pak")), e.Hash)

	later := stamp.Add(time.Minute)
	require.NoError(t, fs.Chtimes("/game/data/a.pak", later, later))
	tree, err = trusting.Index(context.Background(), inst, hint, nil)
	require.NoError(t, err)
	e, _ = tree.Get(p)
	assert.Equal(t, hashing.HashBytes([]byte("pak")), e.Hash, "touched file is rehashed")
}

func TestIndexCancelled(t *testing.T) {
	fs, inst := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := indexer.New(fs, indexer.Options{}).Index(ctx, inst, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
}

func TestIndexCaseInsensitive(t *testing.T) {
	fs, inst := setup(t)
	tree, err := indexer.New(fs, indexer.Options{Case: gamepath.CaseInsensitive}).Index(context.Background(), inst, nil, nil)
	require.NoError(t, err)
	assert.True(t, tree.Has(gamepath.MustNew(gamepath.Game, "DATA/A.PAK")))
}
