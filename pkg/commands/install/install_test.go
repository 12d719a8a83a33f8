// pkg/commands/install/install_test.go
// TEST TYPE: Business Logic Integration
// DEPENDENCIES: Memory FS, memory store, archive file store
// PURPOSE: Test archiving a mod directory into a loadout

package install_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/commands/install"
	"github.com/arthur-debert/modsync/pkg/commands/internal/testenv"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/loadout"
)

func TestInstallMod(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	before := testenv.Manage(t, env, "Fallout")
	testenv.ModDir(t, env, "/mods/Better Lights", map[string]string{
		"lights.esp":        "plugin",
		"meshes/lamp.nif":   "lamp mesh",
		"meshes/candle.nif": "candle",
	})

	res, err := install.InstallMod(ctx, env, install.InstallOptions{Loadout: "Fallout", Dir: "/mods/Better Lights"})
	require.NoError(t, err)
	assert.Equal(t, "Better Lights", res.Mod)
	assert.Equal(t, 3, res.Files)
	assert.Equal(t, int64(len("plugin")+len("lamp mesh")+len("candle")), res.Bytes)
	assert.Greater(t, res.Revision, before.Loadout.Revision)
	assert.False(t, res.Replaced)

	snap, err := env.Find(ctx, "Fallout")
	require.NoError(t, err)
	m, err := snap.Loadout.FindMod("Better Lights")
	require.NoError(t, err)
	assert.Equal(t, install.DefaultCategory, m.Category)
	for _, f := range m.Files {
		fa, ok := f.(loadout.FromArchive)
		require.True(t, ok)
		assert.Equal(t, gamepath.Game, fa.Path.Location)
		has, err := env.Archive.Has(ctx, fa.Hash)
		require.NoError(t, err)
		assert.True(t, has, "blob for %s", fa.Path)
	}
	// the installation is untouched until apply
	assert.False(t, testenv.Exists(t, env, "/game/lights.esp"))
}

func TestInstallModNameClash(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	testenv.Manage(t, env, "Fallout")
	testenv.ModDir(t, env, "/mods/patch", map[string]string{"a.esp": "one"})

	first, err := install.InstallMod(ctx, env, install.InstallOptions{Loadout: "Fallout", Dir: "/mods/patch"})
	require.NoError(t, err)

	_, err = install.InstallMod(ctx, env, install.InstallOptions{Loadout: "Fallout", Dir: "/mods/patch"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	testenv.ModDir(t, env, "/mods/patch2", map[string]string{"b.esp": "two", "c.esp": "three"})
	again, err := install.InstallMod(ctx, env, install.InstallOptions{
		Loadout: "Fallout", Dir: "/mods/patch2", Name: "patch", Replace: true,
	})
	require.NoError(t, err)
	assert.True(t, again.Replaced)
	assert.Equal(t, first.ModID, again.ModID)
	assert.Equal(t, 2, again.Files)

	snap, err := env.Find(ctx, "Fallout")
	require.NoError(t, err)
	m, err := snap.Loadout.FindMod("patch")
	require.NoError(t, err)
	assert.Len(t, m.Files, 2)
}

func TestInstallModValidation(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	testenv.Manage(t, env, "Fallout")
	require.NoError(t, env.FS.MkdirAll("/mods/empty", 0755))
	testenv.ModDir(t, env, "/mods/full", map[string]string{"x": "y"})

	tests := []struct {
		name string
		opts install.InstallOptions
		code errors.ErrorCode
	}{
		{"missing dir", install.InstallOptions{Loadout: "Fallout", Dir: "/mods/missing"}, errors.ErrNotFound},
		{"empty dir", install.InstallOptions{Loadout: "Fallout", Dir: "/mods/empty"}, errors.ErrInvalidInput},
		{"unknown location", install.InstallOptions{Loadout: "Fallout", Dir: "/mods/full", Location: "Music"}, errors.ErrInvalidInput},
		{"unknown loadout", install.InstallOptions{Loadout: "Oblivion", Dir: "/mods/full"}, errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := install.InstallMod(ctx, env, tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetErrorCode(err))
		})
	}
}
