// pkg/commands/lifecycle/lifecycle_test.go
// TEST TYPE: Business Logic Integration
// DEPENDENCIES: Memory FS, memory store, archive file store
// PURPOSE: Test resetting, deleting, unmanaging and copying loadouts

package lifecycle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/commands/apply"
	"github.com/arthur-debert/modsync/pkg/commands/install"
	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/commands/internal/testenv"
	"github.com/arthur-debert/modsync/pkg/commands/lifecycle"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/synchronizer"
)

// deployed manages "Main" over one original file and applies a mod.
func deployed(t *testing.T) *app.Env {
	t.Helper()
	ctx := context.Background()
	env := testenv.New(t)
	testenv.WriteFile(t, env, "/game/game.exe", "exe")
	testenv.Manage(t, env, "Main")
	testenv.ModDir(t, env, "/mods/weather", map[string]string{"weather.esp": "rain"})
	_, err := install.InstallMod(ctx, env, install.InstallOptions{Loadout: "Main", Dir: "/mods/weather"})
	require.NoError(t, err)
	_, err = apply.Apply(ctx, env, apply.ApplyOptions{Loadout: "Main"})
	require.NoError(t, err)
	require.True(t, testenv.Exists(t, env, "/game/weather.esp"))
	return env
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	env := deployed(t)

	res, err := lifecycle.Reset(ctx, env, lifecycle.ResetOptions{Loadout: "Main"})
	require.NoError(t, err)
	assert.Equal(t, synchronizer.OutcomeApplied, res.Outcome)
	assert.Equal(t, 1, res.Summary.Delete)
	assert.False(t, res.Removed)
	assert.False(t, testenv.Exists(t, env, "/game/weather.esp"))
	assert.Equal(t, "exe", testenv.ReadFile(t, env, "/game/game.exe"))

	snap, err := env.Find(ctx, "Main")
	require.NoError(t, err)
	_, err = snap.Loadout.FindMod("weather")
	assert.NoError(t, err, "mods stay in the loadout")

	_, err = apply.Apply(ctx, env, apply.ApplyOptions{Loadout: "Main"})
	require.NoError(t, err)
	assert.Equal(t, "rain", testenv.ReadFile(t, env, "/game/weather.esp"))
}

func TestResetReportsDrift(t *testing.T) {
	ctx := context.Background()
	env := deployed(t)
	testenv.WriteFile(t, env, "/game/weather.esp", "snow")

	res, err := lifecycle.Reset(ctx, env, lifecycle.ResetOptions{Loadout: "Main"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNeedsIngest))
	assert.Equal(t, synchronizer.OutcomeNeedsIngest, res.Outcome)
	require.Len(t, res.Drift, 1)
	assert.NotEmpty(t, res.Error)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	env := deployed(t)

	_, err := lifecycle.Delete(ctx, env, lifecycle.DeleteOptions{Loadout: "Main"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrLoadoutActive))

	res, err := lifecycle.Delete(ctx, env, lifecycle.DeleteOptions{Loadout: "Main", Force: true})
	require.NoError(t, err)
	assert.Equal(t, "Main", res.Loadout)
	assert.True(t, res.Forced)
	_, err = env.Find(ctx, "Main")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.True(t, testenv.Exists(t, env, "/game/weather.esp"), "disk is left alone")

	_, err = lifecycle.Delete(ctx, env, lifecycle.DeleteOptions{Loadout: "Main"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestUnmanage(t *testing.T) {
	ctx := context.Background()
	env := deployed(t)

	res, err := lifecycle.Unmanage(ctx, env, lifecycle.ResetOptions{Loadout: "Main"})
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.False(t, testenv.Exists(t, env, "/game/weather.esp"))
	_, err = env.Find(ctx, "Main")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	testenv.Manage(t, env, "Main")
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	env := deployed(t)

	res, err := lifecycle.Copy(ctx, env, lifecycle.CopyOptions{Loadout: "Main"})
	require.NoError(t, err)
	assert.Equal(t, "Main", res.From)
	assert.Equal(t, "Main (copy)", res.Loadout.Name)
	assert.Equal(t, 2, res.Loadout.Mods)
	assert.False(t, res.Loadout.Pending())

	src, err := env.Find(ctx, "Main")
	require.NoError(t, err)
	assert.NotEqual(t, string(src.Loadout.ID), res.Loadout.ID)

	named, err := lifecycle.Copy(ctx, env, lifecycle.CopyOptions{Loadout: "Main", Name: "Experiments"})
	require.NoError(t, err)
	assert.Equal(t, "Experiments", named.Loadout.Name)

	_, err = lifecycle.Copy(ctx, env, lifecycle.CopyOptions{Loadout: "Main", Name: "experiments"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
}
