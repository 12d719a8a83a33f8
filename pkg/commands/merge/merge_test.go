// pkg/commands/merge/merge_test.go
// TEST TYPE: Business Logic Integration
// DEPENDENCIES: Memory FS, memory store
// PURPOSE: Test folding one loadout into another

package merge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/commands/install"
	"github.com/arthur-debert/modsync/pkg/commands/internal/testenv"
	"github.com/arthur-debert/modsync/pkg/commands/merge"
	"github.com/arthur-debert/modsync/pkg/errors"
)

func TestMerge(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	into := testenv.Manage(t, env, "Main")
	testenv.Manage(t, env, "Experiments")
	testenv.ModDir(t, env, "/mods/weather", map[string]string{"weather.esp": "rain"})
	_, err := install.InstallMod(ctx, env, install.InstallOptions{Loadout: "Experiments", Dir: "/mods/weather"})
	require.NoError(t, err)

	res, err := merge.Merge(ctx, env, merge.MergeOptions{Into: "Main", From: "Experiments", Algorithm: "a-overrides-b"})
	require.NoError(t, err)
	assert.Equal(t, "Main", res.Loadout)
	assert.Equal(t, "Experiments", res.From)
	assert.Equal(t, "a-overrides-b", res.Algorithm)
	assert.Greater(t, res.Revision, into.Loadout.Revision)

	snap, err := env.Find(ctx, "Main")
	require.NoError(t, err)
	assert.Equal(t, into.Loadout.ID, snap.Loadout.ID)
	_, err = snap.Loadout.FindMod("weather")
	assert.NoError(t, err)
}

func TestMergeRejects(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	testenv.Manage(t, env, "Main")
	testenv.Manage(t, env, "Other")

	_, err := merge.Merge(ctx, env, merge.MergeOptions{Into: "Main", From: "Main", Algorithm: "a"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = merge.Merge(ctx, env, merge.MergeOptions{Into: "Main", From: "Other", Algorithm: "coin-flip"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotSupported))

	_, err = merge.Merge(ctx, env, merge.MergeOptions{Into: "Main", From: "Nope", Algorithm: "b"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}
