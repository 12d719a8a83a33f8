// pkg/commands/commands_test.go
// TEST TYPE: Business Logic Integration
// DEPENDENCIES: Memory FS, memory store
// PURPOSE: Test a loadout's lifecycle through the command layer

package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/commands"
	"github.com/arthur-debert/modsync/pkg/commands/internal/testenv"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/synchronizer"
)

func TestLoadoutLifecycle(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	testenv.WriteFile(t, env, "/game/data/base.esm", "vanilla")

	// manage
	managed, err := commands.Manage(ctx, env, commands.ManageOptions{
		Name:      "Skyrim",
		Game:      "skyrim",
		Locations: testenv.Locations(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, managed.GameFiles)
	assert.Equal(t, uint64(1), managed.Loadout.Revision)

	// install two mods that both claim textures/sky.dds
	testenv.ModDir(t, env, "/downloads/sky", map[string]string{
		"data/textures/sky.dds": "blue sky",
		"data/sky.esp":          "sky plugin",
	})
	testenv.ModDir(t, env, "/downloads/storm", map[string]string{
		"data/textures/sky.dds": "storm sky",
	})
	sky, err := commands.InstallMod(ctx, env, commands.InstallOptions{Loadout: "Skyrim", Dir: "/downloads/sky"})
	require.NoError(t, err)
	assert.Equal(t, 2, sky.Files)
	assert.Equal(t, "sky", sky.Mod)
	_, err = commands.InstallMod(ctx, env, commands.InstallOptions{Loadout: "Skyrim", Dir: "/downloads/storm"})
	require.NoError(t, err)

	// plan shows the pending extractions without touching disk
	plan, err := commands.Plan(ctx, env, commands.PlanOptions{Loadout: "Skyrim"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"{Game}/data/sky.esp", "{Game}/data/textures/sky.dds"}, plan.Extract)
	assert.False(t, testenv.Exists(t, env, "/game/data/sky.esp"))

	// listing shows the loadout pending
	listed, err := commands.ListLoadouts(ctx, env)
	require.NoError(t, err)
	require.Len(t, listed.Loadouts, 1)
	assert.True(t, listed.Loadouts[0].Pending())

	// conflicts: the later installed mod wins
	conflicts, err := commands.ListConflicts(ctx, env, commands.ConflictsOptions{Loadout: "Skyrim"})
	require.NoError(t, err)
	require.Len(t, conflicts.Conflicts, 1)
	assert.Equal(t, "storm", conflicts.Conflicts[0].Winner)
	assert.Equal(t, []string{"sky", "storm"}, conflicts.Conflicts[0].Claimants)

	// apply
	applied, err := commands.Apply(ctx, env, commands.ApplyOptions{Loadout: "Skyrim"})
	require.NoError(t, err)
	assert.Equal(t, synchronizer.OutcomeApplied, applied.Outcome)
	assert.Equal(t, "storm sky", testenv.ReadFile(t, env, "/game/data/textures/sky.dds"))
	assert.Equal(t, "sky plugin", testenv.ReadFile(t, env, "/game/data/sky.esp"))

	// disabling the winner hands the path back on the next apply
	_, err = commands.Toggle(ctx, env, commands.ToggleOptions{Loadout: "Skyrim", Mod: "storm"})
	require.NoError(t, err)
	_, err = commands.Apply(ctx, env, commands.ApplyOptions{Loadout: "Skyrim"})
	require.NoError(t, err)
	assert.Equal(t, "blue sky", testenv.ReadFile(t, env, "/game/data/textures/sky.dds"))

	// an external edit blocks apply until ingested
	testenv.WriteFile(t, env, "/game/data/sky.esp", "hand edited")
	testenv.WriteFile(t, env, "/saves/slot1.ess", "save game")
	_, err = commands.Toggle(ctx, env, commands.ToggleOptions{Loadout: "Skyrim", Mod: "storm"})
	require.NoError(t, err)
	blocked, err := commands.Apply(ctx, env, commands.ApplyOptions{Loadout: "Skyrim"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNeedsIngest))
	assert.Equal(t, synchronizer.OutcomeNeedsIngest, blocked.Outcome)
	assert.Len(t, blocked.Drift, 2)

	ingested, err := commands.Ingest(ctx, env, commands.IngestOptions{Loadout: "Skyrim"})
	require.NoError(t, err)
	assert.Equal(t, []string{"{Saves}/slot1.ess"}, ingested.Added)
	assert.Equal(t, []string{"{Game}/data/sky.esp"}, ingested.Changed)

	_, err = commands.Apply(ctx, env, commands.ApplyOptions{Loadout: "Skyrim"})
	require.NoError(t, err)
	assert.Equal(t, "hand edited", testenv.ReadFile(t, env, "/game/data/sky.esp"))
	assert.Equal(t, "storm sky", testenv.ReadFile(t, env, "/game/data/textures/sky.dds"))
	assert.Equal(t, "save game", testenv.ReadFile(t, env, "/saves/slot1.ess"))

	// the ingested save went to the saves category mod
	mods, err := commands.ListMods(ctx, env, commands.ModsOptions{Loadout: "Skyrim"})
	require.NoError(t, err)
	var names []string
	for _, m := range mods.Mods {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "saves")
	assert.Equal(t, "Game Files", mods.Mods[0].Name)

	// rename and history
	renamed, err := commands.Rename(ctx, env, commands.RenameOptions{Loadout: "Skyrim", Name: "Skyrim SE"})
	require.NoError(t, err)
	assert.Equal(t, "Skyrim SE", renamed.Loadout)

	hist, err := commands.History(ctx, env, commands.HistoryOptions{Loadout: "Skyrim SE"})
	require.NoError(t, err)
	require.NotEmpty(t, hist.Entries)
	assert.Equal(t, "Skyrim SE", hist.Entries[0].Name)
	assert.Equal(t, uint64(1), hist.Entries[len(hist.Entries)-1].Revision)
	for i := 1; i < len(hist.Entries); i++ {
		assert.Greater(t, hist.Entries[i-1].Sequence, hist.Entries[i].Sequence)
	}

	// a copy still placing mods needs force to delete
	cp, err := commands.Copy(ctx, env, commands.CopyOptions{Loadout: "Skyrim SE"})
	require.NoError(t, err)
	assert.Equal(t, "Skyrim SE (copy)", cp.Loadout.Name)
	_, err = commands.Delete(ctx, env, commands.DeleteOptions{Loadout: cp.Loadout.Name})
	assert.True(t, errors.IsErrorCode(err, errors.ErrLoadoutActive))
	_, err = commands.Delete(ctx, env, commands.DeleteOptions{Loadout: cp.Loadout.Name, Force: true})
	require.NoError(t, err)

	// unmanage restores the original files and forgets the loadout
	un, err := commands.Unmanage(ctx, env, commands.ResetOptions{Loadout: "Skyrim SE"})
	require.NoError(t, err)
	assert.True(t, un.Removed)
	assert.Equal(t, "vanilla", testenv.ReadFile(t, env, "/game/data/base.esm"))
	assert.False(t, testenv.Exists(t, env, "/game/data/sky.esp"))
	assert.False(t, testenv.Exists(t, env, "/game/data/textures/sky.dds"))
	listed, err = commands.ListLoadouts(ctx, env)
	require.NoError(t, err)
	assert.Empty(t, listed.Loadouts)
}

func TestGenConfig(t *testing.T) {
	res, err := commands.GenConfig(commands.GenConfigOptions{})
	require.NoError(t, err)
	assert.Contains(t, res.Content, "[ingest]")
	assert.Empty(t, res.Path)
}
