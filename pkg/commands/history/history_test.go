// pkg/commands/history/history_test.go
// TEST TYPE: Business Logic Integration
// DEPENDENCIES: Memory FS, memory store
// PURPOSE: Test snapshot history listing

package history_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/commands/edit"
	"github.com/arthur-debert/modsync/pkg/commands/history"
	"github.com/arthur-debert/modsync/pkg/commands/internal/testenv"
)

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	testenv.Manage(t, env, "One")
	_, err := edit.Rename(ctx, env, edit.RenameOptions{Loadout: "One", Name: "Two"})
	require.NoError(t, err)
	_, err = edit.Rename(ctx, env, edit.RenameOptions{Loadout: "Two", Name: "Three"})
	require.NoError(t, err)

	res, err := history.History(ctx, env, history.HistoryOptions{Loadout: "Three"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)
	var names []string
	for _, e := range res.Entries {
		names = append(names, e.Name)
		assert.Equal(t, uint64(1), e.Applied)
	}
	assert.Equal(t, []string{"Three", "Two", "One"}, names)
	assert.Equal(t, uint64(3), res.Entries[0].Sequence)

	limited, err := history.History(ctx, env, history.HistoryOptions{Loadout: "Three", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited.Entries, 1)
	assert.Equal(t, "Three", limited.Entries[0].Name)
}
