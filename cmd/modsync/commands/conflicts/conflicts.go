package conflicts

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the conflicts command
func NewCommand() *cobra.Command {
	var mod string

	cmd := &cobra.Command{
		Use:               "conflicts <loadout>",
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(1),
		GroupID:           cli.GroupMods,
		ValidArgsFunction: cli.LoadoutNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.ConflictsResult, error) {
				return commands.ListConflicts(ctx, env, commands.ConflictsOptions{Loadout: args[0], Mod: mod})
			})
		},
	}

	cmd.Flags().StringVar(&mod, "mod", "", MsgFlagMod)
	return cmd
}
