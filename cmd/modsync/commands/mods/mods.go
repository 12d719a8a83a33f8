package mods

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the mods command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "mods <loadout>",
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(1),
		GroupID:           cli.GroupMods,
		ValidArgsFunction: cli.LoadoutNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.ModsResult, error) {
				return commands.ListMods(ctx, env, commands.ModsOptions{Loadout: args[0]})
			})
		},
	}
}
