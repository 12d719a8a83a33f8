package remove

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the remove command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "remove <loadout> <mod>",
		Aliases:           []string{"rm"},
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(2),
		GroupID:           cli.GroupMods,
		ValidArgsFunction: cli.ModNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.EditResult, error) {
				return commands.RemoveMod(ctx, env, commands.RemoveModOptions{Loadout: args[0], Mod: args[1]})
			})
		},
	}
}
