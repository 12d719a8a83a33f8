package rename

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the rename command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rename <loadout> <new-name>",
		Short:             MsgShort,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(2),
		GroupID:           cli.GroupLoadouts,
		ValidArgsFunction: cli.LoadoutNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.EditResult, error) {
				return commands.Rename(ctx, env, commands.RenameOptions{Loadout: args[0], Name: args[1]})
			})
		},
	}
}
