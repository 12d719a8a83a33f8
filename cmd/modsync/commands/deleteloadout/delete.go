package deleteloadout

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the delete command
func NewCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:               "delete <loadout>",
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(1),
		GroupID:           cli.GroupLoadouts,
		ValidArgsFunction: cli.LoadoutNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.DeleteResult, error) {
				return commands.Delete(ctx, env, commands.DeleteOptions{Loadout: args[0], Force: force})
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}
