package apply

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/commands/plan"
	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the apply command
func NewCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:               "apply <loadout>",
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(1),
		GroupID:           cli.GroupLoadouts,
		ValidArgsFunction: cli.LoadoutNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				return plan.Run(cmd, args[0])
			}
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.ApplyResult, error) {
				return commands.Apply(ctx, env, commands.ApplyOptions{Loadout: args[0]})
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	return cmd
}
