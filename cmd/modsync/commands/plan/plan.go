package plan

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the plan command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "plan <loadout>",
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(1),
		GroupID:           cli.GroupLoadouts,
		ValidArgsFunction: cli.LoadoutNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, args[0])
		},
	}
}

// Run previews an apply of loadout. apply --dry-run uses it too.
func Run(cmd *cobra.Command, loadout string) error {
	return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.PlanResult, error) {
		return commands.Plan(ctx, env, commands.PlanOptions{Loadout: loadout})
	})
}
