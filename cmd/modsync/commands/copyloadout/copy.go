package copyloadout

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the copy command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "copy <loadout> [name]",
		Aliases: []string{"cp"},
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.RangeArgs(1, 2),
		GroupID: cli.GroupLoadouts,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return cli.LoadoutNames(cmd, nil, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := commands.CopyOptions{Loadout: args[0]}
			if len(args) > 1 {
				opts.Name = args[1]
			}
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.CopyResult, error) {
				return commands.Copy(ctx, env, opts)
			})
		},
	}
}
