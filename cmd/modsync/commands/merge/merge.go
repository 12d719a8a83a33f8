package merge

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the merge command
func NewCommand() *cobra.Command {
	var algorithm string

	cmd := &cobra.Command{
		Use:     "merge <into> <from>",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.ExactArgs(2),
		GroupID: cli.GroupLoadouts,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 1 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return cli.LoadoutNames(cmd, nil, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.MergeResult, error) {
				return commands.Merge(ctx, env, commands.MergeOptions{Into: args[0], From: args[1], Algorithm: algorithm})
			})
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "a-overrides-b", MsgFlagAlgorithm)
	_ = cmd.RegisterFlagCompletionFunc("algorithm", cobra.FixedCompletions(
		[]string{"a-overrides-b", "b-overrides-a"}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}
