package history

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the history command
func NewCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:               "history <loadout>",
		Aliases:           []string{"log"},
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(1),
		GroupID:           cli.GroupLoadouts,
		ValidArgsFunction: cli.LoadoutNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.HistoryResult, error) {
				return commands.History(ctx, env, commands.HistoryOptions{Loadout: args[0], Limit: limit})
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, MsgFlagLimit)
	return cmd
}
