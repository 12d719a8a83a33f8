package ingest

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the ingest command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "ingest <loadout>",
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(1),
		GroupID:           cli.GroupLoadouts,
		ValidArgsFunction: cli.LoadoutNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.IngestResult, error) {
				return commands.Ingest(ctx, env, commands.IngestOptions{Loadout: args[0]})
			})
		},
	}
}
