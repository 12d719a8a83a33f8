package manage

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
	"github.com/arthur-debert/modsync/pkg/gamepath"
)

// NewCommand creates the manage command
func NewCommand() *cobra.Command {
	var (
		game      string
		locations map[string]string
	)

	cmd := &cobra.Command{
		Use:     "manage <name> [game-dir]",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.RangeArgs(1, 2),
		GroupID: cli.GroupLoadouts,
		RunE: func(cmd *cobra.Command, args []string) error {
			locs := make(map[string]string, len(locations)+1)
			for loc, dir := range locations {
				locs[loc] = dir
			}
			if len(args) == 2 {
				locs[string(gamepath.Game)] = args[1]
			}
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.ManageResult, error) {
				return commands.Manage(ctx, env, commands.ManageOptions{
					Name:      args[0],
					Game:      game,
					Locations: locs,
				})
			})
		},
	}

	cmd.Flags().StringVar(&game, "game", "", MsgFlagGame)
	cmd.Flags().StringToStringVarP(&locations, "location", "l", nil, MsgFlagLocation)
	return cmd
}
