package install

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
	"github.com/arthur-debert/modsync/pkg/gamepath"
)

// NewCommand creates the install command
func NewCommand() *cobra.Command {
	var opts commands.InstallOptions
	var location string

	cmd := &cobra.Command{
		Use:               "install <loadout> <dir>",
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(2),
		GroupID:           cli.GroupMods,
		ValidArgsFunction: cli.LoadoutNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Loadout, opts.Dir = args[0], args[1]
			opts.Location = gamepath.LocationID(location)
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.InstallResult, error) {
				return commands.InstallMod(ctx, env, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", MsgFlagName)
	cmd.Flags().StringVar(&opts.Category, "category", "mods", MsgFlagCategory)
	cmd.Flags().StringVar(&location, "location", string(gamepath.Game), MsgFlagLocation)
	cmd.Flags().BoolVar(&opts.Replace, "replace", false, MsgFlagReplace)
	return cmd
}
