package toggle

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the toggle command
func NewCommand() *cobra.Command {
	var on, off bool

	cmd := &cobra.Command{
		Use:               "toggle <loadout> <mod>",
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(2),
		GroupID:           cli.GroupMods,
		ValidArgsFunction: cli.ModNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := commands.ToggleOptions{Loadout: args[0], Mod: args[1]}
			switch {
			case on:
				opts.Enabled = &on
			case off:
				enabled := false
				opts.Enabled = &enabled
			}
			return cli.Run(cmd, func(ctx context.Context, env *commands.Env) (*commands.EditResult, error) {
				return commands.Toggle(ctx, env, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&on, "on", false, MsgFlagOn)
	cmd.Flags().BoolVar(&off, "off", false, MsgFlagOff)
	cmd.MarkFlagsMutuallyExclusive("on", "off")
	return cmd
}
