package genconfig

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/pkg/commands"
)

// NewCommand creates the gen-config command
func NewCommand() *cobra.Command {
	var write, force bool

	cmd := &cobra.Command{
		Use:     "gen-config",
		Aliases: []string{"genconfig"},
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.NoArgs,
		GroupID: cli.GroupMisc,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Root().PersistentFlags().GetString(cli.FlagConfig)
			if path == "" {
				p, err := cli.Paths()
				if err != nil {
					return err
				}
				path = p.ConfigFilePath()
			}
			res, err := commands.GenConfig(commands.GenConfigOptions{Path: path, Write: write, Force: force})
			if err != nil {
				return err
			}
			if !write {
				// raw toml so the output can be redirected into a file
				_, err = fmt.Fprint(cmd.OutOrStdout(), res.Content)
				return err
			}
			r, err := cli.Renderer(cmd)
			if err != nil {
				return err
			}
			return r.Render(res)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}
