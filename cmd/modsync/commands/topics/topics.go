package topics

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
)

// NewCommand creates the topics command, a shortcut for 'help topics'
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgShort,
		Long:    MsgLong,
		Args:    cobra.NoArgs,
		GroupID: cli.GroupMisc,
		RunE: func(cmd *cobra.Command, args []string) error {
			helpCmd, _, err := cmd.Root().Find([]string{"help"})
			if err != nil || helpCmd == nil || helpCmd.Name() != "help" || helpCmd.Run == nil {
				return fmt.Errorf("help command not found")
			}
			helpCmd.SetOut(cmd.OutOrStdout())
			helpCmd.Run(helpCmd, []string{"topics"})
			return nil
		},
	}
}
