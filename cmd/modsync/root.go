package modsync

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/commands/apply"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/completion"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/conflicts"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/copyloadout"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/deleteloadout"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/genconfig"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/history"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/ingest"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/install"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/list"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/manage"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/merge"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/mods"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/plan"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/remove"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/rename"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/reset"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/toggle"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/topics"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/unmanage"
	"github.com/arthur-debert/modsync/cmd/modsync/commands/version"
	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	helptopics "github.com/arthur-debert/modsync/pkg/cobrax/topics"
	"github.com/arthur-debert/modsync/pkg/logging"

	buildinfo "github.com/arthur-debert/modsync/internal/version"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var (
		verbosity  int
		configFile string
		format     string
	)

	rootCmd := &cobra.Command{
		Use:     "modsync",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: buildinfo.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, cli.FlagVerbose, "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&configFile, cli.FlagConfig, "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&format, cli.FlagFormat, "f", "auto", MsgFlagFormat)
	_ = rootCmd.RegisterFlagCompletionFunc(cli.FlagFormat, cobra.FixedCompletions(
		[]string{"auto", "term", "text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))

	rootCmd.AddGroup(
		&cobra.Group{ID: cli.GroupLoadouts, Title: MsgGroupLoadouts},
		&cobra.Group{ID: cli.GroupMods, Title: MsgGroupMods},
		&cobra.Group{ID: cli.GroupMisc, Title: MsgGroupMisc},
	)
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(
		manage.NewCommand(),
		list.NewCommand(),
		plan.NewCommand(),
		apply.NewCommand(),
		ingest.NewCommand(),
		rename.NewCommand(),
		merge.NewCommand(),
		copyloadout.NewCommand(),
		history.NewCommand(),
		reset.NewCommand(),
		deleteloadout.NewCommand(),
		unmanage.NewCommand(),

		mods.NewCommand(),
		install.NewCommand(),
		toggle.NewCommand(),
		remove.NewCommand(),
		conflicts.NewCommand(),

		genconfig.NewCommand(),
		topics.NewCommand(),
		version.NewCommand(),
		completion.NewCommand(),
	)

	opts := helptopics.Options{
		Extensions: []string{".md", ".txt"},
		Renderer:   helptopics.NewGlamourRenderer(),
	}
	if _, err := helptopics.InitializeWithOptions(rootCmd, TopicsFS(), opts); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}
	rootCmd.SetHelpCommandGroupID(cli.GroupMisc)

	return rootCmd
}
