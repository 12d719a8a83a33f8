package version

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/cmd/modsync/internal/cli"
	"github.com/arthur-debert/modsync/internal/version"
	"github.com/arthur-debert/modsync/pkg/output"
)

// Info is the build information of the binary
type Info struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

// Write implements output.View.
func (i *Info) Write(p *output.Printer) error {
	p.Line("modsync version %s", i.Version)
	p.Line("  commit: %s", i.Commit)
	p.Line("  built:  %s", i.Date)
	return nil
}

// NewCommand creates the version command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgShort,
		Long:    MsgLong,
		Args:    cobra.NoArgs,
		GroupID: cli.GroupMisc,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := cli.Renderer(cmd)
			if err != nil {
				return err
			}
			return r.Render(&Info{Version: version.Version, Commit: version.Commit, Date: version.Date})
		},
	}
}
