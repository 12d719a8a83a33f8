package genconfig

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/arthur-debert/modsync/pkg/config"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/output"
)

// GenConfigOptions defines the options for the GenConfig command.
type GenConfigOptions struct {
	FS afero.Fs
	// Path is written when Write is set.
	Path  string
	Write bool
	// Force overwrites an existing file.
	Force bool
}

// GenConfigResult holds the generated file.
type GenConfigResult struct {
	Content string `json:"content" yaml:"content"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// GenConfig renders the defaults with every value commented out, and
// optionally saves them.
func GenConfig(opts GenConfigOptions) (*GenConfigResult, error) {
	log := logging.GetLogger("commands").With().Str("command", "GenConfig").Logger()
	log.Debug().Bool("write", opts.Write).Msg("Executing command")

	result := &GenConfigResult{Content: config.GenerateConfigContent()}
	if !opts.Write {
		return result, nil
	}

	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if exists, _ := afero.Exists(fs, opts.Path); exists && !opts.Force {
		return nil, errors.Newf(errors.ErrAlreadyExists, "%s already exists, use --force to overwrite", opts.Path)
	}
	if err := fs.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "create %s", filepath.Dir(opts.Path))
	}
	if err := afero.WriteFile(fs, opts.Path, []byte(result.Content), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "write %s", opts.Path)
	}
	result.Path = opts.Path

	log.Info().Str("path", opts.Path).Msg("Command finished")
	return result, nil
}

// Write implements output.View.
func (r *GenConfigResult) Write(p *output.Printer) error {
	if r.Path != "" {
		p.Line("%s %s", p.Style("Success", "Wrote"), p.Style("Path", r.Path))
		return nil
	}
	p.Line("%s", strings.TrimRight(r.Content, "\n"))
	return nil
}
