// Package cli holds what every modsync subcommand shares: the global flag
// names, opening the environment and rendering results.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/pkg/commands"
	"github.com/arthur-debert/modsync/pkg/config"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/output"
	"github.com/arthur-debert/modsync/pkg/paths"
)

// Global flag names
const (
	FlagVerbose = "verbose"
	FlagConfig  = "config"
	FlagFormat  = "format"
)

// Command group ids
const (
	GroupLoadouts = "loadouts"
	GroupMods     = "mods"
	GroupMisc     = "misc"
)

// MsgErrOpenEnv wraps failures to open the environment.
const MsgErrOpenEnv = "failed to open modsync environment: %w"

// Paths resolves modsync's own directories.
func Paths() (*paths.Paths, error) {
	return paths.New()
}

// LoadConfig reads the configuration, honoring --config.
func LoadConfig(cmd *cobra.Command, p *paths.Paths) (*config.Config, error) {
	file, _ := cmd.Root().PersistentFlags().GetString(FlagConfig)
	return config.Load(config.Options{File: file, DefaultFile: p.ConfigFilePath()})
}

// OpenEnv loads the configuration and opens the environment. The caller
// must Close it.
func OpenEnv(cmd *cobra.Command) (*commands.Env, error) {
	p, err := Paths()
	if err != nil {
		return nil, fmt.Errorf(MsgErrOpenEnv, err)
	}
	cfg, err := LoadConfig(cmd, p)
	if err != nil {
		return nil, err
	}
	env, err := commands.Open(commands.EnvOptions{Config: cfg, Paths: p})
	if err != nil {
		return nil, fmt.Errorf(MsgErrOpenEnv, err)
	}
	return env, nil
}

// Renderer builds a renderer for --format over the command's output.
func Renderer(cmd *cobra.Command) (*output.Renderer, error) {
	name, _ := cmd.Root().PersistentFlags().GetString(FlagFormat)
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return output.NewRenderer(format, cmd.OutOrStdout()), nil
}

// Run opens the environment, calls fn and renders its result. A result
// returned together with an error is rendered before the error is passed
// on, so a refused apply still shows what drifted.
func Run[T any](cmd *cobra.Command, fn func(ctx context.Context, env *commands.Env) (*T, error)) error {
	r, err := Renderer(cmd)
	if err != nil {
		return err
	}
	env, err := OpenEnv(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := env.Close(); cerr != nil {
			logger := logging.GetLogger("cli")
			logger.Warn().Err(cerr).Msg("Failed to close store")
		}
	}()

	result, runErr := fn(cmd.Context(), env)
	return Show(r, result, runErr)
}

// Show renders result when there is one, and the error in structured
// formats so scripts can read it from the same stream.
func Show[T any](r *output.Renderer, result *T, err error) error {
	if result != nil {
		if rerr := r.Render(result); rerr != nil {
			return rerr
		}
	}
	if err != nil && r.Format().Structured() {
		_ = r.RenderError(err)
	}
	return err
}

// LoadoutNames completes the first argument with managed loadout names.
func LoadoutNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	env, err := OpenEnv(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer func() { _ = env.Close() }()

	res, err := commands.ListLoadouts(cmd.Context(), env)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := make([]string, 0, len(res.Loadouts))
	for _, l := range res.Loadouts {
		names = append(names, l.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// ModNames completes the second argument with the mods of the loadout named
// by the first.
func ModNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return LoadoutNames(cmd, args, toComplete)
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	env, err := OpenEnv(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer func() { _ = env.Close() }()

	res, err := commands.ListMods(cmd.Context(), env, commands.ModsOptions{Loadout: args[0]})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := make([]string, 0, len(res.Mods))
	for _, m := range res.Mods {
		names = append(names, m.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
