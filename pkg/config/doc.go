// Package config loads modsync's configuration.
//
// Sources are layered with koanf, later ones winning:
//
//  1. the embedded defaults (embedded/defaults.toml)
//  2. the user file, $XDG_CONFIG_HOME/modsync/config.toml or the path given
//     by --config / MODSYNC_CONFIG
//  3. MODSYNC_* environment variables
//
// The merged tree is decoded into Config with mapstructure, so durations
// may be written as "250ms" and lists as comma separated strings.
package config
