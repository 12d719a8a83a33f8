// Package paths locates modsync's own files.
//
// modsync follows the XDG Base Directory specification:
//
//   - Data: $XDG_DATA_HOME/modsync (snapshot store, archive blobs)
//   - Config: $XDG_CONFIG_HOME/modsync (config.toml, rules.toml)
//   - State: $XDG_STATE_HOME/modsync (log file)
//
// # Environment Variables
//
//   - MODSYNC_DATA_DIR: override the data directory
//   - MODSYNC_CONFIG_DIR: override the config directory
//   - MODSYNC_STATE_DIR: override the state directory
//
// A leading ~ in an override is expanded to the home directory.
package paths
