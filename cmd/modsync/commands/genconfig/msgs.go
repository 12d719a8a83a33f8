package genconfig

// Message constants
const (
	MsgShort = "Generate a commented configuration file"
	MsgLong  = `Gen-config prints the default configuration with every value commented
out, ready to be edited. With --write it is saved to the config file
(--config, or config.toml in modsync's config directory).`
	MsgFlagWrite = "Write config to file instead of stdout"
	MsgFlagForce = "Overwrite an existing config file"
	MsgExample   = `  modsync gen-config > ~/.config/modsync/config.toml
  modsync gen-config --write`
)
