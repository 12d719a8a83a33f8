package modsync

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort = "Keep modded game installations in sync with their loadouts"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Config file (default is $XDG_CONFIG_HOME/modsync/config.toml)"
	MsgFlagFormat  = "Output format: auto, term, text, json or yaml"

	// Group titles
	MsgGroupLoadouts = "LOADOUTS:"
	MsgGroupMods     = "MODS:"
	MsgGroupMisc     = "MISC:"

	MsgErrNoCommand = "no command specified"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
