package apply

import (
	_ "embed"
	"strings"
)

// Message constants
const (
	MsgShort      = "Apply a loadout to its installation"
	MsgFlagDryRun = "Preview changes without executing them"
	MsgExample    = `  modsync apply Skyrim
  modsync apply Skyrim --dry-run`
)

// Embedded message files
var (
	//go:embed apply-long.txt
	msgLongRaw string
	MsgLong    = strings.TrimSpace(msgLongRaw)
)
