package completion

import (
	_ "embed"
	"strings"
)

// MsgShort describes the command
const MsgShort = "Generate shell completion script"

// Embedded message files
var (
	//go:embed completion-long.txt
	msgLongRaw string
	MsgLong    = strings.TrimSpace(msgLongRaw)
)
