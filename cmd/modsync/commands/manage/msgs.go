package manage

import (
	_ "embed"
	"strings"
)

// Message constants
const (
	MsgShort        = "Start tracking a game installation as a loadout"
	MsgFlagGame     = "Game identifier (defaults to the loadout name)"
	MsgFlagLocation = "Location root as ID=DIR, repeatable (e.g. Saves=~/Documents/My Games/Skyrim/Saves)"
)

// Embedded message files
var (
	//go:embed manage-long.txt
	msgLongRaw string
	MsgLong    = strings.TrimSpace(msgLongRaw)

	//go:embed manage-example.txt
	msgExampleRaw string
	MsgExample    = strings.TrimSpace(msgExampleRaw)
)
