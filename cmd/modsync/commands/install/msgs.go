package install

import (
	_ "embed"
	"strings"
)

// Message constants
const (
	MsgShort        = "Install a mod from a directory"
	MsgFlagName     = "Mod name (defaults to the directory name)"
	MsgFlagCategory = "Mod category"
	MsgFlagLocation = "Location the directory is laid out against"
	MsgFlagReplace  = "Replace the files of an existing mod with the same name"
)

// Embedded message files
var (
	//go:embed install-long.txt
	msgLongRaw string
	MsgLong    = strings.TrimSpace(msgLongRaw)
)

// MsgExample shows typical installs
const MsgExample = `  # Install an unpacked mod into the game directory
  modsync install Skyrim ~/Downloads/SkyUI

  # Update it later
  modsync install Skyrim ~/Downloads/SkyUI-5.2 --name SkyUI --replace`
