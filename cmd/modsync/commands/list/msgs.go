package list

// Message constants
const (
	MsgShort   = "List managed loadouts"
	MsgLong    = "List shows every managed loadout with its current and applied revision."
	MsgExample = `  modsync list
  modsync list --format json`
)
