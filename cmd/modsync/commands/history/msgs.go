package history

// Message constants
const (
	MsgShort     = "Show the published revisions of a loadout"
	MsgLong      = "History lists every snapshot published for a loadout, newest first, with the revision it holds and the revision last applied."
	MsgFlagLimit = "Show at most this many entries (0 for all)"
	MsgExample   = `  modsync history Skyrim --limit 10`
)
