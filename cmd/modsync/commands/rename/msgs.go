package rename

// Message constants
const (
	MsgShort   = "Rename a loadout"
	MsgExample = `  modsync rename Skyrim "Skyrim Survival"`
)
