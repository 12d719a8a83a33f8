package remove

// Message constants
const (
	MsgShort   = "Remove a mod from a loadout"
	MsgLong    = "Remove drops a mod from the loadout. Its files leave the installation on the next apply; archived content is kept."
	MsgExample = `  modsync remove Skyrim "Old Texture Pack"`
)
