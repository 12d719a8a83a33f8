package mods

// Message constants
const (
	MsgShort = "List the mods of a loadout in sort order"
	MsgLong  = `Mods lists the enabled mods of a loadout in the order their files are
layered, the last one winning any path several mods provide, followed by
the disabled mods.`
	MsgExample = `  modsync mods Skyrim`
)
