package deleteloadout

// Message constants
const (
	MsgShort = "Delete a loadout and its history"
	MsgLong  = `Delete removes a loadout from the store without touching disk. A loadout
whose mods are still placed in the installation is refused, since nothing
would be left recording those files: reset it first, or pass --force to
leave them behind.`
	MsgFlagForce = "Delete even when the loadout's mods are still on disk"
	MsgExample   = `  modsync delete "Skyrim Experiments"
  modsync delete "Skyrim Experiments" --force`
)
