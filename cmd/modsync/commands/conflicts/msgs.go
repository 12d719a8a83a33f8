package conflicts

// Message constants
const (
	MsgShort   = "Show paths provided by more than one mod"
	MsgLong    = "Conflicts lists every path several enabled mods provide, with the mod whose file wins and the mods it overrides."
	MsgFlagMod = "Only show paths this mod provides"
	MsgExample = `  modsync conflicts Skyrim
  modsync conflicts Skyrim --mod SkyUI`
)
