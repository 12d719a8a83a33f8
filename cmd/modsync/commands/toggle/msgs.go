package toggle

// Message constants
const (
	MsgShort = "Enable or disable a mod"
	MsgLong  = `Toggle flips whether a mod takes part in the loadout. With --on or --off
the state is set instead of flipped. The change reaches the installation on
the next apply.`
	MsgFlagOn  = "Enable the mod"
	MsgFlagOff = "Disable the mod"
	MsgExample = `  modsync toggle Skyrim SkyUI
  modsync toggle Skyrim SkyUI --off`
)
