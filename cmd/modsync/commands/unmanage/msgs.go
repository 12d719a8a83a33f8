package unmanage

// Message constants
const (
	MsgShort = "Stop managing an installation"
	MsgLong  = `Unmanage resets the installation to its original files and then deletes the
loadout and its history. When the reset cannot run, for example because
files changed outside modsync, the loadout is kept.

Archived content stays in the archive store.`
	MsgExample = `  modsync unmanage Skyrim`
)
