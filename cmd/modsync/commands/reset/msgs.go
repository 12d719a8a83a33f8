package reset

// Message constants
const (
	MsgShort = "Put an installation back to its original files"
	MsgLong  = `Reset removes every file the loadout's mods placed and restores the game
files recorded when the installation was first managed, from the archive.
The loadout keeps its mods as pending edits, so a later apply deploys them
again.

Like apply, reset refuses to run while files changed outside modsync; ingest
them first.`
	MsgExample = `  modsync reset Skyrim`
)
