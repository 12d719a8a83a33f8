package copyloadout

// Message constants
const (
	MsgShort = "Copy a loadout under a new name"
	MsgLong  = `Copy publishes a new loadout with the same mods, files and recorded disk
state as the source. Without a name the copy is called "<loadout> (copy)".
Edits to either loadout leave the other alone.`
	MsgExample = `  modsync copy Skyrim
  modsync copy Skyrim "Skyrim Experiments"`
)
