package ingest

// Message constants
const (
	MsgShort = "Absorb changes made to the installation outside modsync"
	MsgLong  = `Ingest reads the installation and folds every change made since the last
apply back into the loadout:

  - changed files stay with the mod that provided them
  - new files join the category mod of their location (saves, preferences...)
  - deleted files are removed from every mod

Changed and new files are backed up into the archive so the loadout can
reproduce them.`
	MsgExample = `  modsync ingest Skyrim`
)
