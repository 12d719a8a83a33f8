package plan

// Message constants
const (
	MsgShort = "Preview what applying a loadout would change"
	MsgLong  = `Plan compares the loadout with the installation and lists the files an
apply would extract, write and delete, without touching anything.

When files in the installation changed since modsync last recorded them the
plan is refused: those changes must be ingested first. See 'modsync help drift'.`
	MsgExample = `  modsync plan Skyrim
  modsync plan Skyrim --format yaml`
)
