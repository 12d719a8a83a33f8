package merge

// Message constants
const (
	MsgShort = "Merge the mods of one loadout into another"
	MsgLong  = `Merge folds the mods of FROM into INTO and publishes the result as INTO's
next revision. Paths both loadouts provide resolve to the winner chosen by
--algorithm:

  a-overrides-b  INTO's files win (default)
  b-overrides-a  FROM's files win

Both loadouts must manage the same game.`
	MsgFlagAlgorithm = "Which loadout wins shared paths: a-overrides-b or b-overrides-a"
	MsgExample       = `  modsync merge Skyrim "Skyrim Experiments"
  modsync merge Skyrim "Skyrim Experiments" --algorithm b-overrides-a`
)
