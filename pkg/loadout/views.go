package loadout

import (
	"github.com/arthur-debert/modsync/pkg/pathtree"
)

// Pair is the winning (mod, file) at one path of a Flattened loadout.
type Pair struct {
	Mod  *Mod
	File ModFile
}

// Flattened maps every targeted path to exactly one winning Pair.
type Flattened struct {
	Loadout  LoadoutID
	Revision uint64
	Tree     *pathtree.Tree[Pair]
}

// FileTree is a Flattened loadout with mod attribution erased.
type FileTree struct {
	Loadout  LoadoutID
	Revision uint64
	Tree     *pathtree.Tree[ModFile]
}
