package testenv

import (
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/loadout"
)

func installation() loadout.Installation {
	return loadout.Installation{
		Game: "testgame",
		Locations: map[gamepath.LocationID]string{
			gamepath.Game:  GameDir,
			gamepath.Saves: SavesDir,
		},
	}
}
