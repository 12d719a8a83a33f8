package synchronizer

import (
	"context"
	"strings"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/loadout"
)

// MergeAlgorithm decides which loadout wins at paths both claim.
type MergeAlgorithm int

const (
	// AOverridesB keeps the first loadout's files at shared paths.
	AOverridesB MergeAlgorithm = iota + 1
	// BOverridesA keeps the second loadout's files at shared paths.
	BOverridesA
)

func (a MergeAlgorithm) String() string {
	switch a {
	case AOverridesB:
		return "a-overrides-b"
	case BOverridesA:
		return "b-overrides-a"
	}
	return "unknown"
}

// ParseMergeAlgorithm reads "a-overrides-b" or "b-overrides-a".
func ParseMergeAlgorithm(s string) (MergeAlgorithm, error) {
	switch strings.ToLower(s) {
	case "a-overrides-b", "a":
		return AOverridesB, nil
	case "b-overrides-a", "b":
		return BOverridesA, nil
	}
	return 0, errors.Newf(errors.ErrNotSupported, "merge algorithm %q is not supported", s)
}

// MergeLoadouts combines a and b into the next revision of a. Mods present
// in both (same id) take the winner's version; the loser's files in them at
// paths the winner does not claim are kept. When the winner disabled a
// shared mod the loser enabled, those files stay live: an empty winner copy
// takes the loser's copy, otherwise they move to a separate enabled mod.
// Mods only the loser has are added without their files at paths the
// winner claims, so every path claimed by both resolves to the winner while
// paths claimed by one side pass through.
func (s *Synchronizer) MergeLoadouts(ctx context.Context, a, b *loadout.Loadout, algo MergeAlgorithm) (*loadout.Loadout, error) {
	var winner, loser *loadout.Loadout
	switch algo {
	case AOverridesB:
		winner, loser = a, b
	case BOverridesA:
		winner, loser = b, a
	default:
		return nil, errors.Newf(errors.ErrNotSupported, "merge algorithm %d is not supported", int(algo))
	}
	if a.Installation.Game != b.Installation.Game {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"cannot merge loadouts of different games %q and %q", a.Installation.Game, b.Installation.Game)
	}

	claimed, err := s.LoadoutToFlattened(ctx, winner)
	if err != nil {
		return nil, err
	}
	claims := func(p gamepath.GamePath) bool { return claimed.Tree.Has(p) }

	merged := a.Clone()
	merged.Revision = max(a.Revision, b.Revision) + 1
	merged.Mods = nil

	winnerMods := make(map[loadout.ModID]*loadout.Mod, len(winner.Mods))
	for _, m := range winner.Mods {
		winnerMods[m.ID] = m
	}
	loserMods := make(map[loadout.ModID]*loadout.Mod, len(loser.Mods))
	for _, m := range loser.Mods {
		loserMods[m.ID] = m
	}

	// a's collection order first, then what only b has
	seen := make(map[loadout.ModID]bool)
	for _, src := range []*loadout.Loadout{a, b} {
		for _, m := range src.Mods {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true

			w, inWinner := winnerMods[m.ID]
			l, inLoser := loserMods[m.ID]
			switch {
			case inWinner && inLoser && !w.Enabled && l.Enabled && len(w.Files) == 0:
				merged.Mods = append(merged.Mods, unclaimed(l.Clone(), claims))
			case inWinner && inLoser && !w.Enabled && l.Enabled:
				merged.Mods = append(merged.Mods, w.Clone())
				if split := splitFrom(w, l, claims); split != nil {
					merged.Mods = append(merged.Mods, split)
				}
			case inWinner && inLoser:
				out := w.Clone()
				for id, f := range l.Files {
					if _, dup := out.Files[id]; !dup && !claims(f.To()) {
						out.Files[id] = f
					}
				}
				merged.Mods = append(merged.Mods, out)
			case inWinner:
				merged.Mods = append(merged.Mods, w.Clone())
			default:
				merged.Mods = append(merged.Mods, unclaimed(l.Clone(), claims))
			}
		}
	}

	s.log.Info().
		Str("a", a.Name).
		Str("b", b.Name).
		Str("algorithm", algo.String()).
		Int("mods", len(merged.Mods)).
		Msg("Merged loadouts")
	return merged, nil
}

// unclaimed drops the files of m at paths the winner claims.
func unclaimed(m *loadout.Mod, claims func(gamepath.GamePath) bool) *loadout.Mod {
	for id, f := range m.Files {
		if claims(f.To()) {
			delete(m.Files, id)
		}
	}
	return m
}

// splitFrom carries the loser's files of a mod the winner disabled into a new
// enabled mod, or returns nil when none remain.
func splitFrom(w, l *loadout.Mod, claims func(gamepath.GamePath) bool) *loadout.Mod {
	out := l.Clone()
	out.ID = loadout.NewModID()
	out.Name = l.Name + " (merged)"
	for id, f := range out.Files {
		if _, dup := w.Files[id]; dup || claims(f.To()) {
			delete(out.Files, id)
		}
	}
	if len(out.Files) == 0 {
		return nil
	}
	return out
}
