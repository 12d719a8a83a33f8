// Package loadout holds the virtual model: a Loadout is an ordered set of
// Mods, each contributing files to GamePaths of one game installation.
//
// Values are treated as immutable once shared. Every mutation helper returns
// a deep copy with the revision bumped, and the synchronizer derives
// Flattened and FileTree views from a single revision.
package loadout

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/sorter"
)

type (
	// LoadoutID identifies a Loadout.
	LoadoutID string
	// ModID identifies a Mod within the store.
	ModID string
	// FileID identifies a file within its Mod.
	FileID string
)

// NewLoadoutID returns a random id.
func NewLoadoutID() LoadoutID { return LoadoutID(uuid.NewString()) }

// NewModID returns a random id.
func NewModID() ModID { return ModID(uuid.NewString()) }

// NewFileID returns a random id.
func NewFileID() FileID { return FileID(uuid.NewString()) }

// Mod is a named bundle of files with ordering rules.
type Mod struct {
	ID        ModID
	Name      string
	Category  string
	Enabled   bool
	SortRules []sorter.Rule[ModID]
	Files     map[FileID]ModFile
}

// NewMod returns an enabled, empty mod.
func NewMod(name, category string) *Mod {
	return &Mod{
		ID:       NewModID(),
		Name:     name,
		Category: category,
		Enabled:  true,
		Files:    make(map[FileID]ModFile),
	}
}

// Clone returns a deep copy.
func (m *Mod) Clone() *Mod {
	c := *m
	c.SortRules = slices.Clone(m.SortRules)
	c.Files = make(map[FileID]ModFile, len(m.Files))
	for id, f := range m.Files {
		c.Files[id] = f
	}
	return &c
}

// Add stores f in the mod, replacing any file with the same id.
func (m *Mod) Add(f ModFile) {
	if m.Files == nil {
		m.Files = make(map[FileID]ModFile)
	}
	m.Files[f.FileID()] = f
}

// SortedFiles returns the files ordered by target path, then id.
func (m *Mod) SortedFiles() []ModFile {
	out := make([]ModFile, 0, len(m.Files))
	for _, f := range m.Files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].To(), out[j].To()
		if c := gamepath.CaseSensitive.Compare(a, b); c != 0 {
			return c < 0
		}
		return out[i].FileID() < out[j].FileID()
	})
	return out
}

// Installation is the real directory tree a Loadout targets.
type Installation struct {
	Game      string
	Locations map[gamepath.LocationID]string
}

// Root returns the directory of loc.
func (i Installation) Root(loc gamepath.LocationID) (string, bool) {
	root, ok := i.Locations[loc]
	return root, ok
}

// LocationIDs returns the configured locations, sorted.
func (i Installation) LocationIDs() []gamepath.LocationID {
	out := make([]gamepath.LocationID, 0, len(i.Locations))
	for loc := range i.Locations {
		out = append(out, loc)
	}
	slices.Sort(out)
	return out
}

// Resolve maps p to a filesystem path.
func (i Installation) Resolve(p gamepath.GamePath) (string, error) {
	root, ok := i.Locations[p.Location]
	if !ok {
		return "", errors.Newf(errors.ErrPathInvalid, "installation has no location %q", p.Location)
	}
	return filepath.Join(root, filepath.FromSlash(string(p.Path))), nil
}

// ToGamePath maps a filesystem path back to the GamePath of the location
// whose root is its longest prefix.
func (i Installation) ToGamePath(abs string) (gamepath.GamePath, bool) {
	abs = filepath.Clean(abs)
	var (
		best    gamepath.LocationID
		bestLen = -1
	)
	for loc, root := range i.Locations {
		root = filepath.Clean(root)
		if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
			continue
		}
		if len(root) > bestLen {
			best, bestLen = loc, len(root)
		}
	}
	if bestLen < 0 {
		return gamepath.GamePath{}, false
	}
	rel, err := filepath.Rel(filepath.Clean(i.Locations[best]), abs)
	if err != nil {
		return gamepath.GamePath{}, false
	}
	if rel == "." {
		rel = ""
	}
	p, err := gamepath.New(best, filepath.ToSlash(rel))
	if err != nil {
		return gamepath.GamePath{}, false
	}
	return p, true
}

// Loadout is an ordered collection of mods targeting one installation.
type Loadout struct {
	ID           LoadoutID
	Name         string
	Installation Installation
	Revision     uint64
	Mods         []*Mod
}

// New returns an empty loadout at revision 1.
func New(name string, inst Installation) *Loadout {
	return &Loadout{
		ID:           NewLoadoutID(),
		Name:         name,
		Installation: inst,
		Revision:     1,
	}
}

// Clone returns a deep copy.
func (l *Loadout) Clone() *Loadout {
	c := *l
	c.Installation.Locations = make(map[gamepath.LocationID]string, len(l.Installation.Locations))
	for k, v := range l.Installation.Locations {
		c.Installation.Locations[k] = v
	}
	c.Mods = make([]*Mod, len(l.Mods))
	for i, m := range l.Mods {
		c.Mods[i] = m.Clone()
	}
	return &c
}

func (l *Loadout) next() *Loadout {
	c := l.Clone()
	c.Revision++
	return c
}

// Mod returns the mod with id.
func (l *Loadout) Mod(id ModID) (*Mod, bool) {
	for _, m := range l.Mods {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// FindMod resolves a mod by id or, failing that, by case-insensitive name.
func (l *Loadout) FindMod(ref string) (*Mod, error) {
	if m, ok := l.Mod(ModID(ref)); ok {
		return m, nil
	}
	var found *Mod
	for _, m := range l.Mods {
		if strings.EqualFold(m.Name, ref) {
			if found != nil {
				return nil, errors.Newf(errors.ErrInvalidInput, "mod name %q is ambiguous", ref)
			}
			found = m
		}
	}
	if found == nil {
		return nil, errors.Newf(errors.ErrNotFound, "no mod %q in loadout %s", ref, l.Name)
	}
	return found, nil
}

// EnabledMods returns the enabled mods in collection order.
func (l *Loadout) EnabledMods() []*Mod {
	out := make([]*Mod, 0, len(l.Mods))
	for _, m := range l.Mods {
		if m.Enabled {
			out = append(out, m)
		}
	}
	return out
}

// FileCount returns the number of files across all mods.
func (l *Loadout) FileCount() int {
	n := 0
	for _, m := range l.Mods {
		n += len(m.Files)
	}
	return n
}

// WithMod returns the next revision with m added, or replacing the mod with
// the same id in place.
func (l *Loadout) WithMod(m *Mod) *Loadout {
	c := l.next()
	for i, existing := range c.Mods {
		if existing.ID == m.ID {
			c.Mods[i] = m.Clone()
			return c
		}
	}
	c.Mods = append(c.Mods, m.Clone())
	return c
}

// WithoutMod returns the next revision without the mod id.
func (l *Loadout) WithoutMod(id ModID) (*Loadout, error) {
	if _, ok := l.Mod(id); !ok {
		return nil, errors.Newf(errors.ErrNotFound, "no mod %s in loadout %s", id, l.Name)
	}
	c := l.next()
	c.Mods = slices.DeleteFunc(c.Mods, func(m *Mod) bool { return m.ID == id })
	return c, nil
}

// WithModEnabled returns the next revision with the mod's enabled flag set.
func (l *Loadout) WithModEnabled(id ModID, enabled bool) (*Loadout, error) {
	if _, ok := l.Mod(id); !ok {
		return nil, errors.Newf(errors.ErrNotFound, "no mod %s in loadout %s", id, l.Name)
	}
	c := l.next()
	m, _ := c.Mod(id)
	m.Enabled = enabled
	return c, nil
}

// Renamed returns the next revision carrying name.
func (l *Loadout) Renamed(name string) (*Loadout, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(errors.ErrInvalidInput, "loadout name must not be empty")
	}
	c := l.next()
	c.Name = name
	return c, nil
}
