package loadout

import (
	"encoding/json"
	"sort"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/hashing"
	"github.com/arthur-debert/modsync/pkg/sorter"
)

const (
	kindFromArchive = "archive"
	kindGenerated   = "generated"
	kindGameFile    = "game"
)

type fileRecord struct {
	Kind      string            `json:"kind"`
	ID        FileID            `json:"id"`
	To        gamepath.GamePath `json:"to"`
	Hash      *hashing.Hash     `json:"hash,omitempty"`
	Size      int64             `json:"size,omitempty"`
	Generator string            `json:"generator,omitempty"`
}

type modRecord struct {
	ID        ModID                `json:"id"`
	Name      string               `json:"name"`
	Category  string               `json:"category,omitempty"`
	Enabled   bool                 `json:"enabled"`
	SortRules []sorter.Rule[ModID] `json:"sort_rules,omitempty"`
	Files     []fileRecord         `json:"files"`
}

func encodeFile(f ModFile) fileRecord {
	switch v := f.(type) {
	case FromArchive:
		h := v.Hash
		return fileRecord{Kind: kindFromArchive, ID: v.ID, To: v.Path, Hash: &h, Size: v.Size}
	case GameFile:
		h := v.Hash
		return fileRecord{Kind: kindGameFile, ID: v.ID, To: v.Path, Hash: &h, Size: v.Size}
	case Generated:
		return fileRecord{Kind: kindGenerated, ID: v.ID, To: v.Path, Generator: v.Generator}
	default:
		panic(unknownVariant(f))
	}
}

func decodeFile(r fileRecord) (ModFile, error) {
	switch r.Kind {
	case kindFromArchive, kindGameFile:
		if r.Hash == nil {
			return nil, errors.Newf(errors.ErrInvalidInput, "%s file %s has no hash", r.Kind, r.ID)
		}
		if r.Kind == kindGameFile {
			return GameFile{ID: r.ID, Path: r.To, Hash: *r.Hash, Size: r.Size}, nil
		}
		return FromArchive{ID: r.ID, Path: r.To, Hash: *r.Hash, Size: r.Size}, nil
	case kindGenerated:
		return Generated{ID: r.ID, Path: r.To, Generator: r.Generator}, nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "unknown file kind %q", r.Kind)
}

// MarshalJSON writes files as a list ordered by id so equal mods encode
// identically.
func (m *Mod) MarshalJSON() ([]byte, error) {
	rec := modRecord{
		ID:        m.ID,
		Name:      m.Name,
		Category:  m.Category,
		Enabled:   m.Enabled,
		SortRules: m.SortRules,
		Files:     make([]fileRecord, 0, len(m.Files)),
	}
	for _, f := range m.Files {
		rec.Files = append(rec.Files, encodeFile(f))
	}
	sort.Slice(rec.Files, func(i, j int) bool { return rec.Files[i].ID < rec.Files[j].ID })
	return json.Marshal(rec)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Mod) UnmarshalJSON(data []byte) error {
	var rec modRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	files := make(map[FileID]ModFile, len(rec.Files))
	for _, fr := range rec.Files {
		f, err := decodeFile(fr)
		if err != nil {
			return err
		}
		files[f.FileID()] = f
	}
	*m = Mod{
		ID:        rec.ID,
		Name:      rec.Name,
		Category:  rec.Category,
		Enabled:   rec.Enabled,
		SortRules: rec.SortRules,
		Files:     files,
	}
	return nil
}

type installationRecord struct {
	Game      string                         `json:"game"`
	Locations map[gamepath.LocationID]string `json:"locations"`
}

type loadoutRecord struct {
	ID           LoadoutID          `json:"id"`
	Name         string             `json:"name"`
	Installation installationRecord `json:"installation"`
	Revision     uint64             `json:"revision"`
	Mods         []*Mod             `json:"mods"`
}

// MarshalJSON implements json.Marshaler.
func (l *Loadout) MarshalJSON() ([]byte, error) {
	return json.Marshal(loadoutRecord{
		ID:   l.ID,
		Name: l.Name,
		Installation: installationRecord{
			Game:      l.Installation.Game,
			Locations: l.Installation.Locations,
		},
		Revision: l.Revision,
		Mods:     l.Mods,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Loadout) UnmarshalJSON(data []byte) error {
	var rec loadoutRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	seen := make(map[ModID]bool, len(rec.Mods))
	for _, m := range rec.Mods {
		if seen[m.ID] {
			return errors.Newf(errors.ErrInvalidInput, "duplicate mod id %s", m.ID)
		}
		seen[m.ID] = true
	}
	*l = Loadout{
		ID:   rec.ID,
		Name: rec.Name,
		Installation: Installation{
			Game:      rec.Installation.Game,
			Locations: rec.Installation.Locations,
		},
		Revision: rec.Revision,
		Mods:     rec.Mods,
	}
	return nil
}
