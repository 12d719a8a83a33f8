package loadout

import (
	"context"
	"io"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/hashing"
)

// ModFile is a file a mod places at a GamePath. The set of implementations
// is closed: FromArchive, Generated and GameFile. Consumers switch over the
// concrete type and panic on anything else.
type ModFile interface {
	FileID() FileID
	To() gamepath.GamePath
	modFile()
}

// FromArchive is content stored in the archive store under its hash.
type FromArchive struct {
	ID   FileID
	Path gamepath.GamePath
	Hash hashing.Hash
	Size int64
}

// Generated is content produced at apply time by a named Generator.
type Generated struct {
	ID        FileID
	Path      gamepath.GamePath
	Generator string
}

// GameFile is an original file of the installation, tracked so that mods
// overriding it can be reverted.
type GameFile struct {
	ID   FileID
	Path gamepath.GamePath
	Hash hashing.Hash
	Size int64
}

func (f FromArchive) FileID() FileID         { return f.ID }
func (f FromArchive) To() gamepath.GamePath { return f.Path }
func (FromArchive) modFile()                 {}

func (f Generated) FileID() FileID         { return f.ID }
func (f Generated) To() gamepath.GamePath { return f.Path }
func (Generated) modFile()                 {}

func (f GameFile) FileID() FileID         { return f.ID }
func (f GameFile) To() gamepath.GamePath { return f.Path }
func (GameFile) modFile()                 {}

// KnownHash returns the content hash a file declares up front. Generated
// files have none; their hash comes from their Generator.
func KnownHash(f ModFile) (hashing.Hash, int64, bool) {
	switch v := f.(type) {
	case FromArchive:
		return v.Hash, v.Size, true
	case GameFile:
		return v.Hash, v.Size, true
	case Generated:
		return 0, 0, false
	default:
		panic(unknownVariant(f))
	}
}

// Retarget returns a copy of f placed at p.
func Retarget(f ModFile, p gamepath.GamePath) ModFile {
	switch v := f.(type) {
	case FromArchive:
		v.Path = p
		return v
	case GameFile:
		v.Path = p
		return v
	case Generated:
		v.Path = p
		return v
	default:
		panic(unknownVariant(f))
	}
}

func unknownVariant(f ModFile) error {
	return errors.Newf(errors.ErrInternal, "unknown mod file variant %T", f)
}

// Generator writes the content of Generated files.
type Generator interface {
	Generate(ctx context.Context, w io.Writer, l *Loadout, f Generated) error
}

// HashReporter is implemented by generators that know their output hash
// without producing the content.
type HashReporter interface {
	Hash(ctx context.Context, l *Loadout, f Generated) (hashing.Hash, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, w io.Writer, l *Loadout, f Generated) error

// Generate implements Generator.
func (fn GeneratorFunc) Generate(ctx context.Context, w io.Writer, l *Loadout, f Generated) error {
	return fn(ctx, w, l, f)
}

// Generators maps generator names to implementations.
type Generators map[string]Generator

// Lookup returns the generator registered under name.
func (g Generators) Lookup(name string) (Generator, error) {
	gen, ok := g[name]
	if !ok {
		return nil, errors.Newf(errors.ErrGeneratorUnset, "no generator registered as %q", name)
	}
	return gen, nil
}

// HashOf returns the hash the generated file f would have, asking the
// generator directly when it can report one and otherwise generating the
// content into a hasher.
func (g Generators) HashOf(ctx context.Context, l *Loadout, f Generated) (hashing.Hash, error) {
	gen, err := g.Lookup(f.Generator)
	if err != nil {
		return 0, err
	}
	if hr, ok := gen.(HashReporter); ok {
		return hr.Hash(ctx, l, f)
	}
	w := hashing.NewWriter(nil)
	if err := gen.Generate(ctx, w, l, f); err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileWrite, "generate %s", f.Path)
	}
	return w.Sum(), nil
}
