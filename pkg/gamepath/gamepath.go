// Package gamepath defines the two-part path used everywhere in modsync: a
// location identifier naming a root directory of a game installation, and a
// slash-separated path relative to that root.
//
// A GamePath keeps the casing it was created with. Comparison goes through a
// Case value so that lookups can fold case on filesystems that do.
package gamepath

import (
	"fmt"
	"path"
	"runtime"
	"strings"

	"github.com/arthur-debert/modsync/pkg/errors"
)

// LocationID names a root directory of an installation ("Game", "Saves", ...).
type LocationID string

// Well-known locations
const (
	Game        LocationID = "Game"
	Saves       LocationID = "Saves"
	Preferences LocationID = "Preferences"
	AppData     LocationID = "AppData"
)

// RelativePath is a cleaned, slash-separated path below a location root. The
// empty RelativePath denotes the root itself.
type RelativePath string

// NewRelativePath normalizes p: backslashes become slashes, leading
// separators and "." segments are dropped. Paths escaping the root with ".."
// are rejected.
func NewRelativePath(p string) (RelativePath, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", nil
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", errors.Newf(errors.ErrPathInvalid, "relative path %q escapes its root", p)
		}
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", nil
	}
	return RelativePath(cleaned), nil
}

// Segments returns the path components; nil for the root.
func (r RelativePath) Segments() []string {
	if r == "" {
		return nil
	}
	return strings.Split(string(r), "/")
}

// Parent returns the containing directory, or the root for top-level entries.
func (r RelativePath) Parent() RelativePath {
	i := strings.LastIndexByte(string(r), '/')
	if i < 0 {
		return ""
	}
	return r[:i]
}

// Name returns the final path component.
func (r RelativePath) Name() string {
	i := strings.LastIndexByte(string(r), '/')
	return string(r[i+1:])
}

// Join appends a relative child path.
func (r RelativePath) Join(child string) (RelativePath, error) {
	if r == "" {
		return NewRelativePath(child)
	}
	return NewRelativePath(string(r) + "/" + child)
}

// GamePath addresses a file or directory inside an installation.
type GamePath struct {
	Location LocationID
	Path     RelativePath
}

// New builds a GamePath, normalizing rel.
func New(loc LocationID, rel string) (GamePath, error) {
	if loc == "" {
		return GamePath{}, errors.New(errors.ErrPathInvalid, "location id must not be empty")
	}
	r, err := NewRelativePath(rel)
	if err != nil {
		return GamePath{}, err
	}
	return GamePath{Location: loc, Path: r}, nil
}

// MustNew is New for literals; it panics on invalid input.
func MustNew(loc LocationID, rel string) GamePath {
	p, err := New(loc, rel)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse reads the "{Location}/relative/path" form produced by String.
func Parse(s string) (GamePath, error) {
	if !strings.HasPrefix(s, "{") {
		return GamePath{}, errors.Newf(errors.ErrPathInvalid, "game path %q must start with {Location}", s)
	}
	end := strings.IndexByte(s, '}')
	if end < 2 {
		return GamePath{}, errors.Newf(errors.ErrPathInvalid, "game path %q has no location", s)
	}
	return New(LocationID(s[1:end]), s[end+1:])
}

// String renders the path as "{Location}/relative/path".
func (g GamePath) String() string {
	if g.Path == "" {
		return fmt.Sprintf("{%s}", g.Location)
	}
	return fmt.Sprintf("{%s}/%s", g.Location, g.Path)
}

// MarshalText implements encoding.TextMarshaler using the String form.
func (g GamePath) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GamePath) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// IsRoot reports whether g names the location root.
func (g GamePath) IsRoot() bool { return g.Path == "" }

// Parent returns the containing directory; false when g is a root.
func (g GamePath) Parent() (GamePath, bool) {
	if g.IsRoot() {
		return g, false
	}
	return GamePath{Location: g.Location, Path: g.Path.Parent()}, true
}

// Case decides how GamePaths are compared.
type Case int

const (
	// CaseSensitive compares relative paths byte for byte.
	CaseSensitive Case = iota
	// CaseInsensitive folds relative paths to lower case before comparing.
	CaseInsensitive
)

// CaseForOS returns the convention of the platform's default filesystem.
func CaseForOS(goos string) Case {
	switch goos {
	case "windows", "darwin":
		return CaseInsensitive
	default:
		return CaseSensitive
	}
}

// DefaultCase is the convention of the running platform.
func DefaultCase() Case { return CaseForOS(runtime.GOOS) }

// ParseCase reads "sensitive", "insensitive" or "auto".
func ParseCase(s string) (Case, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return DefaultCase(), nil
	case "sensitive":
		return CaseSensitive, nil
	case "insensitive":
		return CaseInsensitive, nil
	}
	return CaseSensitive, errors.Newf(errors.ErrInvalidInput, "unknown case mode %q", s)
}

func (c Case) String() string {
	if c == CaseInsensitive {
		return "insensitive"
	}
	return "sensitive"
}

// Fold maps a path segment or path to its comparison form.
func (c Case) Fold(s string) string {
	if c == CaseInsensitive {
		return strings.ToLower(s)
	}
	return s
}

// Key is the comparison form of a whole GamePath, usable as a map key.
type Key struct {
	Location LocationID
	Path     string
}

// Key folds g under c.
func (c Case) Key(g GamePath) Key {
	return Key{Location: g.Location, Path: c.Fold(string(g.Path))}
}

// Equal compares two GamePaths under c.
func (c Case) Equal(a, b GamePath) bool {
	return c.Key(a) == c.Key(b)
}

// Compare orders by location, then by folded relative path.
func (c Case) Compare(a, b GamePath) int {
	if a.Location != b.Location {
		return strings.Compare(string(a.Location), string(b.Location))
	}
	return strings.Compare(c.Fold(string(a.Path)), c.Fold(string(b.Path)))
}
