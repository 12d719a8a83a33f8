package rules

import (
	"context"
	"os"
	"path/filepath"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/sorter"
)

// Provider returns the ordering rules of one mod.
type Provider interface {
	RulesFor(ctx context.Context, l *loadout.Loadout, m *loadout.Mod) ([]sorter.Rule[loadout.ModID], error)
}

// Static returns the rules stored on the mod itself.
type Static struct{}

// RulesFor implements Provider.
func (Static) RulesFor(_ context.Context, _ *loadout.Loadout, m *loadout.Mod) ([]sorter.Rule[loadout.ModID], error) {
	return m.SortRules, nil
}

// Chain concatenates the rules of several providers.
type Chain []Provider

// RulesFor implements Provider.
func (c Chain) RulesFor(ctx context.Context, l *loadout.Loadout, m *loadout.Mod) ([]sorter.Rule[loadout.ModID], error) {
	var out []sorter.Rule[loadout.ModID]
	for _, p := range c {
		rs, err := p.RulesFor(ctx, l, m)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

// FileRule is one [[rule]] entry of a rules file.
type FileRule struct {
	Mod   string `toml:"mod"`
	When  string `toml:"when"`
	Kind  string `toml:"kind"`
	Other string `toml:"other"`
}

type fileDocument struct {
	Rules []FileRule `toml:"rule"`
}

type compiledRule struct {
	FileRule
	kind    sorter.Kind
	program *vm.Program
}

// FileProvider applies rules loaded from a rules file.
type FileProvider struct {
	rules  []compiledRule
	logger zerolog.Logger
}

// exprEnv is the shape of the predicate environment.
func exprEnv(m *loadout.Mod) map[string]any {
	return map[string]any{
		"name":     m.Name,
		"category": m.Category,
		"enabled":  m.Enabled,
		"files":    len(m.Files),
	}
}

// Parse compiles a rules document.
func Parse(data []byte) (*FileProvider, error) {
	var doc fileDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "parse rules file")
	}
	return Compile(doc.Rules)
}

// Compile validates rules and compiles their predicates.
func Compile(rules []FileRule) (*FileProvider, error) {
	p := &FileProvider{logger: logging.GetLogger("rules")}
	for i, r := range rules {
		kind, err := sorter.ParseKind(r.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "rule %d", i+1)
		}
		if r.Mod == "" {
			return nil, errors.Newf(errors.ErrConfigValid, "rule %d has no mod pattern", i+1)
		}
		if _, err := filepath.Match(r.Mod, ""); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "rule %d mod pattern %q", i+1, r.Mod)
		}
		if kind == sorter.Before || kind == sorter.After {
			if r.Other == "" {
				return nil, errors.Newf(errors.ErrConfigValid, "rule %d (%s) needs an other pattern", i+1, kind)
			}
			if _, err := filepath.Match(r.Other, ""); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigValid, "rule %d other pattern %q", i+1, r.Other)
			}
		}
		c := compiledRule{FileRule: r, kind: kind}
		if r.When != "" {
			program, err := expr.Compile(r.When, expr.Env(exprEnv(&loadout.Mod{})), expr.AsBool())
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigValid, "rule %d predicate %q", i+1, r.When)
			}
			c.program = program
		}
		p.rules = append(p.rules, c)
	}
	return p, nil
}

// LoadFile reads and compiles the rules file at path.
func LoadFile(fs afero.Fs, path string) (*FileProvider, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrConfigLoad, "rules file %s does not exist", path)
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "read rules file %s", path)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "rules file %s", path)
	}
	p.logger.Debug().Str("path", path).Int("rules", len(p.rules)).Msg("Loaded rules file")
	return p, nil
}

// Len returns the number of rules.
func (p *FileProvider) Len() int { return len(p.rules) }

// RulesFor implements Provider. A Before or After entry yields one rule per
// other mod whose name matches the other pattern.
func (p *FileProvider) RulesFor(_ context.Context, l *loadout.Loadout, m *loadout.Mod) ([]sorter.Rule[loadout.ModID], error) {
	var out []sorter.Rule[loadout.ModID]
	for _, r := range p.rules {
		ok, err := r.selects(m)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		switch r.kind {
		case sorter.First, sorter.Last:
			out = append(out, sorter.Rule[loadout.ModID]{Kind: r.kind})
		default:
			for _, other := range l.Mods {
				if other.ID == m.ID {
					continue
				}
				if matched, _ := filepath.Match(r.Other, other.Name); matched {
					out = append(out, sorter.Rule[loadout.ModID]{Kind: r.kind, Other: other.ID})
				}
			}
		}
	}
	if len(out) > 0 {
		p.logger.Trace().Str("mod", m.Name).Int("rules", len(out)).Msg("Rules file matched mod")
	}
	return out, nil
}

func (r compiledRule) selects(m *loadout.Mod) (bool, error) {
	if matched, _ := filepath.Match(r.Mod, m.Name); !matched {
		return false, nil
	}
	if r.program == nil {
		return true, nil
	}
	result, err := expr.Run(r.program, exprEnv(m))
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrInvalidInput, "evaluate %q for mod %s", r.When, m.Name)
	}
	b, _ := result.(bool)
	return b, nil
}
