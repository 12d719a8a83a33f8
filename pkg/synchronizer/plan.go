package synchronizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/modsync/pkg/diskstate"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/loadout"
	"github.com/arthur-debert/modsync/pkg/pathtree"
)

// DriftKind says how a live file disagrees with the recorded state.
type DriftKind string

const (
	// DriftModified is a recorded file whose live content changed.
	DriftModified DriftKind = "modified"
	// DriftUnrecorded is a live file the recorded state does not know.
	DriftUnrecorded DriftKind = "unrecorded"
)

// DriftEntry is one drifted path.
type DriftEntry struct {
	Path     gamepath.GamePath
	Kind     DriftKind
	Recorded *diskstate.Entry
	Live     diskstate.Entry
}

// DriftError stops an apply: the listed files changed outside modsync and
// must be ingested before the loadout can be applied.
type DriftError struct {
	Loadout loadout.LoadoutID
	Entries []DriftEntry
}

func (e *DriftError) Error() string {
	const shown = 3
	paths := make([]string, 0, shown)
	for i, d := range e.Entries {
		if i == shown {
			break
		}
		paths = append(paths, fmt.Sprintf("%s (%s)", d.Path, d.Kind))
	}
	more := ""
	if len(e.Entries) > shown {
		more = fmt.Sprintf(" and %d more", len(e.Entries)-shown)
	}
	return fmt.Sprintf("[%s] %d file(s) changed outside modsync, ingest loadout %s first: %s%s",
		errors.ErrNeedsIngest, len(e.Entries), e.Loadout, strings.Join(paths, ", "), more)
}

// ErrorCode implements errors.Coded.
func (e *DriftError) ErrorCode() errors.ErrorCode { return errors.ErrNeedsIngest }

// Plan is the disk modification plan of one apply. ToWrite, ToExtract and
// Unmodified partition the FileTree; ToDelete holds recorded files the
// FileTree no longer targets.
type Plan struct {
	Loadout  loadout.LoadoutID
	Revision uint64

	ToWrite    *pathtree.Tree[loadout.ModFile]
	ToExtract  *pathtree.Tree[loadout.ModFile]
	ToDelete   *pathtree.Tree[diskstate.Entry]
	Unmodified *pathtree.Tree[loadout.ModFile]

	// Retained holds the live fingerprints of the Unmodified files.
	Retained *pathtree.Tree[diskstate.Entry]
	Drift    []DriftEntry
}

// Empty reports whether executing the plan would change nothing on disk.
func (p *Plan) Empty() bool {
	return p.ToWrite.Len() == 0 && p.ToExtract.Len() == 0 && p.ToDelete.Len() == 0
}

// Summary counts a plan's partitions.
type Summary struct {
	Write      int   `json:"write" yaml:"write"`
	Extract    int   `json:"extract" yaml:"extract"`
	Delete     int   `json:"delete" yaml:"delete"`
	Unmodified int   `json:"unmodified" yaml:"unmodified"`
	Drift      int   `json:"drift" yaml:"drift"`
	Bytes      int64 `json:"bytes" yaml:"bytes"`
}

// Summary returns partition sizes and the bytes the plan writes, counting
// files whose size is known.
func (p *Plan) Summary() Summary {
	sum := Summary{
		Write:      p.ToWrite.Len(),
		Extract:    p.ToExtract.Len(),
		Delete:     p.ToDelete.Len(),
		Unmodified: p.Unmodified.Len(),
		Drift:      len(p.Drift),
	}
	for _, f := range p.ToWrite.All() {
		if _, size, ok := loadout.KnownHash(f); ok {
			sum.Bytes += size
		}
	}
	for _, f := range p.ToExtract.All() {
		_, size, _ := loadout.KnownHash(f)
		sum.Bytes += size
	}
	return sum
}

type planBuilder struct {
	write, extract, unmodified []pathtree.Entry[loadout.ModFile]
	del, retained              []pathtree.Entry[diskstate.Entry]
	drift                      []DriftEntry
}

// classify queues a file that must be (re)placed on disk.
func (b *planBuilder) classify(p gamepath.GamePath, f loadout.ModFile) {
	e := pathtree.Entry[loadout.ModFile]{Path: p, Value: f}
	switch f.(type) {
	case loadout.FromArchive:
		b.extract = append(b.extract, e)
	case loadout.Generated, loadout.GameFile:
		b.write = append(b.write, e)
	default:
		panic(errors.Newf(errors.ErrInternal, "unknown mod file variant %T", f))
	}
}

// PlanApply diffs tree against the recorded prior state and the live
// directory. Drift never lets a plan through: when any live file is
// unrecorded or differs from its record, the plan is returned together with
// a *DriftError and must not be executed.
func (s *Synchronizer) PlanApply(ctx context.Context, l *loadout.Loadout, tree *loadout.FileTree, prior *diskstate.State, live *pathtree.Tree[diskstate.Entry]) (*Plan, error) {
	if tree.Loadout != prior.Loadout || tree.Loadout != l.ID {
		return nil, errors.Newf(errors.ErrStaleState,
			"file tree of %s cannot be compared with disk state of %s", tree.Loadout, prior.Loadout)
	}

	var b planBuilder
	for p, liveEntry := range live.All() {
		recorded, ok := prior.Get(p)
		if !ok {
			b.drift = append(b.drift, DriftEntry{Path: p, Kind: DriftUnrecorded, Live: liveEntry})
			continue
		}
		if !recorded.SameContent(liveEntry) {
			rec := recorded
			b.drift = append(b.drift, DriftEntry{Path: p, Kind: DriftModified, Recorded: &rec, Live: liveEntry})
			continue
		}

		f, targeted := tree.Tree.Get(p)
		if !targeted {
			b.del = append(b.del, pathtree.Entry[diskstate.Entry]{Path: p, Value: liveEntry})
			continue
		}
		same, err := s.matchesDisk(ctx, l, f, liveEntry)
		if err != nil {
			return nil, err
		}
		if same {
			b.unmodified = append(b.unmodified, pathtree.Entry[loadout.ModFile]{Path: p, Value: f})
			b.retained = append(b.retained, pathtree.Entry[diskstate.Entry]{Path: p, Value: liveEntry})
			continue
		}
		b.classify(p, f)
	}

	for p, f := range tree.Tree.All() {
		if live.Has(p) {
			continue
		}
		b.classify(p, f)
	}

	opt := s.treeOpts()
	plan := &Plan{
		Loadout:    tree.Loadout,
		Revision:   tree.Revision,
		ToWrite:    pathtree.New(b.write, opt),
		ToExtract:  pathtree.New(b.extract, opt),
		ToDelete:   pathtree.New(b.del, opt),
		Unmodified: pathtree.New(b.unmodified, opt),
		Retained:   pathtree.New(b.retained, opt),
		Drift:      b.drift,
	}

	sum := plan.Summary()
	s.log.Info().
		Str("loadout", string(l.ID)).
		Int("write", sum.Write).
		Int("extract", sum.Extract).
		Int("delete", sum.Delete).
		Int("unmodified", sum.Unmodified).
		Int("drift", sum.Drift).
		Msg("Planned apply")

	if len(b.drift) > 0 {
		for _, d := range b.drift {
			s.log.Warn().Str("path", d.Path.String()).Str("kind", string(d.Kind)).Msg("File changed outside modsync")
		}
		return plan, &DriftError{Loadout: l.ID, Entries: b.drift}
	}
	return plan, nil
}

// matchesDisk reports whether the live entry already holds f's content.
func (s *Synchronizer) matchesDisk(ctx context.Context, l *loadout.Loadout, f loadout.ModFile, live diskstate.Entry) (bool, error) {
	switch v := f.(type) {
	case loadout.FromArchive:
		return v.Hash == live.Hash && v.Size == live.Size, nil
	case loadout.GameFile:
		return v.Hash == live.Hash && v.Size == live.Size, nil
	case loadout.Generated:
		h, err := s.generators.HashOf(ctx, l, v)
		if err != nil {
			return false, err
		}
		return h == live.Hash, nil
	default:
		panic(errors.Newf(errors.ErrInternal, "unknown mod file variant %T", f))
	}
}
