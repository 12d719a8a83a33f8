package synchronizer

import (
	"context"

	"github.com/arthur-debert/modsync/pkg/diskstate"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/loadout"
)

// ChangeHandler turns files found changed or new during ingest into mod
// files. The returned file must target p.
type ChangeHandler interface {
	// HandleChangedFile is called for a path whose live content differs
	// from the content prev describes.
	HandleChangedFile(ctx context.Context, prev loadout.ModFile, p gamepath.GamePath, live diskstate.Entry) (loadout.ModFile, error)
	// HandleNewFile is called for a live path no mod targets.
	HandleNewFile(ctx context.Context, p gamepath.GamePath, live diskstate.Entry) (loadout.ModFile, error)
}

// DefaultChangeHandler records every changed or new file as an archived
// file carrying the live fingerprint.
type DefaultChangeHandler struct{}

var _ ChangeHandler = DefaultChangeHandler{}

func (DefaultChangeHandler) HandleChangedFile(_ context.Context, _ loadout.ModFile, p gamepath.GamePath, live diskstate.Entry) (loadout.ModFile, error) {
	return archived(p, live), nil
}

func (DefaultChangeHandler) HandleNewFile(_ context.Context, p gamepath.GamePath, live diskstate.Entry) (loadout.ModFile, error) {
	return archived(p, live), nil
}

func archived(p gamepath.GamePath, e diskstate.Entry) loadout.FromArchive {
	return loadout.FromArchive{ID: loadout.NewFileID(), Path: p, Hash: e.Hash, Size: e.Size}
}
