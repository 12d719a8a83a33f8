// Package commands is the application layer behind the modsync CLI.
//
// Each command lives in its own subdirectory:
//   - manage/    - Manage: start tracking an installation
//   - list/      - ListLoadouts
//   - mods/      - ListMods in sort order
//   - install/   - InstallMod from a directory
//   - plan/      - Plan: preview an apply
//   - apply/     - Apply a loadout to disk
//   - ingest/    - Ingest external changes
//   - conflicts/ - ListConflicts between mods
//   - edit/      - Rename, Toggle, RemoveMod
//   - merge/     - Merge two loadouts
//   - lifecycle/ - Reset, Unmanage, Delete, Copy
//   - history/   - History of published snapshots
//   - genconfig/ - GenConfig
//   - internal/  - the shared environment
//
// This file re-exports the command functions so callers import one package.
package commands

import (
	"github.com/arthur-debert/modsync/pkg/commands/apply"
	"github.com/arthur-debert/modsync/pkg/commands/conflicts"
	"github.com/arthur-debert/modsync/pkg/commands/edit"
	"github.com/arthur-debert/modsync/pkg/commands/genconfig"
	"github.com/arthur-debert/modsync/pkg/commands/history"
	"github.com/arthur-debert/modsync/pkg/commands/ingest"
	"github.com/arthur-debert/modsync/pkg/commands/install"
	"github.com/arthur-debert/modsync/pkg/commands/internal/app"
	"github.com/arthur-debert/modsync/pkg/commands/lifecycle"
	"github.com/arthur-debert/modsync/pkg/commands/list"
	"github.com/arthur-debert/modsync/pkg/commands/manage"
	"github.com/arthur-debert/modsync/pkg/commands/merge"
	"github.com/arthur-debert/modsync/pkg/commands/mods"
	"github.com/arthur-debert/modsync/pkg/commands/plan"
)

// Env is an opened environment; Open builds one from configuration.
type (
	Env        = app.Env
	EnvOptions = app.Options
)

var Open = app.Open

// Manage starts tracking an installation.
type (
	ManageOptions = manage.ManageOptions
	ManageResult  = manage.ManageResult
)

var Manage = manage.Manage

// ListLoadouts returns every managed loadout.
type ListResult = list.ListResult

var ListLoadouts = list.ListLoadouts

// ListMods returns the mods of a loadout in sort order.
type (
	ModsOptions = mods.ModsOptions
	ModsResult  = mods.ModsResult
)

var ListMods = mods.ListMods

// InstallMod archives a directory as a new mod.
type (
	InstallOptions = install.InstallOptions
	InstallResult  = install.InstallResult
)

var InstallMod = install.InstallMod

// Plan previews an apply.
type (
	PlanOptions = plan.PlanOptions
	PlanResult  = plan.PlanResult
)

var Plan = plan.Plan

// Apply projects a loadout onto its installation.
type (
	ApplyOptions = apply.ApplyOptions
	ApplyResult  = apply.ApplyResult
)

var Apply = apply.Apply

// Ingest folds external changes into a loadout.
type (
	IngestOptions = ingest.IngestOptions
	IngestResult  = ingest.IngestResult
)

var Ingest = ingest.Ingest

// ListConflicts reports contested paths.
type (
	ConflictsOptions = conflicts.ConflictsOptions
	ConflictsResult  = conflicts.ConflictsResult
)

var ListConflicts = conflicts.ListConflicts

// Rename, Toggle and RemoveMod edit a loadout without touching disk.
type (
	EditResult       = edit.EditResult
	RenameOptions    = edit.RenameOptions
	ToggleOptions    = edit.ToggleOptions
	RemoveModOptions = edit.RemoveModOptions
)

var (
	Rename    = edit.Rename
	Toggle    = edit.Toggle
	RemoveMod = edit.RemoveMod
)

// Merge combines two loadouts.
type (
	MergeOptions = merge.MergeOptions
	MergeResult  = merge.MergeResult
)

var Merge = merge.Merge

// Reset, Unmanage, Delete and Copy end or fork a loadout.
type (
	ResetOptions  = lifecycle.ResetOptions
	ResetResult   = lifecycle.ResetResult
	DeleteOptions = lifecycle.DeleteOptions
	DeleteResult  = lifecycle.DeleteResult
	CopyOptions   = lifecycle.CopyOptions
	CopyResult    = lifecycle.CopyResult
)

var (
	Reset    = lifecycle.Reset
	Unmanage = lifecycle.Unmanage
	Delete   = lifecycle.Delete
	Copy     = lifecycle.Copy
)

// History lists published snapshots.
type (
	HistoryOptions = history.HistoryOptions
	HistoryResult  = history.HistoryResult
)

var History = history.History

// GenConfig renders the default configuration.
type (
	GenConfigOptions = genconfig.GenConfigOptions
	GenConfigResult  = genconfig.GenConfigResult
)

var GenConfig = genconfig.GenConfig
