// Package synchronizer projects loadouts onto disk and folds disk changes
// back into loadouts.
//
// Apply runs Loadout -> Flattened -> FileTree, diffs the FileTree against the
// recorded DiskState and the live directory, executes the resulting plan and
// publishes the new DiskState. Ingest runs the pipeline in reverse: the live
// directory is indexed, diffed against the recorded DiskState, re-attributed
// to mods and folded into the loadout.
//
// Apply never overwrites a file whose live content disagrees with the
// recorded DiskState, or a live file that was never recorded. Such drift
// stops the apply with a *DriftError and the caller must ingest first.
//
// Each stage is exported so callers and tests can run them in isolation.
// Apply and Ingest serialize per loadout id; stages themselves hold no state.
package synchronizer
