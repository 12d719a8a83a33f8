// Package datastore persists loadout snapshots on top of a store.Store.
//
// A Snapshot bundles the current Loadout, the Loadout revision last applied
// to disk and the DiskState that application produced. Every change writes a
// new snapshot record and then moves the loadout's root pointer to it with a
// single compare-and-swap, so readers never observe a half-updated loadout.
package datastore
