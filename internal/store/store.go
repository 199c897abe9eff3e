// Package store implements the Config Store adapter: the black-box
// load/commit/list/delete-section contract the Merge Engine and
// Transaction Orchestrator consume, plus the snapshot/restore pair the
// Orchestrator uses for rollback.
package store

import "confmerge/internal/model"

// Store is the Config Store adapter consumed by the rest of confmerge.
// Errors are always a *model.TransactionError so callers can dispatch on
// Category rather than string-matching.
type Store interface {
	// Load reads one package's current configuration tree.
	Load(pkgName string) (*model.Package, error)
	// ListPackages returns every package name currently on disk.
	ListPackages() ([]string, error)
	// Commit atomically and durably writes tree as the new content of
	// pkgName.
	Commit(pkgName string, tree *model.Package) error
	// DeleteSection removes one section (by name, or by type+ordinal for
	// an anonymous section) from a package and commits the result.
	DeleteSection(pkgName string, section *model.Section, ordinal int) error
	// Snapshot returns deep copies of every named package's current
	// tree, suitable for a later Restore. A package with no file on disk
	// snapshots as an empty Package (not an error) since a merge may be
	// the first thing to create it.
	Snapshot(pkgNames []string) (map[string]*model.Package, error)
	// Restore atomically recommits every package in snapshot, used to
	// undo a failed transaction's commits.
	Restore(snapshot map[string]*model.Package) error
}
