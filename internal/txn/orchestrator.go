// Package txn implements the Transaction Orchestrator: the top-level
// coordinator that snapshots configuration, drives the Merge Engine
// across every touched package, commits, asks the Service Resolver for
// a restart plan, drives the Service Controller, and restores both
// configuration and services on failure.
package txn

import (
	"context"
	"sync"
	"time"

	"confmerge/internal/merge"
	"confmerge/internal/model"
	"confmerge/internal/resolver"
	"confmerge/internal/store"
	"confmerge/internal/svcctl"

	"confmerge/pkg/logging"
)

const subsystem = "Orchestrator"

// Options controls one merge-tree or remove-matching transaction.
type Options struct {
	Merge merge.Options

	// NoRestart skips the restart plan and service-restart steps
	// entirely, leaving services untouched regardless of what changed.
	NoRestart bool
	// RollbackOnFailure, true by default, restores configuration and
	// drives services back to their pre-transaction state on the first
	// restart failure.
	RollbackOnFailure bool
}

// DefaultOptions returns Options matching the spec's stated defaults.
func DefaultOptions() Options {
	return Options{Merge: merge.DefaultOptions(), RollbackOnFailure: true}
}

// PackageState is the final disposition of one touched package after a
// transaction completes.
type PackageState string

const (
	StateCommitted PackageState = "committed"
	StateReverted  PackageState = "reverted"
	StateUntouched PackageState = "untouched"
)

// Result bundles everything a transaction reports to its caller: the
// accumulated conflicts and changes, the full service-operation undo
// log (forward operations and any rollback operations both), and the
// final state of every touched package.
type Result struct {
	Conflicts     []model.Conflict
	Changes       []model.Change
	ServiceLog    []model.ServiceOp
	PackageStates map[string]PackageState
}

// Orchestrator is the sole driver of a confmerge transaction. It takes
// its Config Store and Service Controller at construction so tests can
// substitute in-memory fakes for both.
type Orchestrator struct {
	store      store.Store
	controller svcctl.Controller
	resolver   *resolver.Resolver

	restartGrace        time.Duration
	lockTimeout         time.Duration
	transactionDeadline time.Duration

	lockMu sync.Mutex
}

// Config supplies the tuning values an Orchestrator needs beyond its
// collaborators.
type Config struct {
	RestartGrace        time.Duration
	LockTimeout         time.Duration
	TransactionDeadline time.Duration
}

// New constructs an Orchestrator. st and controller are injected rather
// than constructed internally so unit tests can substitute
// store.Store/svcctl.Controller fakes.
func New(st store.Store, controller svcctl.Controller, res *resolver.Resolver, cfg Config) *Orchestrator {
	return &Orchestrator{
		store:               st,
		controller:          controller,
		resolver:            res,
		restartGrace:        cfg.RestartGrace,
		lockTimeout:         cfg.LockTimeout,
		transactionDeadline: cfg.TransactionDeadline,
	}
}

// acquireLock attempts a non-blocking lock acquisition, retrying briefly
// until lockTimeout elapses; a held lock past the timeout fails the
// transaction rather than blocking indefinitely.
func (o *Orchestrator) acquireLock() error {
	deadline := time.Now().Add(o.lockTimeout)
	for {
		if o.lockMu.TryLock() {
			return nil
		}
		if time.Now().After(deadline) {
			return model.NewError(model.CategoryLockConflict, "could not acquire configuration lock", nil)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (o *Orchestrator) releaseLock() {
	o.lockMu.Unlock()
}

// MergeTree runs the merge-tree protocol: pre-validate, snapshot, merge,
// commit, plan, restart, rolling back on the first restart failure when
// RollbackOnFailure is set.
func (o *Orchestrator) MergeTree(ctx context.Context, source store.Store, opts Options) (*Result, error) {
	if err := o.acquireLock(); err != nil {
		return nil, err
	}
	defer o.releaseLock()

	ctx, cancel := context.WithTimeout(ctx, o.transactionDeadline)
	defer cancel()

	names, err := source.ListPackages()
	if err != nil {
		return nil, model.NewError(model.CategoryParse, "list source packages", err)
	}

	incoming := make(map[string]*model.Package, len(names))
	var parseErrors model.ErrorCollection
	for _, name := range names {
		pkg, err := source.Load(name)
		if err != nil {
			logging.Error(subsystem, err, "pre-validation failed for package %s", name)
			parseErrors.Add(model.NewPackageError(model.CategoryParse, name, "parse source package", err))
			continue
		}
		incoming[name] = pkg
	}
	if parseErrors.HasErrors() {
		logging.Error(subsystem, nil, "pre-validation found %d bad package(s), aborting with no changes", parseErrors.Count())
		return nil, &parseErrors
	}

	snapshot, err := o.store.Snapshot(names)
	if err != nil {
		return nil, err
	}

	result := &Result{PackageStates: make(map[string]PackageState, len(names))}
	merged := make(map[string]*model.Package, len(names))
	var modifiedPackages []string

	for _, name := range names {
		current := snapshot[name]
		mergedPkg, conflicts, changes, err := merge.Merge(name, current, incoming[name], opts.Merge)
		if err != nil {
			return nil, model.NewPackageError(model.CategoryParse, name, "merge failed", err)
		}
		merged[name] = mergedPkg
		result.Conflicts = append(result.Conflicts, conflicts...)
		result.Changes = append(result.Changes, changes...)
		result.PackageStates[name] = StateUntouched
		if len(changes) > 0 {
			modifiedPackages = append(modifiedPackages, name)
		}
	}

	if opts.Merge.DryRun {
		logging.Info(subsystem, "dry-run: %d packages would change, no commit or restart performed", len(modifiedPackages))
		return result, nil
	}

	for _, name := range modifiedPackages {
		if err := o.store.Commit(name, merged[name]); err != nil {
			logging.Error(subsystem, err, "commit failed for package %s, restoring snapshot", name)
			if restoreErr := o.store.Restore(snapshot); restoreErr != nil {
				return result, model.NewError(model.CategoryUnrecoverable, "commit failed and snapshot restore also failed", restoreErr)
			}
			for _, n := range modifiedPackages {
				result.PackageStates[n] = StateUntouched
			}
			return result, model.NewPackageError(model.CategoryCommitFailure, name, "commit failed, transaction aborted", err)
		}
		result.PackageStates[name] = StateCommitted
	}

	if opts.NoRestart || len(modifiedPackages) == 0 {
		return result, nil
	}

	return o.restart(ctx, result, snapshot, modifiedPackages, opts)
}

// RemoveMatching runs the remove-matching protocol: every section
// defined in target is located in the live tree (by name, or by
// type+ordinal for an anonymous section) and removed, then the same
// snapshot/commit/restart machinery as MergeTree applies.
func (o *Orchestrator) RemoveMatching(ctx context.Context, target store.Store, opts Options) (*Result, error) {
	if err := o.acquireLock(); err != nil {
		return nil, err
	}
	defer o.releaseLock()

	ctx, cancel := context.WithTimeout(ctx, o.transactionDeadline)
	defer cancel()

	names, err := target.ListPackages()
	if err != nil {
		return nil, model.NewError(model.CategoryParse, "list removal target packages", err)
	}

	targets := make(map[string]*model.Package, len(names))
	var parseErrors model.ErrorCollection
	for _, name := range names {
		pkg, err := target.Load(name)
		if err != nil {
			logging.Error(subsystem, err, "pre-validation failed for removal target %s", name)
			parseErrors.Add(model.NewPackageError(model.CategoryParse, name, "parse removal target", err))
			continue
		}
		targets[name] = pkg
	}
	if parseErrors.HasErrors() {
		logging.Error(subsystem, nil, "pre-validation found %d bad removal target(s), aborting with no changes", parseErrors.Count())
		return nil, &parseErrors
	}

	snapshot, err := o.store.Snapshot(names)
	if err != nil {
		return nil, err
	}

	result := &Result{PackageStates: make(map[string]PackageState, len(names))}
	merged := make(map[string]*model.Package, len(names))
	var modifiedPackages []string

	for _, name := range names {
		current := snapshot[name].Clone()
		targetPkg := targets[name]
		// Resolve every match against the live tree as loaded, before any
		// removal shifts the type+ordinal positions of anonymous sections.
		var matches []*model.Section
		for _, section := range targetPkg.Sections {
			if match := current.FindMatch(section, targetPkg.Ordinal(section)); match != nil {
				matches = append(matches, match)
				result.Changes = append(result.Changes, model.Change{
					Action:  model.ActionRemoveSection,
					Package: name,
					Section: sectionLabel(section),
				})
			}
		}
		for _, match := range matches {
			current.RemoveSection(match, current.Ordinal(match))
		}
		removedAny := len(matches) > 0
		merged[name] = current
		result.PackageStates[name] = StateUntouched
		if removedAny {
			modifiedPackages = append(modifiedPackages, name)
		}
	}

	if opts.Merge.DryRun {
		return result, nil
	}

	for _, name := range modifiedPackages {
		if err := o.store.Commit(name, merged[name]); err != nil {
			if restoreErr := o.store.Restore(snapshot); restoreErr != nil {
				return result, model.NewError(model.CategoryUnrecoverable, "commit failed and snapshot restore also failed", restoreErr)
			}
			return result, model.NewPackageError(model.CategoryCommitFailure, name, "commit failed, transaction aborted", err)
		}
		result.PackageStates[name] = StateCommitted
	}

	if opts.NoRestart || len(modifiedPackages) == 0 {
		return result, nil
	}

	return o.restart(ctx, result, snapshot, modifiedPackages, opts)
}

func sectionLabel(s *model.Section) string {
	if s.IsAnonymous() {
		return "@" + s.Type
	}
	return s.Name
}
