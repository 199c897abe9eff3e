// Package merge implements the Merge Engine: section, option and list
// reconciliation between a package's current configuration tree and an
// incoming source tree, producing a merged package plus the conflicts
// and changes the reconciliation recorded.
package merge

import (
	"confmerge/internal/dedup"
	"confmerge/internal/model"

	"confmerge/pkg/logging"
)

const subsystem = "MergeEngine"

// Options controls how a single package merge reconciles disagreements.
type Options struct {
	// DryRun, when true, still produces the full (merged, conflicts,
	// changes) result but signals the caller (the Orchestrator) must not
	// commit it.
	DryRun bool
	// DedupeLists enables list deduplication (see internal/dedup) after
	// concatenating list values.
	DedupeLists bool
	// PreserveNetwork enables the preserve-network guard for the
	// "network" package.
	PreserveNetwork bool
	// PreserveExisting controls option conflict resolution: true (the
	// default) keeps the current value, false takes incoming.
	PreserveExisting bool
}

// DefaultOptions returns the merge options matching the spec's stated
// defaults (preserve-existing true, everything else off).
func DefaultOptions() Options {
	return Options{PreserveExisting: true}
}

// Merge reconciles incoming onto current for the named package and
// returns the merged package plus the conflicts and changes recorded.
// current and incoming are not mutated; the returned package is a fresh
// value built from a clone of current.
func Merge(pkgName string, current, incoming *model.Package, opts Options) (*model.Package, []model.Conflict, []model.Change, error) {
	merged := current.Clone()
	if merged.Name == "" {
		merged.Name = pkgName
	}

	var conflicts []model.Conflict
	var changes []model.Change

	guard := newNetworkGuard(pkgName, opts.PreserveNetwork)

	for _, incomingSection := range incoming.Sections {
		ordinal := incoming.Ordinal(incomingSection)
		existing := merged.FindMatch(incomingSection, ordinal)

		if existing == nil {
			// New section: insert verbatim, preserving incoming's relative
			// ordinal among same-typed sections by inserting at the same
			// position within the merged section list as it held in
			// incoming when both packages are otherwise aligned, and
			// appending when current has no sections of that type yet.
			clone := incomingSection.Clone()
			insertAtOrdinal(merged, clone, ordinal)
			changes = append(changes, model.Change{
				Action:  model.ActionAddSection,
				Package: pkgName,
				Section: sectionLabel(clone),
			})
			logging.Debug(subsystem, "package %s: added section %s", pkgName, sectionLabel(clone))
			continue
		}

		sc, sChanges := reconcileSection(pkgName, existing, incomingSection, opts, guard)
		conflicts = append(conflicts, sc...)
		changes = append(changes, sChanges...)
	}

	return merged, conflicts, changes, nil
}

// insertAtOrdinal inserts s into pkg's Sections such that, among sections
// sharing s.Type, s ends up at position ordinal (clamped to the current
// count of that type if ordinal would otherwise leave a gap).
func insertAtOrdinal(pkg *model.Package, s *model.Section, ordinal int) {
	count := 0
	for i, existing := range pkg.Sections {
		if existing.Type != s.Type {
			continue
		}
		if count == ordinal {
			pkg.Sections = append(pkg.Sections, nil)
			copy(pkg.Sections[i+1:], pkg.Sections[i:])
			pkg.Sections[i] = s
			return
		}
		count++
	}
	pkg.AddSection(s)
}

func sectionLabel(s *model.Section) string {
	if s.IsAnonymous() {
		return "@" + s.Type
	}
	return s.Name
}

// reconcileSection merges incoming into existing (which is merged's own
// section, mutated in place) per the option and list reconciliation
// rules, plus type-mismatch shadowing and the network guard.
func reconcileSection(pkgName string, existing, incoming *model.Section, opts Options, guard *networkGuard) ([]model.Conflict, []model.Change) {
	var conflicts []model.Conflict
	var changes []model.Change

	label := sectionLabel(existing)

	for name, incomingVal := range incoming.Options {
		if existing.HasList(name) {
			conflicts = append(conflicts, model.Conflict{
				Package: pkgName, Section: label, Name: name,
				Existing: "", Incoming: incomingVal, Resolution: model.ResolutionKeptExisting,
			})
			continue
		}

		currentVal, hasOption := existing.Options[name]
		switch {
		case !hasOption:
			existing.Options[name] = incomingVal
			changes = append(changes, model.Change{
				Action: model.ActionAddOption, Package: pkgName, Section: label,
				Name: name, Before: "", After: string(incomingVal),
			})
		case currentVal == incomingVal:
			// no-op
		default:
			if guard.blocksOption(label, name) {
				conflicts = append(conflicts, model.Conflict{
					Package: pkgName, Section: label, Name: name,
					Existing: currentVal, Incoming: incomingVal, Resolution: model.ResolutionKeptExisting,
				})
				continue
			}
			if opts.PreserveExisting {
				conflicts = append(conflicts, model.Conflict{
					Package: pkgName, Section: label, Name: name,
					Existing: currentVal, Incoming: incomingVal, Resolution: model.ResolutionKeptExisting,
				})
			} else {
				existing.Options[name] = incomingVal
				conflicts = append(conflicts, model.Conflict{
					Package: pkgName, Section: label, Name: name,
					Existing: currentVal, Incoming: incomingVal, Resolution: model.ResolutionTookIncoming,
				})
				changes = append(changes, model.Change{
					Action: model.ActionUpdateOpt, Package: pkgName, Section: label,
					Name: name, Before: string(currentVal), After: string(incomingVal),
				})
			}
		}
	}

	for name, incomingList := range incoming.Lists {
		if existing.HasOption(name) {
			conflicts = append(conflicts, model.Conflict{
				Package: pkgName, Section: label, Name: name,
				Existing: existing.Options[name], Incoming: "", Resolution: model.ResolutionKeptExisting,
			})
			continue
		}

		currentList, hadList := existing.Lists[name]

		if hadList && guard.blocksListRemoval(label, name, currentList, incomingList) {
			conflicts = append(conflicts, model.Conflict{
				Package: pkgName, Section: label, Name: name,
				Resolution: model.ResolutionKeptExisting,
			})
			continue
		}

		if !hadList {
			result := append([]model.Value(nil), incomingList...)
			if opts.DedupeLists {
				result, _ = dedup.Dedupe(result, tagForListName(name), dedup.StrategyAuto)
			}
			existing.Lists[name] = result
			changes = append(changes, model.Change{
				Action: model.ActionAddList, Package: pkgName, Section: label, Name: name,
				Before: "", After: joinValues(result),
			})
			continue
		}

		before := joinValues(currentList)
		concatenated := append(append([]model.Value(nil), currentList...), incomingList...)
		result := concatenated
		removedCount := 0
		if opts.DedupeLists {
			result, removedCount = dedup.Dedupe(concatenated, tagForListName(name), dedup.StrategyAuto)
		}
		existing.Lists[name] = result
		after := joinValues(result)
		if before != after {
			changes = append(changes, model.Change{
				Action: model.ActionModifyList, Package: pkgName, Section: label, Name: name,
				Before: before, After: after,
			})
		}
		if removedCount > 0 {
			changes = append(changes, model.Change{
				Action: model.ActionDedupeList, Package: pkgName, Section: label, Name: name,
				Before: before, After: after,
			})
		}
	}

	return conflicts, changes
}

func joinValues(values []model.Value) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ","
		}
		out += string(v)
	}
	return out
}

// tagForListName maps a list's name to the dedup semantic tag used to
// resolve StrategyAuto. This mirrors the source's tag mapping verbatim
// (see the Open Question in the design notes): proto/target/policy use
// priority-based dedupe, dns/ipaddr/server/ports use network-aware
// dedupe, everything else preserves order.
func tagForListName(name string) dedup.SemanticTag {
	switch name {
	case "dns", "ipaddr", "server", "ports":
		return dedup.SemanticTag(name)
	case "proto", "target", "policy":
		return dedup.SemanticTag(name)
	default:
		return dedup.TagGeneric
	}
}
