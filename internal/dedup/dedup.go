// Package dedup implements the List Deduplicator: a pure function that
// removes duplicate entries from a configuration list according to one
// of three equivalence strategies.
package dedup

import (
	"confmerge/internal/model"

	"confmerge/pkg/logging"
)

const subsystem = "Dedup"

// Strategy selects the equivalence relation and order rule used to
// deduplicate a list.
type Strategy string

const (
	// StrategyPreserveOrder keeps the first occurrence of each distinct
	// string value, preserving original order.
	StrategyPreserveOrder Strategy = "preserve-order"
	// StrategyNetworkAware compares entries after network canonicalization
	// (see canonicalize.go) and keeps the first occurrence in canonical
	// form.
	StrategyNetworkAware Strategy = "network-aware"
	// StrategyPriorityBased compares by string equality and keeps the
	// first occurrence, discarding later duplicates regardless of value.
	StrategyPriorityBased Strategy = "priority-based"
	// StrategyAuto defers to AutoStrategyTable, keyed by SemanticTag.
	StrategyAuto Strategy = "auto"
)

// SemanticTag names the kind of list content being deduplicated, used to
// resolve StrategyAuto to a concrete strategy.
type SemanticTag string

const (
	TagDNS     SemanticTag = "dns"
	TagIPAddr  SemanticTag = "ipaddr"
	TagServer  SemanticTag = "server"
	TagPorts   SemanticTag = "ports"
	TagProto   SemanticTag = "proto"
	TagTarget  SemanticTag = "target"
	TagPolicy  SemanticTag = "policy"
	TagGeneric SemanticTag = ""
)

// AutoStrategyTable maps a semantic tag to the strategy StrategyAuto
// resolves to. It is a package-level variable, not a hardcoded switch,
// so that internal/config can override entries at startup (the firewall
// proto/target dedupe policy is explicitly meant to be configuration,
// not a constant — certain list options semantically tolerate repeats).
// Defaults below preserve the source mapping verbatim.
var AutoStrategyTable = map[SemanticTag]Strategy{
	TagDNS:    StrategyNetworkAware,
	TagIPAddr: StrategyNetworkAware,
	TagServer: StrategyNetworkAware,
	TagPorts:  StrategyNetworkAware,
	TagProto:  StrategyPriorityBased,
	TagTarget: StrategyPriorityBased,
	TagPolicy: StrategyPriorityBased,
}

// resolve turns StrategyAuto into a concrete strategy via AutoStrategyTable,
// defaulting to StrategyPreserveOrder for unrecognized or generic tags.
func resolve(strategy Strategy, tag SemanticTag) Strategy {
	if strategy != StrategyAuto {
		return strategy
	}
	if s, ok := AutoStrategyTable[tag]; ok {
		return s
	}
	return StrategyPreserveOrder
}

// Dedupe removes duplicate entries from list according to strategy
// (resolved via tag when strategy is StrategyAuto). It returns the
// deduplicated list and the count of entries removed.
//
// Dedupe is pure and idempotent: Dedupe(Dedupe(l, tag, s)) == Dedupe(l, tag, s).
// It is length-monotone: len(output) <= len(input).
func Dedupe(list []model.Value, tag SemanticTag, strategy Strategy) ([]model.Value, int) {
	resolved := resolve(strategy, tag)

	var out []model.Value
	seen := make(map[string]bool, len(list))

	for _, v := range list {
		key := string(v)
		if resolved == StrategyNetworkAware {
			key = canonicalize(string(v))
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}

	removed := len(list) - len(out)
	if removed > 0 {
		logging.Debug(subsystem, "deduped list with strategy %s: removed %d of %d entries", resolved, removed, len(list))
	}
	return out, removed
}
