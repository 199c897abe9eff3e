package resolver

import (
	"sort"

	"confmerge/internal/model"

	"confmerge/pkg/logging"
)

const subsystem = "Resolver"

// errCycleInInducedSubgraph should be unreachable: the underlying Graph
// is validated acyclic at construction (NewGraph), so any subgraph of it
// is acyclic too. Kept as a defensive guard against a future graph
// construction path that skips that validation.
var errCycleInInducedSubgraph = model.NewError(model.CategoryCycle, "induced restart subgraph contains a cycle", nil)

// DefaultEdges is the static dependency graph's default edge list,
// matching the dependency table verbatim: network restarts before
// firewall/dnsmasq/uhttpd, firewall before dnsmasq/uspot, and
// dnsmasq/uhttpd before uspot.
var DefaultEdges = []Edge{
	{From: "network", To: "firewall"},
	{From: "network", To: "dnsmasq"},
	{From: "network", To: "uhttpd"},
	{From: "firewall", To: "dnsmasq"},
	{From: "firewall", To: "uspot"},
	{From: "dnsmasq", To: "uspot"},
	{From: "uhttpd", To: "uspot"},
}

// DefaultPackageServiceMap is the non-exhaustive default mapping from
// changed package name to the service that owns it.
var DefaultPackageServiceMap = map[string]string{
	"network":  "network",
	"wireless": "network",
	"dhcp":     "dnsmasq",
	"firewall": "firewall",
	"uhttpd":   "uhttpd",
	"dropbear": "dropbear",
	"system":   "log",
	"uspot":    "uspot",
}

// Resolver maps changed packages to an ordered restart plan, respecting
// the static dependency graph.
type Resolver struct {
	graph          *Graph
	packageService map[string]string
}

// New constructs a Resolver over graph using packageService to map
// package names to service names. Both are supplied at construction
// (not read from a package-level global) so tests can substitute their
// own small graphs and mappings.
func New(graph *Graph, packageService map[string]string) *Resolver {
	return &Resolver{graph: graph, packageService: packageService}
}

// Plan computes the ordered sequence of services to restart for the
// given set of changed packages. Unknown packages are skipped with a
// warning. The result is the topological order of the subgraph induced
// by the services those packages map to — only edges between members of
// that set are considered, so an unrelated downstream service is never
// pulled in just because it depends on one of the changed services.
// Ties are broken by the graph's fixed declaration order, so the plan is
// deterministic for a given changed-package set.
func (r *Resolver) Plan(changedPackages []string) ([]NodeID, error) {
	serviceSet := make(map[NodeID]bool)
	for _, pkg := range changedPackages {
		svc, ok := r.packageService[pkg]
		if !ok {
			logging.Warn(subsystem, "package %q has no known owning service, skipping", pkg)
			continue
		}
		serviceSet[NodeID(svc)] = true
	}

	return topoSortInduced(r.graph, serviceSet)
}

// topoSortInduced runs Kahn's algorithm over the subgraph of g induced
// by members, selecting among ready nodes by g's fixed order at each
// step for determinism.
func topoSortInduced(g *Graph, members map[NodeID]bool) ([]NodeID, error) {
	inDegree := make(map[NodeID]int, len(members))
	for n := range members {
		inDegree[n] = 0
	}
	for n := range members {
		for _, dep := range g.Dependents(n) {
			if members[dep] {
				inDegree[dep]++
			}
		}
	}

	rank := make(map[NodeID]int, len(g.order))
	for i, n := range g.order {
		rank[n] = i
	}

	var ready []NodeID
	for n := range inDegree {
		if inDegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	var plan []NodeID
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return rank[ready[i]] < rank[ready[j]] })
		next := ready[0]
		ready = ready[1:]
		plan = append(plan, next)

		for _, dep := range g.Dependents(next) {
			if !members[dep] {
				continue
			}
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(plan) != len(members) {
		return nil, errCycleInInducedSubgraph
	}

	return plan, nil
}
