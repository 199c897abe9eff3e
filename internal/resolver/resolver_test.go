package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultResolver(t *testing.T) *Resolver {
	t.Helper()
	graph, err := NewGraph(DefaultEdges)
	require.NoError(t, err)
	return New(graph, DefaultPackageServiceMap)
}

// Scenario 3: multi-package restart ordering.
func TestPlan_MultiPackageOrdering(t *testing.T) {
	r := defaultResolver(t)

	plan, err := r.Plan([]string{"dhcp", "firewall", "network"})
	require.NoError(t, err)

	got := make([]string, len(plan))
	for i, n := range plan {
		got[i] = string(n)
	}
	assert.Equal(t, []string{"network", "firewall", "dnsmasq"}, got)
}

func TestPlan_UnknownPackageSkipped(t *testing.T) {
	r := defaultResolver(t)

	plan, err := r.Plan([]string{"network", "totally-unknown-package"})
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, NodeID("network"), plan[0])
}

func TestPlan_SingleService(t *testing.T) {
	r := defaultResolver(t)

	plan, err := r.Plan([]string{"dropbear"})
	require.NoError(t, err)
	assert.Equal(t, []NodeID{"dropbear"}, plan)
}

func TestPlan_NoChangedPackages(t *testing.T) {
	r := defaultResolver(t)

	plan, err := r.Plan(nil)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestPlan_FullGraphTopologicalOrder(t *testing.T) {
	r := defaultResolver(t)

	plan, err := r.Plan([]string{"network", "dhcp", "firewall", "uhttpd", "uspot"})
	require.NoError(t, err)

	index := make(map[NodeID]int, len(plan))
	for i, n := range plan {
		index[n] = i
	}
	for _, e := range DefaultEdges {
		if fi, ok := index[e.From]; ok {
			if ti, ok2 := index[e.To]; ok2 {
				assert.Less(t, fi, ti, "%s must restart before %s", e.From, e.To)
			}
		}
	}
}

func TestNewGraph_DetectsCycle(t *testing.T) {
	_, err := NewGraph([]Edge{
		{From: "a", To: "b"},
		{From: "b", To: "c"},
		{From: "c", To: "a"},
	})
	require.Error(t, err)
}

func TestNewGraph_AcceptsAcyclic(t *testing.T) {
	g, err := NewGraph(DefaultEdges)
	require.NoError(t, err)
	assert.True(t, g.Has("network"))
	assert.False(t, g.Has("nonexistent"))
}
