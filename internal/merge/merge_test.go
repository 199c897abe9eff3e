package merge

import (
	"testing"

	"confmerge/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func networkPackageWithLAN(ipaddr string, dns ...string) *model.Package {
	pkg := model.NewPackage("network")
	lan := model.NewSection("lan", "interface")
	lan.Options["ipaddr"] = model.Value(ipaddr)
	if len(dns) > 0 {
		values := make([]model.Value, len(dns))
		for i, d := range dns {
			values[i] = model.Value(d)
		}
		lan.Lists["dns"] = values
	}
	pkg.AddSection(lan)
	return pkg
}

// Scenario 1: additive list merge with network-aware dedupe.
func TestMerge_AdditiveListWithNetworkAwareDedupe(t *testing.T) {
	current := networkPackageWithLAN("192.168.1.1", "192.168.1.1")
	incoming := model.NewPackage("network")
	lan := model.NewSection("lan", "interface")
	lan.Lists["dns"] = []model.Value{"192.168.001.001", "8.8.8.8"}
	incoming.AddSection(lan)

	merged, conflicts, changes, err := Merge("network", current, incoming, Options{DedupeLists: true, PreserveExisting: true})
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	got := merged.Sections[0].Lists["dns"]
	assert.Equal(t, []model.Value{"192.168.1.1", "8.8.8.8"}, got)

	var modify, dedupe int
	for _, c := range changes {
		switch c.Action {
		case model.ActionModifyList:
			modify++
		case model.ActionDedupeList:
			dedupe++
		}
	}
	assert.Equal(t, 1, modify)
	assert.Equal(t, 1, dedupe)
}

// Scenario 2: option conflict, preserve-existing.
func TestMerge_OptionConflictPreserveExisting(t *testing.T) {
	current := networkPackageWithLAN("192.168.11.2")
	incoming := model.NewPackage("network")
	lan := model.NewSection("lan", "interface")
	lan.Options["ipaddr"] = "192.168.1.1"
	incoming.AddSection(lan)

	merged, conflicts, changes, err := Merge("network", current, incoming, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, model.Value("192.168.11.2"), merged.Sections[0].Options["ipaddr"])
	require.Len(t, conflicts, 1)
	assert.Equal(t, model.Conflict{
		Package: "network", Section: "lan", Name: "ipaddr",
		Existing: "192.168.11.2", Incoming: "192.168.1.1",
		Resolution: model.ResolutionKeptExisting,
	}, conflicts[0])
	assert.Empty(t, changes)
}

func TestMerge_OptionConflictTakeIncoming(t *testing.T) {
	current := networkPackageWithLAN("192.168.11.2")
	incoming := model.NewPackage("network")
	lan := model.NewSection("lan", "interface")
	lan.Options["ipaddr"] = "192.168.1.1"
	incoming.AddSection(lan)

	merged, conflicts, changes, err := Merge("network", current, incoming, Options{PreserveExisting: false})
	require.NoError(t, err)

	assert.Equal(t, model.Value("192.168.1.1"), merged.Sections[0].Options["ipaddr"])
	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ResolutionTookIncoming, conflicts[0].Resolution)
	require.Len(t, changes, 1)
	assert.Equal(t, model.ActionUpdateOpt, changes[0].Action)
}

// Scenario 5: preserve-network guard downgrade.
func TestMerge_PreserveNetworkGuardDowngradesToConflict(t *testing.T) {
	current := networkPackageWithLAN("192.168.11.2")
	incoming := model.NewPackage("network")
	lan := model.NewSection("lan", "interface")
	lan.Options["ipaddr"] = "10.0.0.1"
	incoming.AddSection(lan)

	merged, conflicts, changes, err := Merge("network", current, incoming, Options{PreserveExisting: false, PreserveNetwork: true})
	require.NoError(t, err)

	assert.Equal(t, model.Value("192.168.11.2"), merged.Sections[0].Options["ipaddr"])
	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ResolutionKeptExisting, conflicts[0].Resolution)
	assert.Empty(t, changes)
}

func TestMerge_TypeMismatchShadowing(t *testing.T) {
	current := model.NewPackage("dhcp")
	section := model.NewSection("lan", "dhcp")
	section.Options["leasetime"] = "12h"
	current.AddSection(section)

	incoming := model.NewPackage("dhcp")
	incomingSection := model.NewSection("lan", "dhcp")
	incomingSection.Lists["leasetime"] = []model.Value{"24h"}
	incoming.AddSection(incomingSection)

	merged, conflicts, _, err := Merge("dhcp", current, incoming, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, model.Value("12h"), merged.Sections[0].Options["leasetime"])
	assert.False(t, merged.Sections[0].HasList("leasetime"))
	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ResolutionKeptExisting, conflicts[0].Resolution)
}

func TestMerge_NewSectionAdded(t *testing.T) {
	current := model.NewPackage("firewall")
	incoming := model.NewPackage("firewall")
	rule := model.NewSection("", "rule")
	rule.Options["target"] = "ACCEPT"
	incoming.AddSection(rule)

	merged, conflicts, changes, err := Merge("firewall", current, incoming, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	require.Len(t, merged.Sections, 1)
	assert.Equal(t, model.Value("ACCEPT"), merged.Sections[0].Options["target"])
	require.Len(t, changes, 1)
	assert.Equal(t, model.ActionAddSection, changes[0].Action)
}

// Scenario 6: dry-run idempotence — running the same inputs twice yields
// identical (conflicts, changes) and never mutates the caller's inputs.
func TestMerge_DryRunIdempotentAndNonMutating(t *testing.T) {
	current := networkPackageWithLAN("192.168.1.1", "192.168.1.1")
	incoming := model.NewPackage("network")
	lan := model.NewSection("lan", "interface")
	lan.Lists["dns"] = []model.Value{"8.8.8.8"}
	incoming.AddSection(lan)

	opts := Options{DryRun: true, DedupeLists: true, PreserveExisting: true}

	_, conflicts1, changes1, err := Merge("network", current, incoming, opts)
	require.NoError(t, err)
	_, conflicts2, changes2, err := Merge("network", current, incoming, opts)
	require.NoError(t, err)

	assert.Equal(t, conflicts1, conflicts2)
	assert.Equal(t, changes1, changes2)
	// current must be untouched by either run.
	assert.Equal(t, []model.Value{"192.168.1.1", "192.168.1.1"}, current.Sections[0].Lists["dns"])
}

func TestMerge_RemovedInIncomingIsRetained(t *testing.T) {
	current := model.NewPackage("dhcp")
	section := model.NewSection("lan", "dhcp")
	section.Options["leasetime"] = "12h"
	current.AddSection(section)

	incoming := model.NewPackage("dhcp")

	merged, conflicts, changes, err := Merge("dhcp", current, incoming, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.Empty(t, changes)
	require.Len(t, merged.Sections, 1)
	assert.Equal(t, model.Value("12h"), merged.Sections[0].Options["leasetime"])
}
