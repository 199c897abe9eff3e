package store

import (
	"path/filepath"
	"testing"

	"confmerge/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *YAMLStore {
	t.Helper()
	s, err := NewYAMLStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestYAMLStore_LoadMissingPackageReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	pkg, err := s.Load("network")
	require.NoError(t, err)
	assert.Equal(t, "network", pkg.Name)
	assert.Empty(t, pkg.Sections)
}

func TestYAMLStore_CommitThenLoadRoundTrips(t *testing.T) {
	s := newTestStore(t)

	pkg := model.NewPackage("network")
	lan := model.NewSection("lan", "interface")
	lan.Options["ipaddr"] = "192.168.1.1"
	lan.Lists["dns"] = []model.Value{"8.8.8.8", "1.1.1.1"}
	pkg.AddSection(lan)

	require.NoError(t, s.Commit("network", pkg))

	loaded, err := s.Load("network")
	require.NoError(t, err)
	require.Len(t, loaded.Sections, 1)
	assert.Equal(t, "lan", loaded.Sections[0].Name)
	assert.Equal(t, model.Value("192.168.1.1"), loaded.Sections[0].Options["ipaddr"])
	assert.Equal(t, []model.Value{"8.8.8.8", "1.1.1.1"}, loaded.Sections[0].Lists["dns"])
}

func TestYAMLStore_ListPackages(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Commit("network", model.NewPackage("network")))
	require.NoError(t, s.Commit("firewall", model.NewPackage("firewall")))

	names, err := s.ListPackages()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"network", "firewall"}, names)
}

func TestYAMLStore_SnapshotAndRestore(t *testing.T) {
	s := newTestStore(t)

	original := model.NewPackage("network")
	section := model.NewSection("lan", "interface")
	section.Options["ipaddr"] = "192.168.1.1"
	original.AddSection(section)
	require.NoError(t, s.Commit("network", original))

	snapshot, err := s.Snapshot([]string{"network"})
	require.NoError(t, err)

	mutated := original.Clone()
	mutated.Sections[0].Options["ipaddr"] = "10.0.0.1"
	require.NoError(t, s.Commit("network", mutated))

	loaded, _ := s.Load("network")
	assert.Equal(t, model.Value("10.0.0.1"), loaded.Sections[0].Options["ipaddr"])

	require.NoError(t, s.Restore(snapshot))
	restored, _ := s.Load("network")
	assert.Equal(t, model.Value("192.168.1.1"), restored.Sections[0].Options["ipaddr"])
}

func TestYAMLStore_CommitIsAtomic_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s, err := NewYAMLStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Commit("network", model.NewPackage("network")))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my_pkg", sanitizeFilename("my/pkg"))
	assert.Equal(t, "a_b", sanitizeFilename("a___b"))
	assert.Equal(t, "network", sanitizeFilename("network"))
}
