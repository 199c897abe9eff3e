package config

import (
	"os"

	"confmerge/internal/dedup"
	"confmerge/internal/resolver"

	"confmerge/pkg/logging"

	"gopkg.in/yaml.v3"
)

const subsystem = "ConfigLoader"

// Load reads confmerge's own configuration file at path, overlaying its
// values onto Default(). A missing file is not an error: it yields the
// defaults untouched, matching a fresh install with no tuning applied
// yet.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logging.Debug(subsystem, "no config file at %s, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, err
	}

	applyOverlay(&cfg, overlay)
	logging.Info(subsystem, "loaded configuration from %s", path)
	return cfg, nil
}

func applyOverlay(cfg *Config, overlay Config) {
	if overlay.ConfigDir != "" {
		cfg.ConfigDir = overlay.ConfigDir
	}
	if overlay.RestartGrace != 0 {
		cfg.RestartGrace = overlay.RestartGrace
	}
	if overlay.LockTimeout != 0 {
		cfg.LockTimeout = overlay.LockTimeout
	}
	if overlay.TransactionDeadline != 0 {
		cfg.TransactionDeadline = overlay.TransactionDeadline
	}
	if len(overlay.PackageService) > 0 {
		cfg.PackageService = overlay.PackageService
	}
	if len(overlay.ServiceGraph) > 0 {
		cfg.ServiceGraph = overlay.ServiceGraph
	}
	if len(overlay.DedupeTagOverrides) > 0 {
		cfg.DedupeTagOverrides = overlay.DedupeTagOverrides
	}
}

// PackageServiceMap resolves the effective package->service mapping:
// resolver.DefaultPackageServiceMap overridden/extended by cfg's own.
func (c Config) PackageServiceMap() map[string]string {
	merged := make(map[string]string, len(resolver.DefaultPackageServiceMap)+len(c.PackageService))
	for k, v := range resolver.DefaultPackageServiceMap {
		merged[k] = v
	}
	for k, v := range c.PackageService {
		merged[k] = v
	}
	return merged
}

// ServiceEdges resolves the effective dependency graph edges:
// resolver.DefaultEdges extended by cfg's own.
func (c Config) ServiceEdges() []resolver.Edge {
	edges := make([]resolver.Edge, len(resolver.DefaultEdges))
	copy(edges, resolver.DefaultEdges)
	for _, e := range c.ServiceGraph {
		edges = append(edges, resolver.Edge{From: resolver.NodeID(e.From), To: resolver.NodeID(e.To)})
	}
	return edges
}

// ApplyDedupeOverrides rewrites entries of dedup.AutoStrategyTable per
// cfg.DedupeTagOverrides. Unknown strategy names are skipped with a
// warning rather than failing configuration load entirely.
func (c Config) ApplyDedupeOverrides() {
	for tag, strategyName := range c.DedupeTagOverrides {
		strategy := dedup.Strategy(strategyName)
		switch strategy {
		case dedup.StrategyPreserveOrder, dedup.StrategyNetworkAware, dedup.StrategyPriorityBased:
			dedup.AutoStrategyTable[dedup.SemanticTag(tag)] = strategy
		default:
			logging.Warn(subsystem, "ignoring unknown dedupe strategy %q for tag %q", strategyName, tag)
		}
	}
}
