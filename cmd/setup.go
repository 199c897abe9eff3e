package cmd

import (
	"confmerge/internal/config"
	"confmerge/internal/resolver"
	"confmerge/internal/store"
	"confmerge/internal/svcctl"
	"confmerge/internal/txn"
)

// buildOrchestrator loads confmerge's own configuration and wires an
// Orchestrator against the real systemd Service Controller and a
// YAMLStore rooted at the live configuration directory.
func buildOrchestrator() (*txn.Orchestrator, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if stateDir != "" {
		cfg.ConfigDir = stateDir
	}
	cfg.ApplyDedupeOverrides()

	live, err := store.NewYAMLStore(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}

	graph, err := resolver.NewGraph(cfg.ServiceEdges())
	if err != nil {
		return nil, err
	}
	res := resolver.New(graph, cfg.PackageServiceMap())

	controller := svcctl.NewSystemdController()

	orch := txn.New(live, controller, res, txn.Config{
		RestartGrace:        cfg.RestartGrace,
		LockTimeout:         cfg.LockTimeout,
		TransactionDeadline: cfg.TransactionDeadline,
	})
	return orch, nil
}

// buildSourceStore opens the given source directory the same way the
// live store is opened, since confmerge treats the on-disk format as a
// black box at either location (see internal/store's doc comment).
func buildSourceStore(dir string) (*store.YAMLStore, error) {
	return store.NewYAMLStore(dir)
}
