// Package config loads confmerge's own operating configuration: restart
// grace periods, the lock-acquire timeout, the package-to-service
// mapping, the static service dependency graph edges, and dedup
// strategy overrides. This is distinct from the router ConfigTree the
// engine merges — it configures confmerge itself.
package config

import "time"

// ServiceEdge is one static dependency edge, read from YAML as a pair of
// service names.
type ServiceEdge struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Config is confmerge's own operating configuration.
type Config struct {
	// ConfigDir is the directory the Config Store reads and writes
	// package files in.
	ConfigDir string `yaml:"configDir"`

	// RestartGrace is how long the Service Controller waits for a service
	// to report running after a restart before declaring failure.
	RestartGrace time.Duration `yaml:"restartGrace"`
	// LockTimeout bounds how long the Orchestrator waits to acquire the
	// exclusive configuration lock before failing the transaction.
	LockTimeout time.Duration `yaml:"lockTimeout"`
	// TransactionDeadline bounds the whole merge-and-restart transaction.
	TransactionDeadline time.Duration `yaml:"transactionDeadline"`

	// PackageService maps a changed package name to the service that
	// owns it, overriding/extending resolver.DefaultPackageServiceMap.
	PackageService map[string]string `yaml:"packageService"`
	// ServiceGraph extends resolver.DefaultEdges; its edges are added to
	// the defaults, which are never removed.
	ServiceGraph []ServiceEdge `yaml:"serviceGraph"`

	// DedupeTagOverrides overrides entries in dedup.AutoStrategyTable,
	// keyed by semantic tag name ("dns", "proto", ...) with a strategy
	// name ("network-aware", "priority-based", "preserve-order"). This is
	// the configuration surface for the firewall proto/target dedupe
	// policy rather than a hardcoded mapping.
	DedupeTagOverrides map[string]string `yaml:"dedupeTagOverrides"`
}

// Default returns confmerge's built-in defaults, used when no config
// file is present and as the base that a loaded file's values override.
func Default() Config {
	return Config{
		ConfigDir:           "/etc/confmerge",
		RestartGrace:        10 * time.Second,
		LockTimeout:         5 * time.Second,
		TransactionDeadline: 2 * time.Minute,
	}
}
