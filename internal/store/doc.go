// Package store implements the Config Store adapter consumed by the
// Merge Engine and Transaction Orchestrator. The real device
// configuration format is treated as a black box elsewhere in this
// system; YAMLStore is a concrete adapter standing in for it, so the
// rest of confmerge can be exercised end to end against a real
// filesystem without depending on an external config parser.
package store
