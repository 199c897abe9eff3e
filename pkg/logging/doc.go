// Package logging provides a small structured logging façade for confmerge.
//
// Every component logs through a subsystem tag — "Orchestrator", "MergeEngine",
// "Dedup", "Resolver", "ServiceController", "Store", "ConfigLoader", "CLI" —
// so transaction output can be filtered or correlated by component. Output is
// formatted with log/slog's text handler; Init must be called once at process
// startup (normally from cmd/) before any other package logs.
package logging
