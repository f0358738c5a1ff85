// Package app contains the core application logic. It wires the registry,
// ledger, journals, aggregator, feed and inspection server for one instance
// and drives a scenario through them, decoupled from any specific entrypoint
// like a CLI.
package app
