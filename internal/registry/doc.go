// Package registry owns the table of named capabilities.
//
// Each capability has an active definition, a version and a stack of the
// definitions it replaced. Register and Modify push the active definition onto
// that stack and advance the version; Rollback pops it back. Every successful
// transition is recorded in the ledger while the registry's write lock is
// still held, so no reader sees a new version without its event. Failed
// operations change nothing and record nothing.
//
// Invoke runs the active definition through the sandbox executor. It captures
// the (definition, version) pair under the read lock and executes without it,
// so concurrent invocations never block each other or a pending replacement.
package registry
