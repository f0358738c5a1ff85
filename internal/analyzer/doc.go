// Package analyzer inspects the source of a capability definition before it is
// admitted: which functions it calls, which variables it references, how deeply
// it nests and a handful of quality issues. Only the catch-all issue is fatal.
package analyzer
