// Package controlplane owns the node registry and lifecycle state
// machine.
//
// The Controller orchestrates lifecycle operations against
// factory-produced node instances; the Registry is the single piece of
// shared mutable state, a process-scoped handle table with atomic state
// transitions. Process spawning lives behind the Factory port (see
// package nodeproc for the production implementation).
package controlplane
