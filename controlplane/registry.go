package controlplane

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"drover"
	"drover/internal/check"
)

// record pairs a node instance with its lifecycle state.
type record struct {
	node  Node
	state drover.State
}

// Registry is the process-scoped table of live nodes. All methods are
// safe for concurrent use; operations on the same handle are
// linearizable, so a reader never observes a record mid-transition.
type Registry struct {
	mu    sync.Mutex
	nodes map[string]*record
}

func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*record)}
}

// Insert adds a new node in StateSpawned. A collision returns
// ErrDuplicateHandle; with UUID handles this is a defensive check only.
func (r *Registry) Insert(handle string, n Node) error {
	check.Assert(n != nil, "Registry.Insert: node must not be nil")

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[handle]; ok {
		return fmt.Errorf("%w: %s", drover.ErrDuplicateHandle, handle)
	}
	r.nodes[handle] = &record{node: n, state: drover.StateSpawned}
	return nil
}

// Get returns the node and its current state.
func (r *Registry) Get(handle string) (Node, drover.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.nodes[handle]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", drover.ErrUnknownHandle, handle)
	}
	return rec.node, rec.state, nil
}

// Transition atomically moves handle from one of the `from` states to
// `to`, returning the node and the prior state. Check and update are one
// critical section: of two racing callers exactly one wins, the loser
// observes the post-transition state and gets ErrInvalidState.
func (r *Registry) Transition(handle string, to drover.State, from ...drover.State) (Node, drover.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.nodes[handle]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", drover.ErrUnknownHandle, handle)
	}
	if !slices.Contains(from, rec.state) {
		return nil, rec.state, fmt.Errorf("%w: node is %s, want %s",
			drover.ErrInvalidState, rec.state, stateList(from))
	}
	prior := rec.state
	rec.state = to
	return rec.node, prior, nil
}

// SetState unconditionally overwrites the state. The controller uses it
// to roll back a transition whose node call failed. Unknown handles are
// ignored: the record may have been cleaned up concurrently.
func (r *Registry) SetState(handle string, s drover.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.nodes[handle]; ok {
		rec.state = s
	}
}

// Remove deletes the record entirely. A removed handle is
// indistinguishable from one that never existed.
func (r *Registry) Remove(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nodes, handle)
}

// Entry is one row of a registry snapshot.
type Entry struct {
	Handle string
	Node   Node
	State  drover.State
}

// Snapshot returns the live handles with their nodes and states, sorted
// by handle.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	entries := make([]Entry, 0, len(r.nodes))
	for h, rec := range r.nodes {
		entries = append(entries, Entry{Handle: h, Node: rec.node, State: rec.state})
	}
	r.mu.Unlock()

	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Handle, b.Handle)
	})
	return entries
}

func stateList(states []drover.State) string {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = s.String()
	}
	return strings.Join(names, " or ")
}
