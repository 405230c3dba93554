package controlplane

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"drover"
)

// nopNode satisfies Node with inert behavior for registry tests.
type nopNode struct{}

func (nopNode) Init(context.Context, map[string]any) error { return nil }
func (nopNode) Start(context.Context) error                { return nil }
func (nopNode) Stop(context.Context) error                 { return nil }
func (nopNode) Cleanup(context.Context) error              { return nil }
func (nopNode) PID() int                                   { return 0 }
func (nopNode) Version(context.Context) (string, error)    { return "", nil }
func (nopNode) APIAddr() string                            { return "" }
func (nopNode) GatewayAddr() string                        { return "" }
func (nopNode) RPCAddr() string                            { return "" }
func (nopNode) Disposable() bool                           { return false }
func (nopNode) Dir() string                                { return "" }
func (nopNode) Env() map[string]string                     { return nil }

func TestInsert_DuplicateHandle(t *testing.T) {
	r := NewRegistry()

	if err := r.Insert("h1", nopNode{}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := r.Insert("h1", nopNode{})
	if !errors.Is(err, drover.ErrDuplicateHandle) {
		t.Fatalf("Insert error = %v, want ErrDuplicateHandle", err)
	}
}

func TestGet_UnknownHandle(t *testing.T) {
	r := NewRegistry()

	_, _, err := r.Get("nope")
	if !errors.Is(err, drover.ErrUnknownHandle) {
		t.Fatalf("Get error = %v, want ErrUnknownHandle", err)
	}
}

func TestTransition_ValidatesPriorState(t *testing.T) {
	r := NewRegistry()
	if err := r.Insert("h1", nopNode{}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// Spawned -> Started is not an allowed start precondition.
	_, st, err := r.Transition("h1", drover.StateStarted,
		drover.StateInitialized, drover.StateStopped)
	if !errors.Is(err, drover.ErrInvalidState) {
		t.Fatalf("Transition error = %v, want ErrInvalidState", err)
	}
	if st != drover.StateSpawned {
		t.Fatalf("observed state = %s, want spawned", st)
	}

	// The failed transition must not have changed anything.
	_, st, err = r.Get("h1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if st != drover.StateSpawned {
		t.Fatalf("state after failed transition = %s, want spawned", st)
	}
}

func TestTransition_ReturnsPriorState(t *testing.T) {
	r := NewRegistry()
	if err := r.Insert("h1", nopNode{}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	_, prior, err := r.Transition("h1", drover.StateInitialized, drover.StateSpawned)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if prior != drover.StateSpawned {
		t.Fatalf("prior = %s, want spawned", prior)
	}
}

func TestTransition_ConcurrentSingleWinner(t *testing.T) {
	r := NewRegistry()
	if err := r.Insert("h1", nopNode{}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, _, err := r.Transition("h1", drover.StateInitialized, drover.StateSpawned); err != nil {
		t.Fatalf("Transition to initialized: %v", err)
	}

	const racers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := r.Transition("h1", drover.StateStarted,
				drover.StateInitialized, drover.StateStopped); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
}

func TestRemove_MakesHandleUnknown(t *testing.T) {
	r := NewRegistry()
	if err := r.Insert("h1", nopNode{}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	r.Remove("h1")

	_, _, err := r.Get("h1")
	if !errors.Is(err, drover.ErrUnknownHandle) {
		t.Fatalf("Get after Remove = %v, want ErrUnknownHandle", err)
	}
	// Removing again is harmless.
	r.Remove("h1")
}

func TestSnapshot_SortedByHandle(t *testing.T) {
	r := NewRegistry()
	for _, h := range []string{"c", "a", "b"} {
		if err := r.Insert(h, nopNode{}); err != nil {
			t.Fatalf("Insert %s: %v", h, err)
		}
	}

	entries := r.Snapshot()
	if len(entries) != 3 {
		t.Fatalf("snapshot length = %d, want 3", len(entries))
	}
	for i, want := range []string{"a", "b", "c"} {
		if entries[i].Handle != want {
			t.Fatalf("entries[%d].Handle = %s, want %s", i, entries[i].Handle, want)
		}
	}
}

func TestConcurrentInsert_DistinctHandles(t *testing.T) {
	r := NewRegistry()

	const n = 64
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.Insert(fmt.Sprintf("h%d", i), nopNode{})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if got := len(r.Snapshot()); got != n {
		t.Fatalf("snapshot length = %d, want %d", got, n)
	}
}
