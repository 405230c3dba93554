package drover

import (
	"errors"
	"fmt"
)

// The four error kinds every control-plane failure maps to. The
// transport layer only ever sees these; nothing else escapes the
// controller boundary.
var (
	// ErrDuplicateHandle reports a handle collision on insert. Handles
	// are unique by construction, so hitting this means a broken
	// allocator, not bad client input.
	ErrDuplicateHandle = errors.New("duplicate handle")

	// ErrUnknownHandle reports an operation against a handle with no
	// registry record: never spawned, or removed by cleanup.
	ErrUnknownHandle = errors.New("unknown handle")

	// ErrInvalidState reports an operation attempted outside its allowed
	// precondition states.
	ErrInvalidState = errors.New("invalid state")

	// ErrOperationFailed marks failures of the underlying node instance.
	// Matched via errors.Is against an *OpError.
	ErrOperationFailed = errors.New("operation failed")
)

// OpError wraps a failure raised by the factory or a node instance,
// carrying any captured process output for diagnostics. It matches
// ErrOperationFailed under errors.Is.
type OpError struct {
	Op     string // lifecycle operation, e.g. "start"
	Handle string // empty for spawn failures
	Output string // captured process output, may be empty
	Err    error
}

func (e *OpError) Error() string {
	if e.Handle == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Handle, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func (e *OpError) Is(target error) bool { return target == ErrOperationFailed }
