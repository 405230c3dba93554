package nodeproc

import "fmt"

// ExitError reports a node process failure together with the captured
// output tail. The control plane lifts Output into its own error type
// via ProcessOutput.
type ExitError struct {
	Op     string
	Output string
	Err    error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("node %s: %v", e.Op, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ProcessOutput returns the captured stdout/stderr tail.
func (e *ExitError) ProcessOutput() string { return e.Output }
