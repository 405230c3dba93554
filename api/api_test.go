package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"drover"
)

func TestFromErr_MapsTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   ErrorKind
		status int
	}{
		{
			name:   "unknown handle",
			err:    fmt.Errorf("status n1: %w", drover.ErrUnknownHandle),
			kind:   KindUnknownHandle,
			status: http.StatusNotFound,
		},
		{
			name:   "invalid state",
			err:    fmt.Errorf("start n1: %w", drover.ErrInvalidState),
			kind:   KindInvalidState,
			status: http.StatusConflict,
		},
		{
			name:   "duplicate handle",
			err:    fmt.Errorf("insert n1: %w", drover.ErrDuplicateHandle),
			kind:   KindDuplicateHandle,
			status: http.StatusConflict,
		},
		{
			name:   "node failure",
			err:    &drover.OpError{Op: "start", Handle: "n1", Output: "boom", Err: errors.New("exit status 1")},
			kind:   KindOperationFailed,
			status: http.StatusBadGateway,
		},
		{
			name:   "unclassified",
			err:    errors.New("unexpected"),
			kind:   KindOperationFailed,
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wireErr, status := FromErr(tt.err)
			if wireErr.Kind != tt.kind {
				t.Fatalf("kind = %s, want %s", wireErr.Kind, tt.kind)
			}
			if status != tt.status {
				t.Fatalf("status = %d, want %d", status, tt.status)
			}
			if wireErr.Message == "" {
				t.Fatal("message must not be empty")
			}
		})
	}
}

func TestFromErr_CarriesProcessOutput(t *testing.T) {
	wireErr, _ := FromErr(&drover.OpError{
		Op: "init", Handle: "n1",
		Output: "Error: bad config", Err: errors.New("exit status 1"),
	})
	if wireErr.Output != "Error: bad config" {
		t.Fatalf("output = %q, want captured process output", wireErr.Output)
	}
}

func TestErr_RoundTripsTaxonomy(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{KindDuplicateHandle, drover.ErrDuplicateHandle},
		{KindUnknownHandle, drover.ErrUnknownHandle},
		{KindInvalidState, drover.ErrInvalidState},
		{KindOperationFailed, drover.ErrOperationFailed},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := Error{Kind: tt.kind, Message: "daemon said no"}.Err()
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("reconstructed error %v does not match %v", err, tt.sentinel)
			}
			if err.Error() != "daemon said no" {
				t.Fatalf("message = %q, want daemon-side text preserved", err.Error())
			}
		})
	}
}

func TestErr_PreservesOutput(t *testing.T) {
	err := Error{Kind: KindOperationFailed, Message: "start n1: exit status 1", Output: "boom"}.Err()

	var op *drover.OpError
	if !errors.As(err, &op) {
		t.Fatalf("reconstructed error = %T, want *drover.OpError", err)
	}
	if op.Output != "boom" {
		t.Fatalf("output = %q, want boom", op.Output)
	}
}

func TestErr_UnknownKindIsPlainError(t *testing.T) {
	err := Error{Kind: "something_new", Message: "future kind"}.Err()
	if errors.Is(err, drover.ErrOperationFailed) {
		t.Fatal("unknown kind must not map to a taxonomy sentinel")
	}
	if err.Error() != "future kind" {
		t.Fatalf("message = %q", err.Error())
	}
}
