// Package api defines the wire format shared by the drover daemon and
// its clients: request/response payloads and the error envelope.
package api

import (
	"errors"
	"net/http"

	"drover"
)

// ErrorKind is the wire name of a control-plane error kind.
type ErrorKind string

const (
	KindDuplicateHandle ErrorKind = "duplicate_handle"
	KindUnknownHandle   ErrorKind = "unknown_handle"
	KindInvalidState    ErrorKind = "invalid_state"
	KindOperationFailed ErrorKind = "operation_failed"
	KindBadRequest      ErrorKind = "bad_request"
)

// Error is the wire form of a failed operation.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Output  string    `json:"output,omitempty"` // captured process output
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error Error `json:"error"`
}

// PIDResponse carries a started node's process id.
type PIDResponse struct {
	PID int `json:"pid"`
}

// VersionResponse carries a node's daemon version.
type VersionResponse struct {
	Version string `json:"version"`
}

// ListResponse carries the projection of every live node.
type ListResponse struct {
	Nodes []drover.NodeInfo `json:"nodes"`
}

// FromErr maps a control-plane error to its wire form and HTTP status.
func FromErr(err error) (Error, int) {
	var op *drover.OpError
	switch {
	case errors.As(err, &op):
		return Error{Kind: KindOperationFailed, Message: op.Error(), Output: op.Output}, http.StatusBadGateway
	case errors.Is(err, drover.ErrUnknownHandle):
		return Error{Kind: KindUnknownHandle, Message: err.Error()}, http.StatusNotFound
	case errors.Is(err, drover.ErrInvalidState):
		return Error{Kind: KindInvalidState, Message: err.Error()}, http.StatusConflict
	case errors.Is(err, drover.ErrDuplicateHandle):
		return Error{Kind: KindDuplicateHandle, Message: err.Error()}, http.StatusConflict
	default:
		return Error{Kind: KindOperationFailed, Message: err.Error()}, http.StatusInternalServerError
	}
}

// Err converts the wire form back into the drover taxonomy, preserving
// the daemon-side message.
func (e Error) Err() error {
	switch e.Kind {
	case KindDuplicateHandle:
		return &remoteError{msg: e.Message, kind: drover.ErrDuplicateHandle}
	case KindUnknownHandle:
		return &remoteError{msg: e.Message, kind: drover.ErrUnknownHandle}
	case KindInvalidState:
		return &remoteError{msg: e.Message, kind: drover.ErrInvalidState}
	case KindOperationFailed:
		return &drover.OpError{Op: "remote", Output: e.Output, Err: errors.New(e.Message)}
	default:
		return errors.New(e.Message)
	}
}

// remoteError carries a daemon-side message while still matching its
// error kind under errors.Is.
type remoteError struct {
	msg  string
	kind error
}

func (e *remoteError) Error() string { return e.msg }

func (e *remoteError) Is(target error) bool { return target == e.kind }
