package controlplane

import (
	"context"

	"drover"
)

// Node is one controllable daemon instance produced by a Factory. The
// registry holds the only long-lived reference; instances escape it only
// for the duration of a controller call.
type Node interface {
	Init(ctx context.Context, cfg map[string]any) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Cleanup(ctx context.Context) error

	// PID returns the daemon's process id, 0 when not running.
	PID() int
	Version(ctx context.Context) (string, error)

	// Address accessors return "" until the node has started.
	APIAddr() string
	GatewayAddr() string
	RPCAddr() string

	Disposable() bool
	Dir() string
	Env() map[string]string
}

// Factory constructs node instances from a spawn spec. In production
// this spawns child processes; in tests it can be a fake.
type Factory interface {
	Create(ctx context.Context, spec drover.SpawnSpec) (Node, error)
}
