// Package nodeproc runs controlled nodes as child processes of the
// drover daemon.
//
// A node is one daemon binary rooted in a working directory. The binary
// is expected to support `init`, `daemon` and `version` subcommands and
// to publish its listen addresses by writing `api`, `gateway` and `rpc`
// files into the working directory once the daemon is ready.
package nodeproc

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"drover"
	"drover/controlplane"
)

// Factory spawns process-backed nodes. Implements controlplane.Factory.
type Factory struct {
	bin string
}

// Option configures a Factory.
type Option func(*Factory)

// WithBinary sets the default node binary, used when a spawn spec names
// none. Resolved via PATH unless absolute.
func WithBinary(path string) Option {
	return func(f *Factory) { f.bin = path }
}

func New(opts ...Option) *Factory {
	f := &Factory{bin: "casd"}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds a node from spec. When spec.Dir is empty a temporary
// working directory is allocated and the node becomes disposable: the
// directory is removed again on cleanup.
func (f *Factory) Create(_ context.Context, spec drover.SpawnSpec) (controlplane.Node, error) {
	bin := spec.Bin
	if bin == "" {
		bin = f.bin
	}
	if bin == "" {
		return nil, errors.New("no node binary configured")
	}

	dir := spec.Dir
	disposable := false
	if dir == "" {
		d, err := os.MkdirTemp("", "drover-node-")
		if err != nil {
			return nil, fmt.Errorf("create node directory: %w", err)
		}
		dir = d
		disposable = true
	}

	return &Node{
		bin:        bin,
		dir:        dir,
		args:       slices.Clone(spec.Args),
		env:        maps.Clone(spec.Env),
		disposable: disposable,
	}, nil
}
