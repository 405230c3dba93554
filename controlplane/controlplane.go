package controlplane

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"drover"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Controller orchestrates lifecycle operations against factory-produced
// nodes. State preconditions are enforced through the registry's atomic
// transitions, and every node failure is re-raised as a *drover.OpError
// so the transport layer only ever sees the four-kind taxonomy.
//
// State is advanced before the blocking node call: the loser of a race
// on the same handle observes the post-transition state immediately and
// fails with ErrInvalidState. If the node call then fails, the prior
// state is restored.
type Controller struct {
	factory   Factory
	registry  *Registry
	newHandle HandleAllocator
	tracer    trace.Tracer
}

// Option configures a Controller. Use these to inject test dependencies.
type Option func(*Controller)

// WithHandleAllocator overrides handle generation.
func WithHandleAllocator(alloc HandleAllocator) Option {
	return func(c *Controller) {
		c.newHandle = alloc
	}
}

// WithTracer records a span per lifecycle operation.
func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) {
		c.tracer = t
	}
}

func New(f Factory, opts ...Option) *Controller {
	c := &Controller{
		factory:   f,
		registry:  NewRegistry(),
		newHandle: NewHandle,
		tracer:    noop.NewTracerProvider().Tracer("controlplane"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Spawn creates a node instance and registers it under a fresh handle.
func (c *Controller) Spawn(ctx context.Context, spec drover.SpawnSpec) (drover.NodeInfo, error) {
	ctx, span := c.tracer.Start(ctx, "node.spawn")
	defer span.End()

	n, err := c.factory.Create(ctx, spec)
	if err != nil {
		span.RecordError(err)
		return drover.NodeInfo{}, opErr("spawn", "", err)
	}

	handle := c.newHandle()
	if err := c.registry.Insert(handle, n); err != nil {
		// Unreachable with UUID handles. Don't leak the orphaned instance.
		_ = n.Cleanup(context.WithoutCancel(ctx))
		span.RecordError(err)
		return drover.NodeInfo{}, err
	}
	span.SetAttributes(attribute.String("node.handle", handle))

	slog.Info("Node spawned.", "handle", handle, "dir", n.Dir(), "disposable", n.Disposable())
	return c.info(handle, n, drover.StateSpawned), nil
}

// Init initializes the node. Re-initializing an already-initialized node
// is allowed and treated as reconfiguration.
func (c *Controller) Init(ctx context.Context, handle string, cfg map[string]any) (drover.NodeInfo, error) {
	ctx, span := c.startSpan(ctx, "node.init", handle)
	defer span.End()

	n, prior, err := c.registry.Transition(handle, drover.StateInitialized,
		drover.StateSpawned, drover.StateInitialized)
	if err != nil {
		span.RecordError(err)
		return drover.NodeInfo{}, err
	}

	if err := n.Init(ctx, cfg); err != nil {
		c.registry.SetState(handle, prior)
		span.RecordError(err)
		return drover.NodeInfo{}, opErr("init", handle, err)
	}

	slog.Info("Node initialized.", "handle", handle)
	return c.info(handle, n, drover.StateInitialized), nil
}

// Start brings the node's daemon up. Valid from Initialized or Stopped;
// a second Start on a running node fails with ErrInvalidState rather
// than double-starting.
func (c *Controller) Start(ctx context.Context, handle string) (drover.NodeInfo, error) {
	ctx, span := c.startSpan(ctx, "node.start", handle)
	defer span.End()

	n, prior, err := c.registry.Transition(handle, drover.StateStarted,
		drover.StateInitialized, drover.StateStopped)
	if err != nil {
		span.RecordError(err)
		return drover.NodeInfo{}, err
	}

	if err := n.Start(ctx); err != nil {
		c.registry.SetState(handle, prior)
		span.RecordError(err)
		return drover.NodeInfo{}, opErr("start", handle, err)
	}

	slog.Info("Node started.", "handle", handle, "api", n.APIAddr(), "pid", n.PID())
	return c.info(handle, n, drover.StateStarted), nil
}

// Stop shuts the node's daemon down. Stopping an already-stopped node
// fails with ErrInvalidState. Stop never cleans up.
func (c *Controller) Stop(ctx context.Context, handle string) error {
	ctx, span := c.startSpan(ctx, "node.stop", handle)
	defer span.End()

	n, prior, err := c.registry.Transition(handle, drover.StateStopped, drover.StateStarted)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := n.Stop(ctx); err != nil {
		c.registry.SetState(handle, prior)
		span.RecordError(err)
		return opErr("stop", handle, err)
	}

	slog.Info("Node stopped.", "handle", handle)
	return nil
}

// Cleanup tears the node down and removes its record. Unknown handles
// report success, as does a handle whose cleanup is already in flight:
// a disposable node's automatic teardown may race an explicit cleanup
// call, and both must win. The record is removed even when the node's
// own cleanup fails — a half-cleaned node is not worth keeping
// addressable.
func (c *Controller) Cleanup(ctx context.Context, handle string) error {
	ctx, span := c.startSpan(ctx, "node.cleanup", handle)
	defer span.End()

	n, observed, err := c.registry.Transition(handle, drover.StateCleanedUp,
		drover.StateSpawned, drover.StateInitialized, drover.StateStarted, drover.StateStopped)
	if err != nil {
		// The record sits in StateCleanedUp while another cleanup call is
		// still inside the node's teardown. That loser must succeed too.
		if errors.Is(err, drover.ErrUnknownHandle) || observed == drover.StateCleanedUp {
			return nil
		}
		span.RecordError(err)
		return err
	}
	defer c.registry.Remove(handle)

	if err := n.Cleanup(ctx); err != nil {
		span.RecordError(err)
		return opErr("cleanup", handle, err)
	}

	slog.Info("Node cleaned up.", "handle", handle)
	return nil
}

// PID returns the daemon process id. Valid only while started.
func (c *Controller) PID(ctx context.Context, handle string) (int, error) {
	n, st, err := c.registry.Get(handle)
	if err != nil {
		return 0, err
	}
	if st != drover.StateStarted {
		return 0, fmt.Errorf("%w: pid requires a started node, node is %s", drover.ErrInvalidState, st)
	}
	return n.PID(), nil
}

// Version reports the node's daemon version. Valid in any live state so
// a node whose init failed can still be inspected.
func (c *Controller) Version(ctx context.Context, handle string) (string, error) {
	n, _, err := c.registry.Get(handle)
	if err != nil {
		return "", err
	}
	v, err := n.Version(ctx)
	if err != nil {
		return "", opErr("version", handle, err)
	}
	return v, nil
}

// Status returns the node's metadata projection.
func (c *Controller) Status(ctx context.Context, handle string) (drover.NodeInfo, error) {
	n, st, err := c.registry.Get(handle)
	if err != nil {
		return drover.NodeInfo{}, err
	}
	return c.info(handle, n, st), nil
}

// List returns the projection for every live node, sorted by handle.
func (c *Controller) List(ctx context.Context) []drover.NodeInfo {
	entries := c.registry.Snapshot()
	infos := make([]drover.NodeInfo, len(entries))
	for i, e := range entries {
		infos[i] = c.info(e.Handle, e.Node, e.State)
	}
	return infos
}

func (c *Controller) startSpan(ctx context.Context, op, handle string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("node.handle", handle)))
}

func (c *Controller) info(handle string, n Node, st drover.State) drover.NodeInfo {
	env := n.Env()
	if env == nil {
		env = map[string]string{}
	}
	return drover.NodeInfo{
		Handle:      handle,
		State:       st.String(),
		APIAddr:     n.APIAddr(),
		GatewayAddr: n.GatewayAddr(),
		RPCAddr:     n.RPCAddr(),
		Disposable:  n.Disposable(),
		Dir:         n.Dir(),
		Initialized: st != drover.StateSpawned,
		Started:     st == drover.StateStarted,
		Env:         env,
	}
}

// opErr wraps a node failure into the uniform taxonomy, lifting captured
// process output when the underlying error carries any.
func opErr(op, handle string, err error) error {
	e := &drover.OpError{Op: op, Handle: handle, Err: err}
	var po interface{ ProcessOutput() string }
	if errors.As(err, &po) {
		e.Output = po.ProcessOutput()
	}
	return e
}
