package nodeproc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// readyPollInterval is 50ms: address files appear within a few polls
	// on a healthy daemon, and polling is cheap.
	readyPollInterval = 50 * time.Millisecond
	// readyTimeout bounds Start when the caller's context carries no
	// deadline of its own.
	readyTimeout = 60 * time.Second
	// outputTailCap keeps the last 32KiB of daemon output for error
	// reporting.
	outputTailCap = 32 << 10
)

// Node is one daemon child process. Implements controlplane.Node.
type Node struct {
	bin        string
	dir        string
	args       []string
	env        map[string]string
	disposable bool

	mu      sync.Mutex
	cmd     *exec.Cmd
	waitCh  chan error
	out     *tailBuffer
	addrs   addrs
	version string
}

// addrs holds the addresses published by the running daemon. api is the
// readiness signal; gateway and rpc are optional.
type addrs struct {
	api, gateway, rpc string
}

// Init runs `<bin> init` in the node directory. A non-empty cfg is
// written to config.json first so the daemon picks it up.
func (n *Node) Init(ctx context.Context, cfg map[string]any) error {
	if len(cfg) > 0 {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("encode node config: %w", err)
		}
		if err := os.WriteFile(filepath.Join(n.dir, "config.json"), data, 0o644); err != nil {
			return fmt.Errorf("write node config: %w", err)
		}
	}

	out, err := n.run(ctx, "init")
	if err != nil {
		return &ExitError{Op: "init", Output: out, Err: err}
	}
	return nil
}

// Start launches `<bin> daemon` and waits for the daemon to publish its
// api address. On failure the child is killed best-effort and the
// captured output tail is attached to the error.
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	if n.cmd != nil {
		n.mu.Unlock()
		return errors.New("node process already running")
	}

	out := &tailBuffer{cap: outputTailCap}
	// Not CommandContext: the daemon must outlive the start request.
	cmd := exec.Command(n.bin, append([]string{"daemon"}, n.args...)...)
	cmd.Dir = n.dir
	cmd.Env = n.processEnv()
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		n.mu.Unlock()
		return &ExitError{Op: "start", Err: fmt.Errorf("start node process: %w", err)}
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	n.cmd = cmd
	n.waitCh = waitCh
	n.out = out
	n.mu.Unlock()

	if err := n.waitReady(ctx, waitCh); err != nil {
		_ = cmd.Process.Kill() // best-effort cleanup
		n.mu.Lock()
		n.cmd = nil
		n.waitCh = nil
		n.mu.Unlock()
		return &ExitError{Op: "start", Output: out.String(), Err: err}
	}
	return nil
}

// waitReady polls for the address files until they appear, the process
// dies, or the deadline passes.
func (n *Node) waitReady(ctx context.Context, waitCh <-chan error) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	tick := time.NewTicker(readyPollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for node api address: %w", ctx.Err())
		case err := <-waitCh:
			if err != nil {
				return fmt.Errorf("node process exited before publishing its api address: %w", err)
			}
			return errors.New("node process exited before publishing its api address")
		case <-tick.C:
			if n.loadAddrs() {
				return nil
			}
		}
	}
}

// loadAddrs reads the published address files. Returns false until the
// required api file exists.
func (n *Node) loadAddrs() bool {
	api, err := readAddrFile(filepath.Join(n.dir, "api"))
	if err != nil {
		return false
	}
	gateway, _ := readAddrFile(filepath.Join(n.dir, "gateway"))
	rpc, _ := readAddrFile(filepath.Join(n.dir, "rpc"))

	n.mu.Lock()
	n.addrs = addrs{api: api, gateway: gateway, rpc: rpc}
	n.mu.Unlock()
	return true
}

// Stop interrupts the daemon and waits for it to exit. The context
// bounds the wait; on expiry the process is force-killed.
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	cmd, waitCh := n.cmd, n.waitCh
	n.cmd = nil
	n.waitCh = nil
	n.addrs = addrs{}
	n.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		// Process already exited.
		return nil
	}

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill() // best-effort force kill
		return fmt.Errorf("stop node process: %w", ctx.Err())
	case err := <-waitCh:
		if err != nil {
			// Exit status != 0 is expected on interrupt.
			slog.Debug("Node process exited.", "err", err)
		}
		return nil
	}
}

// Cleanup stops the daemon if it is still running and removes the node
// directory when the node owns it. A caller-provided directory is left
// in place.
func (n *Node) Cleanup(ctx context.Context) error {
	_ = n.Stop(ctx) // the node may never have started

	if !n.disposable {
		return nil
	}
	if err := os.RemoveAll(n.dir); err != nil {
		return fmt.Errorf("remove node directory: %w", err)
	}
	return nil
}

// PID returns the daemon's process id, 0 when not running.
func (n *Node) PID() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cmd == nil || n.cmd.Process == nil {
		return 0
	}
	return n.cmd.Process.Pid
}

// Version runs `<bin> version` once and caches the trimmed output.
func (n *Node) Version(ctx context.Context) (string, error) {
	n.mu.Lock()
	if n.version != "" {
		v := n.version
		n.mu.Unlock()
		return v, nil
	}
	n.mu.Unlock()

	out, err := n.run(ctx, "version")
	if err != nil {
		return "", &ExitError{Op: "version", Output: out, Err: err}
	}
	v := strings.TrimSpace(out)

	n.mu.Lock()
	n.version = v
	n.mu.Unlock()
	return v, nil
}

func (n *Node) APIAddr() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.addrs.api
}

func (n *Node) GatewayAddr() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.addrs.gateway
}

func (n *Node) RPCAddr() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.addrs.rpc
}

func (n *Node) Disposable() bool { return n.disposable }
func (n *Node) Dir() string      { return n.dir }

func (n *Node) Env() map[string]string {
	return maps.Clone(n.env)
}

// run executes a short-lived node subcommand and returns its combined
// output.
func (n *Node) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, n.bin, args...)
	cmd.Dir = n.dir
	cmd.Env = n.processEnv()
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func (n *Node) processEnv() []string {
	env := os.Environ()
	for k, v := range n.env {
		env = append(env, k+"="+v)
	}
	return env
}

func readAddrFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	addr := strings.TrimSpace(string(data))
	if addr == "" {
		return "", fmt.Errorf("address file %s is empty", path)
	}
	return addr, nil
}
