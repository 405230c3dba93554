package nodeproc

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"drover"
)

// fakeBin writes an executable shell script standing in for the node
// binary and returns its path.
func fakeBin(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}
	path := filepath.Join(t.TempDir(), "casd")
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	return path
}

// healthyBin behaves like a well-mannered node daemon: init and version
// succeed, daemon publishes its addresses and then sleeps.
func healthyBin(t *testing.T) string {
	t.Helper()
	return fakeBin(t, `case "$1" in
init)
	echo "repo initialized"
	;;
version)
	echo "casd/0.9.1-fake"
	;;
daemon)
	echo "/ip4/127.0.0.1/tcp/5001" > api
	echo "/ip4/127.0.0.1/tcp/8080" > gateway
	exec sleep 300
	;;
esac
`)
}

func createNode(t *testing.T, bin string, spec drover.SpawnSpec) *Node {
	t.Helper()
	spec.Bin = bin
	n, err := New().Create(context.Background(), spec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return n.(*Node)
}

func TestCreate_AllocatesDisposableDir(t *testing.T) {
	n := createNode(t, healthyBin(t), drover.SpawnSpec{})
	t.Cleanup(func() { _ = os.RemoveAll(n.Dir()) })

	if !n.Disposable() {
		t.Fatal("node with allocated dir should be disposable")
	}
	if _, err := os.Stat(n.Dir()); err != nil {
		t.Fatalf("node dir missing: %v", err)
	}

	if err := n.Cleanup(context.Background()); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(n.Dir()); !os.IsNotExist(err) {
		t.Fatalf("node dir still present after cleanup: %v", err)
	}
}

func TestCreate_CallerDirSurvivesCleanup(t *testing.T) {
	dir := t.TempDir()
	n := createNode(t, healthyBin(t), drover.SpawnSpec{Dir: dir})

	if n.Disposable() {
		t.Fatal("node with caller dir must not be disposable")
	}
	if err := n.Cleanup(context.Background()); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("caller dir removed by cleanup: %v", err)
	}
}

func TestCreate_NoBinaryConfigured(t *testing.T) {
	f := &Factory{}
	if _, err := f.Create(context.Background(), drover.SpawnSpec{}); err == nil {
		t.Fatal("Create without a binary should fail")
	}
}

func TestInit_WritesConfigFile(t *testing.T) {
	dir := t.TempDir()
	n := createNode(t, healthyBin(t), drover.SpawnSpec{Dir: dir})

	cfg := map[string]any{"profile": "test", "replication": float64(3)}
	if err := n.Init(context.Background(), cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("read config.json: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode config.json: %v", err)
	}
	if got["profile"] != "test" || got["replication"] != float64(3) {
		t.Fatalf("config.json = %v, want %v", got, cfg)
	}
}

func TestInit_FailureCarriesOutput(t *testing.T) {
	bin := fakeBin(t, `echo "bad repo layout" >&2
exit 1
`)
	n := createNode(t, bin, drover.SpawnSpec{Dir: t.TempDir()})

	err := n.Init(context.Background(), nil)
	var exit *ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("Init error = %T, want *ExitError", err)
	}
	if !strings.Contains(exit.ProcessOutput(), "bad repo layout") {
		t.Fatalf("captured output = %q, want stderr text", exit.ProcessOutput())
	}
}

func TestStartStop_PublishesAndClearsAddresses(t *testing.T) {
	n := createNode(t, healthyBin(t), drover.SpawnSpec{Dir: t.TempDir()})

	if err := n.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if n.APIAddr() != "/ip4/127.0.0.1/tcp/5001" {
		t.Fatalf("api addr = %q", n.APIAddr())
	}
	if n.GatewayAddr() != "/ip4/127.0.0.1/tcp/8080" {
		t.Fatalf("gateway addr = %q", n.GatewayAddr())
	}
	if n.RPCAddr() != "" {
		t.Fatalf("rpc addr = %q, want empty", n.RPCAddr())
	}
	if n.PID() <= 0 {
		t.Fatalf("pid = %d, want positive", n.PID())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := n.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if n.APIAddr() != "" || n.PID() != 0 {
		t.Fatalf("addr %q pid %d after stop, want cleared", n.APIAddr(), n.PID())
	}

	// Stopping a stopped node is harmless.
	if err := n.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestStart_ProcessDiesBeforeReady(t *testing.T) {
	bin := fakeBin(t, `echo "cannot bind api port" >&2
exit 1
`)
	n := createNode(t, bin, drover.SpawnSpec{Dir: t.TempDir()})

	err := n.Start(context.Background())
	var exit *ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("Start error = %T (%v), want *ExitError", err, err)
	}
	if !strings.Contains(exit.ProcessOutput(), "cannot bind api port") {
		t.Fatalf("captured output = %q, want daemon stderr", exit.ProcessOutput())
	}

	// The failed start must leave the node restartable.
	if n.PID() != 0 {
		t.Fatalf("pid = %d after failed start, want 0", n.PID())
	}
}

func TestVersion_CachesFirstResult(t *testing.T) {
	dir := t.TempDir()
	bin := fakeBin(t, `case "$1" in
version)
	echo run >> invocations
	echo "casd/0.9.1-fake"
	;;
esac
`)
	n := createNode(t, bin, drover.SpawnSpec{Dir: dir})

	for range 2 {
		v, err := n.Version(context.Background())
		if err != nil {
			t.Fatalf("Version: %v", err)
		}
		if v != "casd/0.9.1-fake" {
			t.Fatalf("version = %q", v)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "invocations"))
	if err != nil {
		t.Fatalf("read invocation log: %v", err)
	}
	if got := strings.Count(string(data), "run"); got != 1 {
		t.Fatalf("version subcommand ran %d times, want 1", got)
	}
}

func TestNode_PassesEnvironment(t *testing.T) {
	dir := t.TempDir()
	bin := fakeBin(t, `printf '%s' "$CASD_PROFILE" > profile
`)
	n := createNode(t, bin, drover.SpawnSpec{
		Dir: dir,
		Env: map[string]string{"CASD_PROFILE": "archival"},
	})

	if err := n.Init(context.Background(), nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "profile"))
	if err != nil {
		t.Fatalf("read profile marker: %v", err)
	}
	if string(data) != "archival" {
		t.Fatalf("env passthrough = %q, want archival", data)
	}
}

func TestTailBuffer_KeepsOnlyTail(t *testing.T) {
	b := &tailBuffer{cap: 8}

	for _, chunk := range []string{"0123", "4567", "89ab"} {
		if _, err := b.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if got := b.String(); got != "456789ab" {
		t.Fatalf("tail = %q, want last 8 bytes", got)
	}
}
