package config

import (
	"testing"
)

func setConfigHome(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoad_MissingFileIsEmptyConfig(t *testing.T) {
	setConfigHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CurrentContext != "" || len(cfg.Contexts) != 0 {
		t.Fatalf("empty config = %+v", cfg)
	}
	// The contexts map must be usable right away.
	cfg.Set("local", Context{Socket: "/tmp/droverd.sock"})
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	setConfigHome(t)

	cfg := &Config{Contexts: map[string]Context{
		"local":   {Socket: "/tmp/droverd.sock"},
		"staging": {Addr: "10.0.0.7:7070"},
	}}
	if err := cfg.Use("staging"); err != nil {
		t.Fatalf("Use: %v", err)
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CurrentContext != "staging" {
		t.Fatalf("current context = %q, want staging", got.CurrentContext)
	}
	if got.Contexts["local"].Socket != "/tmp/droverd.sock" {
		t.Fatalf("local context = %+v", got.Contexts["local"])
	}
	if got.Contexts["staging"].Addr != "10.0.0.7:7070" {
		t.Fatalf("staging context = %+v", got.Contexts["staging"])
	}
}

func TestUse_UnknownContext(t *testing.T) {
	cfg := &Config{Contexts: map[string]Context{}}
	if err := cfg.Use("nope"); err == nil {
		t.Fatal("Use of unknown context should fail")
	}
}

func TestCurrent_UnsetAndDangling(t *testing.T) {
	cfg := &Config{Contexts: map[string]Context{"local": {Socket: "/s"}}}
	if _, _, ok := cfg.Current(); ok {
		t.Fatal("Current should report false with no selection")
	}

	cfg.CurrentContext = "gone"
	if _, _, ok := cfg.Current(); ok {
		t.Fatal("Current should report false for a dangling selection")
	}

	cfg.CurrentContext = "local"
	name, ctx, ok := cfg.Current()
	if !ok || name != "local" || ctx.Socket != "/s" {
		t.Fatalf("Current = %q %+v %v", name, ctx, ok)
	}
}

func TestRemove_ClearsCurrentSelection(t *testing.T) {
	cfg := &Config{Contexts: map[string]Context{"local": {Socket: "/s"}}}
	if err := cfg.Use("local"); err != nil {
		t.Fatalf("Use: %v", err)
	}

	if err := cfg.Remove("local"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if cfg.CurrentContext != "" {
		t.Fatalf("current context = %q after removal, want empty", cfg.CurrentContext)
	}
	if err := cfg.Remove("local"); err == nil {
		t.Fatal("removing a missing context should fail")
	}
}

func TestEndpoint_SocketTakesPrecedence(t *testing.T) {
	ctx := Context{Socket: "/tmp/droverd.sock", Addr: "127.0.0.1:7070"}
	if got := ctx.Endpoint(); got != "/tmp/droverd.sock" {
		t.Fatalf("Endpoint = %q, want socket path", got)
	}

	ctx = Context{Addr: "127.0.0.1:7070"}
	if got := ctx.Endpoint(); got != "127.0.0.1:7070" {
		t.Fatalf("Endpoint = %q, want addr", got)
	}
}
