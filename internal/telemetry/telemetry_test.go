package telemetry

import (
	"context"
	"testing"
)

func TestNew_DisabledIsNoop(t *testing.T) {
	p, err := New(false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Tracer() == nil {
		t.Fatal("disabled provider must still hand out a tracer")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown of disabled provider: %v", err)
	}
}

func TestNew_EnabledShutsDownCleanly(t *testing.T) {
	p, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, span := p.Tracer().Start(context.Background(), "test.op")
	span.End()

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
