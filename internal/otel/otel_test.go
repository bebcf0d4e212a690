package otel

import (
	"context"
	"testing"
)

func TestSetup_noEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "", "selconflict")
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestSetup(t *testing.T) {
	// the exporter connects lazily, so no collector is needed
	shutdown, err := Setup(context.Background(), "localhost:4317", "selconflict")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
