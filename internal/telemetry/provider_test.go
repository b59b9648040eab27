package telemetry

import (
	"context"
	"testing"
)

func TestInitProviderDisabled(t *testing.T) {
	ctx := context.Background()
	shutdown, err := InitProvider(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("InitProvider failed: %v", err)
	}
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown returned error: %v", err)
	}

	_, span := StartCommandSpan(ctx, "placement version")
	if span.SpanContext().IsValid() {
		t.Error("disabled tracing should produce non-recording spans")
	}
	span.End()
}

func TestInitProviderEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = "collector.example.com:4318"
	cfg.SampleRate = 0.5

	ctx := context.Background()
	shutdown, err := InitProvider(ctx, cfg)
	if err != nil {
		t.Fatalf("InitProvider failed: %v", err)
	}
	t.Cleanup(func() {
		_, _ = InitProvider(ctx, DefaultConfig())
	})

	if err := shutdown(ctx); err != nil {
		t.Logf("shutdown without a collector: %v", err)
	}
}
