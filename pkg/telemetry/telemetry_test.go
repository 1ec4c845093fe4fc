package telemetry_test

import (
	"context"
	"testing"

	"github.com/ziqian9206/statechart/pkg/telemetry"
)

func TestNewProviderIsNoOp(t *testing.T) {
	provider := telemetry.NewProvider()
	tracer := provider.Tracer("statechart")
	ctx, span := tracer.Start(context.Background(), "evaluate")
	if ctx == nil {
		t.Fatal("expected a non-nil context")
	}
	if span.IsRecording() {
		t.Fatal("expected the default span to never record")
	}
	span.End()
}
