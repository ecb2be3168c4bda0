package services_test

import (
	"context"
	"testing"

	"subfab/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-42")
	ctx = services.WithStage(ctx, "translate")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-42" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "translate" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if req, ok := services.RequestIDFromContext(ctx); !ok || req != "req-123" {
		t.Fatalf("unexpected request id: %v %v", req, ok)
	}
}

func TestContextAttrs(t *testing.T) {
	if attrs := services.ContextAttrs(context.Background()); len(attrs) != 0 {
		t.Fatalf("bare context produced attrs %v", attrs)
	}

	ctx := services.WithStage(services.WithRunID(context.Background(), "run-42"), "translate")
	attrs := services.ContextAttrs(ctx)
	want := []any{"run_id", "run-42", "stage", "translate"}
	if len(attrs) != len(want) {
		t.Fatalf("attrs = %v, want %v", attrs, want)
	}
	for i := range want {
		if attrs[i] != want[i] {
			t.Fatalf("attrs[%d] = %v, want %v", i, attrs[i], want[i])
		}
	}
}

func TestContextHelpersIgnoreEmpty(t *testing.T) {
	ctx := services.WithStage(context.Background(), "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected empty stage to be dropped")
	}
	if _, ok := services.RunIDFromContext(context.Background()); ok {
		t.Fatal("expected missing run id")
	}
}
