package services_test

import (
	"errors"
	"strings"
	"testing"

	"subburn/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "burnin", "run ffmpeg", "Subtitle burn failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "burnin: run ffmpeg: Subtitle burn failed") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := services.Wrap(nil, "stage", "op", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestNeedsReview(t *testing.T) {
	cases := []struct {
		marker error
		want   bool
	}{
		{services.ErrValidation, true},
		{services.ErrConfiguration, true},
		{services.ErrNotFound, true},
		{services.ErrExternalTool, false},
		{services.ErrTransient, false},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "stage", "op", "msg", nil)
		if got := services.NeedsReview(err); got != tc.want {
			t.Fatalf("NeedsReview(%v) = %v, want %v", tc.marker, got, tc.want)
		}
	}
}

func TestDetailsStripsMarker(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "extraction", "probe input", "No audio track found", nil)
	details := services.Details(err)
	if details.Message != "extraction: probe input: No audio track found" {
		t.Fatalf("unexpected message: %q", details.Message)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := t.Context()
	ctx = services.WithItemID(ctx, 42)
	ctx = services.WithStage(ctx, "transcription")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.ItemIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected item id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "transcription" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := services.WithStage(t.Context(), "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
