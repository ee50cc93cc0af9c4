package main

import (
	"path/filepath"
	"testing"

	"subburn/internal/logging"
	"subburn/internal/testsupport"
)

func TestBuildStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	set := buildStages(cfg, store, logging.NewNop())
	if set.Extractor == nil || set.Transcriber == nil || set.Burner == nil {
		t.Fatalf("expected all pipeline stages to be built: %+v", set)
	}
}

func TestBuildSocketPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	expected := filepath.Join(cfg.Paths.LogDir, "subburn.sock")
	if got := buildSocketPath(cfg); got != expected {
		t.Fatalf("expected socket path %q, got %q", expected, got)
	}

	if got := buildSocketPath(nil); got != filepath.Join("", "subburn.sock") {
		t.Fatalf("unexpected default socket path %q", got)
	}
}
