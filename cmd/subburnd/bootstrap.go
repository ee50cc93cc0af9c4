package main

import (
	"path/filepath"

	"log/slog"

	"subburn/internal/burnin"
	"subburn/internal/config"
	"subburn/internal/extraction"
	"subburn/internal/queue"
	"subburn/internal/transcription"
	"subburn/internal/workflow"
)

func buildStages(cfg *config.Config, store *queue.Store, logger *slog.Logger) workflow.StageSet {
	return workflow.StageSet{
		Extractor:   extraction.NewExtractor(cfg, store, logger),
		Transcriber: transcription.NewTranscriber(cfg, store, logger),
		Burner:      burnin.NewBurner(cfg, store, logger),
	}
}

func buildSocketPath(cfg *config.Config) string {
	if cfg == nil {
		return filepath.Join("", "subburn.sock")
	}
	return filepath.Join(cfg.Paths.LogDir, "subburn.sock")
}
