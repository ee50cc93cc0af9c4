package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"subburn/internal/config"
	"subburn/internal/deps"
	"subburn/internal/logging"
	"subburn/internal/media/ffprobe"
	"subburn/internal/notifications"
	"subburn/internal/queue"
	"subburn/internal/services"
	"subburn/internal/srt"
	"subburn/internal/stage"
	"subburn/internal/whisper"
)

const transcriptPreviewLimit = 240

// Transcriber turns extracted audio into a validated SRT subtitle file.
type Transcriber struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	whisper  *whisper.Service
	notifier notifications.Service
}

// NewTranscriber constructs the transcription handler.
func NewTranscriber(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Transcriber {
	svc := whisper.NewService(
		cfg.WhisperBinary(),
		cfg.Whisper.Model,
		time.Duration(cfg.Whisper.TimeoutSeconds)*time.Second,
	)
	return NewTranscriberWithDependencies(cfg, store, logger, svc, notifications.NewService(cfg))
}

// NewTranscriberWithDependencies allows injecting custom dependencies (used for tests).
func NewTranscriberWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, svc *whisper.Service, notifier notifications.Service) *Transcriber {
	tr := &Transcriber{
		store:    store,
		cfg:      cfg,
		whisper:  svc,
		notifier: notifier,
	}
	tr.SetLogger(logger)
	return tr
}

// SetLogger updates the transcriber's logging destination.
func (t *Transcriber) SetLogger(logger *slog.Logger) {
	t.logger = logging.NewComponentLogger(logger, "transcriber")
}

func (t *Transcriber) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	item.SetProgress("Transcribing", "Starting transcription", 0)
	logger.Debug("starting transcription preparation",
		logging.String("model", t.whisper.Model()))
	return nil
}

func (t *Transcriber) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)

	audioPath := strings.TrimSpace(item.AudioFile)
	if audioPath == "" {
		return services.Wrap(
			services.ErrValidation,
			"transcription",
			"validate inputs",
			"No audio file available; ensure the extraction stage completed successfully",
			nil,
		)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"transcription",
			"validate inputs",
			"Extracted audio file is missing",
			err,
		)
	}

	language := t.language(item)
	item.SetProgress("Transcribing", fmt.Sprintf("Running %s model", t.whisper.Model()), 10)
	logger.Info("starting transcription",
		logging.String("audio_path", audioPath),
		logging.String("model", t.whisper.Model()),
		logging.String("language", language),
	)

	outputDir := filepath.Dir(audioPath)
	result, err := t.whisper.Transcribe(ctx, audioPath, outputDir, language)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"transcription",
			"run whisper",
			"Whisper transcription failed",
			err,
		)
	}

	cues := segmentsToCues(result.Segments)
	if len(cues) == 0 {
		return services.Wrap(
			services.ErrValidation,
			"transcription",
			"compose srt",
			"Transcription produced no speech segments; the audio may be silent",
			nil,
		)
	}

	srtPath := filepath.Join(outputDir, subtitleBasename(item))
	if err := srt.WriteFile(srtPath, cues); err != nil {
		return services.Wrap(
			services.ErrConfiguration,
			"transcription",
			"write srt",
			"Failed to write subtitle file to the staging directory",
			err,
		)
	}

	if issues := srt.Validate(srtPath, mediaDurationSeconds(item)); len(issues) > 0 {
		return services.Wrap(
			services.ErrValidation,
			"transcription",
			"validate srt",
			fmt.Sprintf("Generated subtitle file failed validation: %s", strings.Join(issues, "; ")),
			nil,
		)
	}

	item.SubtitleFile = srtPath
	item.TranscriptPreview = previewText(result.Text)
	item.SetProgressComplete("Transcribing", fmt.Sprintf("Composed %d subtitle cues", len(cues)))

	logger.Info("transcription complete",
		logging.String("srt_path", srtPath),
		logging.Int("cue_count", len(cues)),
		logging.String("detected_language", result.Language),
	)

	if t.notifier != nil {
		if err := t.notifier.NotifyTranscriptionCompleted(ctx, item.Title, len(cues)); err != nil {
			logger.Warn("transcription notification failed", logging.Error(err))
		}
	}
	return nil
}

func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Whisper", Command: t.cfg.WhisperBinary()},
	})
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return stage.Unhealthy("transcription", fmt.Sprintf("missing binaries: %s", strings.Join(missing, ", ")))
	}
	return stage.Healthy("transcription")
}

// language resolves the hint for this item: per-item value first, then the
// configured default. Empty means whisper auto-detects.
func (t *Transcriber) language(item *queue.Item) string {
	if lang := strings.TrimSpace(item.Language); lang != "" {
		return lang
	}
	return strings.TrimSpace(t.cfg.Whisper.Language)
}

func segmentsToCues(segments []whisper.Segment) []srt.Cue {
	cues := make([]srt.Cue, 0, len(segments))
	for _, seg := range segments {
		cues = append(cues, srt.Cue{Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	return cues
}

func subtitleBasename(item *queue.Item) string {
	base := filepath.Base(strings.TrimSpace(item.SourcePath))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "captions"
	}
	return base + ".srt"
}

// mediaDurationSeconds pulls the container duration from the ffprobe snapshot
// taken during extraction. Returns 0 when unavailable so validation skips the
// duration bound.
func mediaDurationSeconds(item *queue.Item) float64 {
	raw := strings.TrimSpace(item.MediaInfoJSON)
	if raw == "" {
		return 0
	}
	var probe ffprobe.Result
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return 0
	}
	seconds := probe.DurationSeconds()
	if seconds > 0 {
		return seconds
	}
	return 0
}

func previewText(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= transcriptPreviewLimit {
		return text
	}
	cut := text[:transcriptPreviewLimit]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
