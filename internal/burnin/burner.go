package burnin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"subburn/internal/config"
	"subburn/internal/deps"
	"subburn/internal/logging"
	"subburn/internal/media/ffmpeg"
	"subburn/internal/media/ffprobe"
	"subburn/internal/notifications"
	"subburn/internal/queue"
	"subburn/internal/services"
	"subburn/internal/stage"
)

const minOutputSizeBytes = 1024

type probeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Burner hard-subtitles source videos with their generated SRT files.
type Burner struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	ffmpeg   *ffmpeg.FFmpeg
	probe    probeFunc
	notifier notifications.Service
}

// NewBurner constructs the burn-in handler.
func NewBurner(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Burner {
	return NewBurnerWithDependencies(cfg, store, logger, ffmpeg.New(cfg.FFmpegBinary()), ffprobe.Inspect, notifications.NewService(cfg))
}

// NewBurnerWithDependencies allows injecting custom dependencies (used for tests).
func NewBurnerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, ff *ffmpeg.FFmpeg, probe probeFunc, notifier notifications.Service) *Burner {
	b := &Burner{
		store:    store,
		cfg:      cfg,
		ffmpeg:   ff,
		probe:    probe,
		notifier: notifier,
	}
	b.SetLogger(logger)
	return b
}

// SetLogger updates the burner's logging destination.
func (b *Burner) SetLogger(logger *slog.Logger) {
	b.logger = logging.NewComponentLogger(logger, "burner")
}

func (b *Burner) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, b.logger)
	item.SetProgress("Burning subtitles", "Starting subtitle burn-in", 0)
	logger.Debug("starting burn-in preparation")
	return nil
}

func (b *Burner) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, b.logger)

	source := strings.TrimSpace(item.SourcePath)
	subtitle := strings.TrimSpace(item.SubtitleFile)
	if source == "" || subtitle == "" {
		return services.Wrap(
			services.ErrValidation,
			"burnin",
			"validate inputs",
			"Missing source video or subtitle file; ensure earlier stages completed successfully",
			nil,
		)
	}
	if _, err := os.Stat(subtitle); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"burnin",
			"validate inputs",
			"Subtitle file is missing from staging",
			err,
		)
	}

	outputDir := strings.TrimSpace(b.cfg.Paths.OutputDir)
	if outputDir == "" {
		return services.Wrap(
			services.ErrConfiguration,
			"burnin",
			"resolve output dir",
			"Output directory is not configured",
			nil,
		)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return services.Wrap(
			services.ErrConfiguration,
			"burnin",
			"ensure output dir",
			"Failed to create output directory; set output_dir to a writable path",
			err,
		)
	}

	outputPath := filepath.Join(outputDir, outputBasename(source, item.ID))
	item.SetProgress("Burning subtitles", "Encoding with libx264", 10)

	logger.Info("burning subtitles",
		logging.String("source", source),
		logging.String("subtitle", subtitle),
		logging.String("output", outputPath),
		logging.Int("crf", b.cfg.Encoder.CRF),
		logging.String("preset", b.cfg.Encoder.Preset),
	)

	req := ffmpeg.BurnRequest{
		Source:       source,
		SubtitlePath: subtitle,
		OutputPath:   outputPath,
		FontName:     b.cfg.Style.Font,
		FontSize:     b.cfg.Style.FontSize,
		Outline:      b.cfg.Style.Outline,
		Shadow:       b.cfg.Style.Shadow,
		CRF:          b.cfg.Encoder.CRF,
		Preset:       b.cfg.Encoder.Preset,
	}
	if err := b.ffmpeg.BurnSubtitles(ctx, req); err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"burnin",
			"burn subtitles",
			"ffmpeg failed to burn subtitles into the video",
			err,
		)
	}

	if err := b.validateOutput(ctx, outputPath); err != nil {
		return err
	}

	item.OutputFile = outputPath
	item.SetProgressComplete("Burning subtitles", "Captioned video ready")
	logger.Info("burn-in complete", logging.String("output", outputPath))

	if b.notifier != nil {
		if err := b.notifier.NotifyProcessingCompleted(ctx, item.Title, outputPath); err != nil {
			logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	return nil
}

func (b *Burner) HealthCheck(ctx context.Context) stage.Health {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "FFmpeg", Command: b.cfg.FFmpegBinary()},
		{Name: "FFprobe", Command: b.cfg.FFprobeBinary()},
	})
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return stage.Unhealthy("burnin", fmt.Sprintf("missing binaries: %s", strings.Join(missing, ", ")))
	}
	return stage.Healthy("burnin")
}

// validateOutput confirms ffmpeg produced a playable file: present, larger
// than a trivial header, and carrying a video stream.
func (b *Burner) validateOutput(ctx context.Context, outputPath string) error {
	info, err := os.Stat(outputPath)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"burnin",
			"verify output",
			"ffmpeg reported success but produced no output file",
			err,
		)
	}
	if info.Size() < minOutputSizeBytes {
		return services.Wrap(
			services.ErrExternalTool,
			"burnin",
			"verify output",
			fmt.Sprintf("Output file is implausibly small (%d bytes)", info.Size()),
			nil,
		)
	}

	if b.probe == nil {
		return nil
	}
	probe, err := b.probe(ctx, b.cfg.FFprobeBinary(), outputPath)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"burnin",
			"verify output",
			"Failed to probe the captioned output",
			err,
		)
	}
	if probe.VideoStreamCount() == 0 {
		return services.Wrap(
			services.ErrExternalTool,
			"burnin",
			"verify output",
			"Captioned output has no video stream",
			nil,
		)
	}
	return nil
}

// outputBasename names the captioned file after the source with a marker
// suffix and the item id, keeping the container extension. The id keeps
// uploads that share a basename from clobbering each other in output_dir.
func outputBasename(source string, id int64) string {
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem = "captioned"
	}
	if ext == "" {
		ext = ".mp4"
	}
	return fmt.Sprintf("%s.subtitled-%d%s", stem, id, ext)
}
