package extraction

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
	"subburn/internal/queue"
	"subburn/internal/services"
	"subburn/internal/stage"
)

type probeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Extractor probes source videos and extracts their audio track to WAV.
type Extractor struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	ffmpeg *ffmpeg.FFmpeg
	probe  probeFunc
}

// NewExtractor constructs the extraction handler.
func NewExtractor(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Extractor {
	return NewExtractorWithDependencies(cfg, store, logger, ffmpeg.New(cfg.FFmpegBinary()), ffprobe.Inspect)
}

// NewExtractorWithDependencies allows injecting custom dependencies (used for tests).
func NewExtractorWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, ff *ffmpeg.FFmpeg, probe probeFunc) *Extractor {
	ex := &Extractor{
		store:  store,
		cfg:    cfg,
		ffmpeg: ff,
		probe:  probe,
	}
	ex.SetLogger(logger)
	return ex
}

// SetLogger updates the extractor's logging destination.
func (e *Extractor) SetLogger(logger *slog.Logger) {
	e.logger = logging.NewComponentLogger(logger, "extractor")
}

func (e *Extractor) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)
	item.SetProgress("Extracting audio", "Starting audio extraction", 0)
	logger.Debug("starting extraction preparation")
	return nil
}

func (e *Extractor) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)

	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return services.Wrap(
			services.ErrValidation,
			"extraction",
			"validate inputs",
			"Queue item has no source path",
			nil,
		)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"extraction",
			"validate inputs",
			"Source video is missing or unreadable",
			err,
		)
	}

	probe, err := e.probe(ctx, e.cfg.FFprobeBinary(), source)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"extraction",
			"probe source",
			"Failed to inspect source video with ffprobe",
			err,
		)
	}
	item.MediaInfoJSON = string(probe.RawJSON())

	if probe.AudioStreamCount() == 0 {
		return services.Wrap(
			services.ErrValidation,
			"extraction",
			"probe source",
			"No audio track found in the uploaded video",
			nil,
		)
	}

	stagingRoot := item.StagingRoot(e.cfg.Paths.StagingDir)
	if stagingRoot == "" {
		return services.Wrap(
			services.ErrConfiguration,
			"extraction",
			"resolve staging dir",
			"Staging directory is not configured",
			nil,
		)
	}
	if err := os.MkdirAll(stagingRoot, 0o755); err != nil {
		return services.Wrap(
			services.ErrConfiguration,
			"extraction",
			"ensure staging dir",
			"Failed to create staging directory; set staging_dir to a writable path",
			err,
		)
	}

	audioPath := filepath.Join(stagingRoot, "audio.wav")
	item.SetProgress("Extracting audio", "Decoding audio track", 25)

	logger.Info("extracting audio track",
		logging.String("source", source),
		logging.String("audio_path", audioPath),
		logging.Int("audio_streams", probe.AudioStreamCount()),
	)

	if err := e.ffmpeg.ExtractAudio(ctx, source, audioPath); err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"extraction",
			"extract audio",
			"ffmpeg failed to extract the audio track",
			err,
		)
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"extraction",
			"verify output",
			"ffmpeg reported success but produced no WAV file",
			err,
		)
	}
	if info.Size() == 0 {
		return services.Wrap(
			services.ErrExternalTool,
			"extraction",
			"verify output",
			"Extracted WAV file is empty",
			nil,
		)
	}

	item.AudioFile = audioPath
	item.SetProgressComplete("Extracting audio", fmt.Sprintf("Extracted %d byte WAV", info.Size()))
	logger.Info("audio extraction complete",
		logging.String("audio_path", audioPath),
		logging.Int64("size_bytes", info.Size()),
	)
	return nil
}

func (e *Extractor) HealthCheck(ctx context.Context) stage.Health {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "FFmpeg", Command: e.cfg.FFmpegBinary()},
		{Name: "FFprobe", Command: e.cfg.FFprobeBinary()},
	})
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return stage.Unhealthy("extraction", fmt.Sprintf("missing binaries: %s", strings.Join(missing, ", ")))
	}
	return stage.Healthy("extraction")
}
