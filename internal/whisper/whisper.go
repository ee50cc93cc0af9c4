package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "base"

type commandRunner func(ctx context.Context, name string, args ...string) error

// Segment is one timed span of transcribed speech.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result contains the transcription output for one audio file.
type Result struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Service runs whisper transcriptions.
type Service struct {
	binary  string
	model   string
	timeout time.Duration
	run     commandRunner
}

// NewService creates a whisper service. An empty binary falls back to
// "whisper" on PATH; an empty model falls back to DefaultModel. A zero
// timeout disables the per-run deadline.
func NewService(binary, model string, timeout time.Duration) *Service {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "whisper"
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Service{
		binary:  binary,
		model:   model,
		timeout: timeout,
		run:     defaultCommandRunner,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner commandRunner) {
	if s != nil && runner != nil {
		s.run = runner
	}
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.model
}

// buildArgs produces the whisper CLI argument list. Output goes to outputDir
// as JSON named after the audio file's basename.
func (s *Service) buildArgs(audioPath, outputDir, language string) []string {
	args := []string{
		audioPath,
		"--model", s.model,
		"--output_format", "json",
		"--output_dir", outputDir,
		"--verbose", "False",
	}
	if language = strings.TrimSpace(language); language != "" {
		args = append(args, "--language", language)
	}
	return args
}

// Transcribe runs whisper against the audio file and returns the parsed
// result. outputDir defaults to the audio file's directory; language is an
// optional hint that skips whisper's language detection pass.
func (s *Service) Transcribe(ctx context.Context, audioPath, outputDir, language string) (Result, error) {
	var result Result

	audioPath = strings.TrimSpace(audioPath)
	if audioPath == "" {
		return result, fmt.Errorf("transcribe: audio path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.run(runCtx, s.binary, s.buildArgs(audioPath, outputDir, language)...); err != nil {
		return result, fmt.Errorf("transcribe: %w", err)
	}

	jsonPath := OutputJSONPath(audioPath, outputDir)
	result, err := loadResult(jsonPath)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: %w", err)
	}
	return result, nil
}

// OutputJSONPath returns where whisper writes its JSON for the given audio
// file and output directory.
func OutputJSONPath(audioPath, outputDir string) string {
	base := filepath.Base(audioPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, base+".json")
}

func loadResult(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read whisper output: %w", err)
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("parse whisper json: %w", err)
	}
	result.Text = strings.TrimSpace(result.Text)
	return result, nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
