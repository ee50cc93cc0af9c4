package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// BurnRequest describes a hard-subtitle encode.
type BurnRequest struct {
	Source       string // input video
	SubtitlePath string // SRT file to burn in
	OutputPath   string // destination video
	FontName     string
	FontSize     int
	Outline      int
	Shadow       int
	CRF          int
	Preset       string
}

// buildForceStyle renders the ASS style overrides applied by the subtitles
// filter.
func buildForceStyle(req BurnRequest) string {
	parts := make([]string, 0, 4)
	if name := strings.TrimSpace(req.FontName); name != "" {
		parts = append(parts, "FontName="+name)
	}
	if req.FontSize > 0 {
		parts = append(parts, "FontSize="+strconv.Itoa(req.FontSize))
	}
	parts = append(parts, "Outline="+strconv.Itoa(req.Outline))
	parts = append(parts, "Shadow="+strconv.Itoa(req.Shadow))
	return strings.Join(parts, ",")
}

// buildBurnArgs produces the ffmpeg argument list for a burn-in encode. The
// subtitles filter references the SRT by basename; the command must run with
// its working directory set to the SRT's directory so ffmpeg's filter parser
// never sees path separators or drive colons.
func buildBurnArgs(req BurnRequest) []string {
	filter := fmt.Sprintf("subtitles=filename='%s':force_style='%s'",
		filepath.Base(req.SubtitlePath), buildForceStyle(req))
	return []string{
		"-y",
		"-hide_banner",
		"-i", req.Source,
		"-vf", filter,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-crf", strconv.Itoa(req.CRF),
		"-preset", req.Preset,
		"-c:a", "copy",
		req.OutputPath,
	}
}

// BurnSubtitles re-encodes the source video with the SRT cues rendered into
// the picture.
func (f *FFmpeg) BurnSubtitles(ctx context.Context, req BurnRequest) error {
	if strings.TrimSpace(req.Source) == "" {
		return fmt.Errorf("burn subtitles: source path required")
	}
	if strings.TrimSpace(req.SubtitlePath) == "" {
		return fmt.Errorf("burn subtitles: subtitle path required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return fmt.Errorf("burn subtitles: output path required")
	}
	if _, err := os.Stat(req.SubtitlePath); err != nil {
		return fmt.Errorf("burn subtitles: subtitle file: %w", err)
	}

	source, err := filepath.Abs(req.Source)
	if err != nil {
		return fmt.Errorf("burn subtitles: resolve source: %w", err)
	}
	output, err := filepath.Abs(req.OutputPath)
	if err != nil {
		return fmt.Errorf("burn subtitles: resolve output: %w", err)
	}
	resolved := req
	resolved.Source = source
	resolved.OutputPath = output

	workDir := filepath.Dir(req.SubtitlePath)
	if err := f.run(ctx, workDir, f.binary, buildBurnArgs(resolved)...); err != nil {
		return fmt.Errorf("burn subtitles: %w", err)
	}
	return nil
}
