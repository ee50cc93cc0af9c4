package ffmpeg

import (
	"context"
	"fmt"
	"strings"
)

// buildExtractArgs produces the argument list for extracting a mono 16kHz
// PCM WAV track, the format the transcription model expects.
func buildExtractArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// ExtractAudio decodes the first audio stream of source into a mono 16kHz
// WAV file at dest.
func (f *FFmpeg) ExtractAudio(ctx context.Context, source, dest string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("extract audio: source path required")
	}
	if strings.TrimSpace(dest) == "" {
		return fmt.Errorf("extract audio: destination path required")
	}
	if err := f.run(ctx, "", f.binary, buildExtractArgs(source, dest)...); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return nil
}
