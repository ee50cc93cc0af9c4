package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type commandRunner func(ctx context.Context, dir, name string, args ...string) error

// FFmpeg executes ffmpeg encodes for the pipeline.
type FFmpeg struct {
	binary string
	run    commandRunner
}

// New constructs an FFmpeg wrapper around the given binary. An empty binary
// falls back to "ffmpeg" on PATH.
func New(binary string) *FFmpeg {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{
		binary: binary,
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (f *FFmpeg) WithCommandRunner(r commandRunner) {
	if f != nil && r != nil {
		f.run = r
	}
}

// Binary returns the resolved ffmpeg binary name.
func (f *FFmpeg) Binary() string {
	return f.binary
}

const stderrTailLimit = 2048

// defaultCommandRunner executes ffmpeg and surfaces the tail of its output in
// errors, since ffmpeg writes diagnostics to stderr.
func defaultCommandRunner(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		tail := strings.TrimSpace(string(output))
		if len(tail) > stderrTailLimit {
			tail = tail[len(tail)-stderrTailLimit:]
		}
		return fmt.Errorf("%w: %s", err, tail)
	}
	return nil
}
