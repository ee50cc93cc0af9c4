package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildExtractArgs(t *testing.T) {
	args := buildExtractArgs("/videos/in.mp4", "/staging/out.wav")
	joined := strings.Join(args, " ")
	for _, want := range []string{"-vn", "-ac 1", "-ar 16000", "-c:a pcm_s16le"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args: %s", want, joined)
		}
	}
	if args[len(args)-1] != "/staging/out.wav" {
		t.Fatalf("expected destination last, got %s", args[len(args)-1])
	}
}

func TestBuildForceStyle(t *testing.T) {
	style := buildForceStyle(BurnRequest{FontName: "Arial", FontSize: 38, Outline: 2, Shadow: 0})
	if style != "FontName=Arial,FontSize=38,Outline=2,Shadow=0" {
		t.Fatalf("unexpected force_style: %s", style)
	}

	noFont := buildForceStyle(BurnRequest{Outline: 1, Shadow: 1})
	if noFont != "Outline=1,Shadow=1" {
		t.Fatalf("unexpected force_style without font: %s", noFont)
	}
}

func TestBuildBurnArgsUsesSubtitleBasename(t *testing.T) {
	args := buildBurnArgs(BurnRequest{
		Source:       "/videos/in.mp4",
		SubtitlePath: "/staging/job-1/captions.srt",
		OutputPath:   "/output/out.mp4",
		FontName:     "Arial",
		FontSize:     38,
		Outline:      2,
		CRF:          20,
		Preset:       "medium",
	})
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "subtitles=filename='captions.srt'") {
		t.Fatalf("expected basename in filter: %s", joined)
	}
	if strings.Contains(joined, "/staging/job-1/captions.srt") {
		t.Fatalf("filter must not contain the full subtitle path: %s", joined)
	}
	for _, want := range []string{"-c:v libx264", "-pix_fmt yuv420p", "-crf 20", "-preset medium", "-c:a copy"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args: %s", want, joined)
		}
	}
}

func TestBurnSubtitlesRunsInSubtitleDir(t *testing.T) {
	dir := t.TempDir()
	srtPath := filepath.Join(dir, "captions.srt")
	if err := os.WriteFile(srtPath, []byte("1\n00:00:00,000 --> 00:00:01,000\nHi\n\n"), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}

	f := New("ffmpeg")
	var gotDir string
	var gotArgs []string
	f.WithCommandRunner(func(ctx context.Context, runDir, name string, args ...string) error {
		gotDir = runDir
		gotArgs = args
		return nil
	})

	err := f.BurnSubtitles(context.Background(), BurnRequest{
		Source:       filepath.Join(dir, "in.mp4"),
		SubtitlePath: srtPath,
		OutputPath:   filepath.Join(dir, "out.mp4"),
		FontSize:     38,
		CRF:          20,
		Preset:       "medium",
	})
	if err != nil {
		t.Fatalf("BurnSubtitles failed: %v", err)
	}
	if gotDir != dir {
		t.Fatalf("expected working dir %s, got %s", dir, gotDir)
	}
	if len(gotArgs) == 0 {
		t.Fatal("expected ffmpeg args to be captured")
	}
}

func TestBurnSubtitlesRequiresSubtitleFile(t *testing.T) {
	f := New("")
	err := f.BurnSubtitles(context.Background(), BurnRequest{
		Source:       "/videos/in.mp4",
		SubtitlePath: "/missing/captions.srt",
		OutputPath:   "/videos/out.mp4",
	})
	if err == nil {
		t.Fatal("expected error for missing subtitle file")
	}
}

func TestExtractAudioValidatesPaths(t *testing.T) {
	f := New("")
	if err := f.ExtractAudio(context.Background(), "", "/tmp/out.wav"); err == nil {
		t.Fatal("expected error for empty source")
	}
	if err := f.ExtractAudio(context.Background(), "/tmp/in.mp4", ""); err == nil {
		t.Fatal("expected error for empty destination")
	}
}
