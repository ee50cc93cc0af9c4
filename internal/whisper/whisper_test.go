package whisper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBuildArgs(t *testing.T) {
	svc := NewService("", "small", 0)
	args := svc.buildArgs("/staging/audio.wav", "/staging", "en")
	joined := strings.Join(args, " ")
	for _, want := range []string{"--model small", "--output_format json", "--output_dir /staging", "--language en"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args: %s", want, joined)
		}
	}

	noLang := strings.Join(svc.buildArgs("/staging/audio.wav", "/staging", ""), " ")
	if strings.Contains(noLang, "--language") {
		t.Fatalf("expected no language flag: %s", noLang)
	}
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService("", "", 0)
	if svc.Model() != DefaultModel {
		t.Fatalf("expected default model, got %s", svc.Model())
	}
}

func TestOutputJSONPath(t *testing.T) {
	got := OutputJSONPath("/staging/job-1/audio.wav", "/staging/job-1")
	if got != "/staging/job-1/audio.json" {
		t.Fatalf("unexpected json path: %s", got)
	}
}

func TestTranscribeParsesOutput(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(audioPath, []byte("wav"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	payload := `{
		"text": " Hello world. This is a test. ",
		"language": "en",
		"segments": [
			{"id": 0, "start": 0.0, "end": 2.5, "text": " Hello world."},
			{"id": 1, "start": 2.5, "end": 5.0, "text": " This is a test."}
		]
	}`

	svc := NewService("whisper", "base", time.Minute)
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		if name != "whisper" {
			t.Fatalf("unexpected binary %s", name)
		}
		return os.WriteFile(OutputJSONPath(audioPath, dir), []byte(payload), 0o644)
	})

	result, err := svc.Transcribe(context.Background(), audioPath, dir, "en")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if result.Text != "Hello world. This is a test." {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(result.Segments))
	}
	if result.Segments[1].Start != 2.5 || result.Segments[1].End != 5.0 {
		t.Fatalf("unexpected segment timing: %#v", result.Segments[1])
	}
	if result.Language != "en" {
		t.Fatalf("unexpected language %q", result.Language)
	}
}

func TestTranscribeFailsWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(audioPath, []byte("wav"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	svc := NewService("whisper", "base", 0)
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return nil
	})

	if _, err := svc.Transcribe(context.Background(), audioPath, dir, ""); err == nil {
		t.Fatal("expected error when whisper produced no output")
	}
}

func TestTranscribeRequiresAudioPath(t *testing.T) {
	svc := NewService("", "", 0)
	if _, err := svc.Transcribe(context.Background(), "", "", ""); err == nil {
		t.Fatal("expected error for empty audio path")
	}
}
