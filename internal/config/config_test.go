package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidatesAfterNormalize(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Whisper.Model != "base" {
		t.Fatalf("unexpected default model: %q", cfg.Whisper.Model)
	}
	if cfg.Encoder.CRF != 20 || cfg.Encoder.Preset != "medium" {
		t.Fatalf("unexpected encoder defaults: %+v", cfg.Encoder)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
staging_dir = "` + filepath.Join(dir, "staging") + `"
output_dir = "` + filepath.Join(dir, "output") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[whisper]
model = "Small"
language = "English"

[style]
font = "Arial"
font_size = 42

[encoder]
crf = 18
preset = "fast"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q %v", resolved, exists)
	}
	if cfg.Whisper.Model != "small" {
		t.Fatalf("model not lowered: %q", cfg.Whisper.Model)
	}
	if cfg.Whisper.Language != "en" {
		t.Fatalf("language not normalized: %q", cfg.Whisper.Language)
	}
	if cfg.Style.Font != "Arial" || cfg.Style.FontSize != 42 {
		t.Fatalf("unexpected style: %+v", cfg.Style)
	}
	if cfg.Encoder.CRF != 18 || cfg.Encoder.Preset != "fast" {
		t.Fatalf("unexpected encoder: %+v", cfg.Encoder)
	}
}

func TestLoadRejectsInvalidModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[whisper]\nmodel = \"enormous\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "whisper.model") {
		t.Fatalf("expected model validation error, got %v", err)
	}
}

func TestLoadRejectsCRFOutOfRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[encoder]\ncrf = 51\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "encoder.crf") {
		t.Fatalf("expected crf validation error, got %v", err)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"en", "en", true},
		{"English", "en", true},
		{"pt-BR", "pt", true},
		{"te", "te", true},
		{"", "", true},
		{"auto", "", true},
		{"Auto", "", true},
		{"not-a-language-at-all", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizeLanguage(tc.input)
		if tc.ok && err != nil {
			t.Fatalf("NormalizeLanguage(%q): %v", tc.input, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("NormalizeLanguage(%q): expected error", tc.input)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	expanded, err := ExpandPath("~/captions")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if expanded != filepath.Join(home, "captions") {
		t.Fatalf("unexpected expansion: %q", expanded)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected overwrite refusal")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[whisper]") {
		t.Fatalf("sample missing whisper section")
	}
}
