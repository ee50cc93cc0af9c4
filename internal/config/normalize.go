package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeWhisper(); err != nil {
		return err
	}
	c.normalizeEncoder()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = ExpandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeWhisper() error {
	c.Whisper.Binary = strings.TrimSpace(c.Whisper.Binary)
	c.Whisper.Model = strings.ToLower(strings.TrimSpace(c.Whisper.Model))
	if c.Whisper.Model == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	if c.Whisper.TimeoutSeconds <= 0 {
		c.Whisper.TimeoutSeconds = defaultWhisperTimeout
	}

	hint := strings.TrimSpace(c.Whisper.Language)
	if hint == "" {
		c.Whisper.Language = ""
		return nil
	}
	normalized, err := NormalizeLanguage(hint)
	if err != nil {
		return fmt.Errorf("whisper.language: %w", err)
	}
	c.Whisper.Language = normalized
	return nil
}

func (c *Config) normalizeEncoder() {
	c.Encoder.Preset = strings.ToLower(strings.TrimSpace(c.Encoder.Preset))
	if c.Encoder.Preset == "" {
		c.Encoder.Preset = defaultPreset
	}
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	c.Style.Font = strings.TrimSpace(c.Style.Font)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// languageNames maps full language names to BCP 47 tags for hints that are
// not already codes.
var languageNames = map[string]string{
	"english": "en", "spanish": "es", "french": "fr", "german": "de",
	"italian": "it", "portuguese": "pt", "japanese": "ja", "korean": "ko",
	"chinese": "zh", "russian": "ru", "arabic": "ar", "hindi": "hi",
	"telugu": "te", "dutch": "nl", "polish": "pl", "swedish": "sv",
	"danish": "da", "norwegian": "no", "finnish": "fi",
}

// NormalizeLanguage canonicalizes a user-supplied language hint ("en",
// "English", "pt-BR") to the base ISO 639-1 code Whisper expects. An empty
// hint or "auto" means auto-detect and normalizes to "".
func NormalizeLanguage(hint string) (string, error) {
	hint = strings.TrimSpace(hint)
	if hint == "" || strings.EqualFold(hint, "auto") {
		return "", nil
	}
	candidate := hint
	if mapped, ok := languageNames[strings.ToLower(hint)]; ok {
		candidate = mapped
	}
	tag, err := language.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q", hint)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", fmt.Errorf("unrecognized language %q", hint)
	}
	return base.String(), nil
}
