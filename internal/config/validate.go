package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateStyle(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateWhisper() error {
	if !slices.Contains(WhisperModels, c.Whisper.Model) {
		return fmt.Errorf("whisper.model must be one of %v, got %q", WhisperModels, c.Whisper.Model)
	}
	return nil
}

func (c *Config) validateStyle() error {
	if c.Style.FontSize < 10 || c.Style.FontSize > 96 {
		return fmt.Errorf("style.font_size must be between 10 and 96, got %d", c.Style.FontSize)
	}
	if c.Style.Outline < 0 || c.Style.Outline > 8 {
		return fmt.Errorf("style.outline must be between 0 and 8, got %d", c.Style.Outline)
	}
	if c.Style.Shadow < 0 || c.Style.Shadow > 8 {
		return fmt.Errorf("style.shadow must be between 0 and 8, got %d", c.Style.Shadow)
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.CRF < 16 || c.Encoder.CRF > 28 {
		return fmt.Errorf("encoder.crf must be between 16 and 28, got %d", c.Encoder.CRF)
	}
	if !slices.Contains(EncoderPresets, c.Encoder.Preset) {
		return fmt.Errorf("encoder.preset must be one of %v, got %q", EncoderPresets, c.Encoder.Preset)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"workflow.heartbeat_interval":   c.Workflow.HeartbeatInterval,
		"workflow.heartbeat_timeout":    c.Workflow.HeartbeatTimeout,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"whisper.timeout_seconds":       c.Whisper.TimeoutSeconds,
	})
}

func (c *Config) validateUpload() error {
	if c.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("upload.max_size_mb must be positive, got %d", c.Upload.MaxSizeMB)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, value)
		}
	}
	return nil
}
