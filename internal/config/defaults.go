package config

const (
	defaultStagingDir         = "~/.local/share/subburn/staging"
	defaultOutputDir          = "~/.local/share/subburn/output"
	defaultLogDir             = "~/.local/share/subburn/logs"
	defaultAPIBind            = "127.0.0.1:7519"
	defaultWhisperModel       = "base"
	defaultWhisperTimeout     = 1800
	defaultFontSize           = 38
	defaultOutline            = 2
	defaultShadow             = 0
	defaultCRF                = 20
	defaultPreset             = "medium"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
	defaultNotifyTimeout      = 10
	defaultUploadMaxSizeMB    = 2048
)

// WhisperModels lists the accepted transcription model sizes.
var WhisperModels = []string{"tiny", "base", "small", "medium", "large"}

// EncoderPresets lists the accepted x264 speed presets.
var EncoderPresets = []string{
	"ultrafast", "superfast", "veryfast", "faster", "fast",
	"medium", "slow", "slower", "veryslow", "placebo",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Whisper: Whisper{
			Model:          defaultWhisperModel,
			TimeoutSeconds: defaultWhisperTimeout,
		},
		Style: Style{
			FontSize: defaultFontSize,
			Outline:  defaultOutline,
			Shadow:   defaultShadow,
		},
		Encoder: Encoder{
			CRF:    defaultCRF,
			Preset: defaultPreset,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Queue:          true,
			Completion:     true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Upload: Upload{
			MaxSizeMB: defaultUploadMaxSizeMB,
		},
	}
}
