// Package config loads, validates, and normalizes the TOML configuration
// shared by the CLI and the daemon.
//
// Configuration sections by subsystem:
//   - Paths: staging/output/log directories and the HTTP API bind address
//   - Whisper: transcription binary, model size, and language hint
//   - FFmpeg: ffmpeg/ffprobe binary overrides
//   - Style: subtitle rendering style burned into the output
//   - Encoder: x264 rate control and speed preset
//   - Notifications: ntfy push notification settings
//   - Workflow: daemon polling intervals and heartbeat timeouts
//   - Logging: log format and level
package config
