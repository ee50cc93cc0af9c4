// Package whisper runs the whisper CLI for speech-to-text and parses its
// JSON output into timed segments.
package whisper
