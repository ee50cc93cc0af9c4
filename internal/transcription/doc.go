// Package transcription implements the second pipeline stage: running
// Whisper speech-to-text over the extracted WAV and composing the SRT file.
package transcription
