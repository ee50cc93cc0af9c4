// Package ffmpeg wraps the ffmpeg binary for the two encodes the pipeline
// performs: extracting a transcription-ready WAV track and burning subtitles
// into a new video file.
package ffmpeg
