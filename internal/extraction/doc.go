// Package extraction implements the first pipeline stage: probing the source
// video and extracting a transcription-ready WAV track.
package extraction
