// Package srt composes and inspects SubRip subtitle files. Cue text comes
// from transcription segments; the inspection helpers back the sanity checks
// run before a file is burned into video.
package srt
