package srt

import "fmt"

// Validate checks an SRT file for format issues relative to the duration of
// the video it will be burned into. Returns a list of issues found; an empty
// slice means validation passed.
func Validate(path string, videoSeconds float64) []string {
	var issues []string

	cues, err := CountCues(path)
	if err != nil {
		issues = append(issues, fmt.Sprintf("read_error: %v", err))
		return issues
	}
	if cues == 0 {
		issues = append(issues, "empty_subtitle_file")
		return issues
	}

	first, last, err := Bounds(path)
	if err != nil {
		issues = append(issues, fmt.Sprintf("timestamp_parse_error: %v", err))
		return issues
	}
	if first == 0 && last == 0 {
		issues = append(issues, "no_valid_timestamps")
		return issues
	}
	if videoSeconds > 0 && last > videoSeconds+2 {
		issues = append(issues, fmt.Sprintf("cues_exceed_video_duration: last cue ends at %.2fs, video is %.2fs", last, videoSeconds))
	}
	return issues
}
