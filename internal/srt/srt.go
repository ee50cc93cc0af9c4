package srt

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Cue is a single subtitle entry with start and end offsets in seconds.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// FormatTimestamp renders seconds as an SRT timestamp, HH:MM:SS,mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3600000
	totalMillis %= 3600000
	minutes := totalMillis / 60000
	totalMillis %= 60000
	secs := totalMillis / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// Compose renders cues as SRT content. Cues with empty text after trimming
// are skipped; indexes are assigned sequentially from 1.
func Compose(cues []Cue) string {
	var b strings.Builder
	index := 0
	for _, cue := range cues {
		text := strings.TrimSpace(cue.Text)
		if text == "" {
			continue
		}
		index++
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			index, FormatTimestamp(cue.Start), FormatTimestamp(cue.End), text)
	}
	return b.String()
}

// WriteFile composes cues and writes them to path.
func WriteFile(path string, cues []Cue) error {
	content := Compose(cues)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// CountCues returns the number of cue blocks in an SRT file.
func CountCues(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read srt: %w", err)
	}
	content := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if content == "" {
		return 0, nil
	}
	blocks := strings.Split(content, "\n\n")
	count := 0
	for _, block := range blocks {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count, nil
}

// Bounds returns the earliest cue start and latest cue end in seconds.
func Bounds(path string) (float64, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read srt: %w", err)
	}
	lines := strings.Split(string(data), "\n")
	first := math.Inf(1)
	var last float64
	found := false
	for _, line := range lines {
		if !strings.Contains(line, "-->") {
			continue
		}
		parts := strings.Split(line, "-->")
		if len(parts) != 2 {
			continue
		}
		if startSeconds, err := ParseTimestamp(strings.TrimSpace(parts[0])); err == nil {
			if startSeconds < first {
				first = startSeconds
			}
			found = true
		}
		if endSeconds, err := ParseTimestamp(strings.TrimSpace(parts[1])); err == nil {
			if endSeconds > last {
				last = endSeconds
			}
		}
	}
	if !found {
		return 0, last, nil
	}
	return first, last, nil
}

// ParseTimestamp converts an SRT timestamp into seconds. Periods are accepted
// in place of the standard comma millisecond separator.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
