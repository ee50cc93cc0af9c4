package queue

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusExtracting   Status = "extracting"
	StatusExtracted    Status = "extracted"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusBurning      Status = "burning"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// DaemonStopReason is the error message set when items are failed due to
// daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusExtracting,
	StatusExtracted,
	StatusTranscribing,
	StatusTranscribed,
	StatusBurning,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusExtracting:   {},
	StatusTranscribing: {},
	StatusBurning:      {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions map each processing status back to the status that
// re-enters the same stage, used when reclaiming items after a crash.
var stageRollbackTransitions = []statusTransition{
	{from: StatusExtracting, to: StatusPending},
	{from: StatusTranscribing, to: StatusExtracted},
	{from: StatusBurning, to: StatusTranscribed},
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// Item represents a captioning job persisted in SQLite.
type Item struct {
	ID                int64
	SourcePath        string
	Title             string
	Language          string
	Status            Status
	MediaInfoJSON     string
	AudioFile         string
	SubtitleFile      string
	OutputFile        string
	TranscriptPreview string
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ProgressStage     string
	ProgressPercent   float64
	ProgressMessage   string
	LastHeartbeat     *time.Time
	NeedsReview       bool
	ReviewReason      string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// ProcessingStatuses returns the statuses that represent in-flight stages.
func ProcessingStatuses() []Status {
	out := make([]Status, 0, len(processingStatuses))
	for _, status := range allStatuses {
		if IsProcessingStatus(status) {
			out = append(out, status)
		}
	}
	return out
}

// SetProgress updates all three progress fields atomically.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (i *Item) SetProgressComplete(stage, message string) {
	i.SetProgress(stage, message, 100)
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.LastHeartbeat = nil
	i.ProgressStage = "Failed"
}

// StagingRoot returns the item's private staging directory under root, or
// empty when no root is configured.
func (i Item) StagingRoot(root string) string {
	root = strings.TrimSpace(root)
	if root == "" || i.ID == 0 {
		return ""
	}
	return filepath.Join(root, fmt.Sprintf("queue-%d", i.ID))
}

// inferTitleFromPath derives a display title from the source file name.
func inferTitleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, ".", " ")
	return strings.TrimSpace(base)
}
