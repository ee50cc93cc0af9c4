package api

import (
	"encoding/json"
	"sort"
	"strings"

	"subburn/internal/deps"
	"subburn/internal/queue"
	"subburn/internal/workflow"
)

// FromQueueItem converts a queue record into its API representation. A nil
// item yields the zero value.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}
	out := QueueItem{
		ID:         item.ID,
		Title:      item.Title,
		SourcePath: item.SourcePath,
		Language:   item.Language,
		Status:     string(item.Status),
		Progress: QueueProgress{
			Stage:   item.ProgressStage,
			Percent: item.ProgressPercent,
			Message: item.ProgressMessage,
		},
		ErrorMessage:      item.ErrorMessage,
		AudioFile:         item.AudioFile,
		SubtitleFile:      item.SubtitleFile,
		OutputFile:        item.OutputFile,
		TranscriptPreview: item.TranscriptPreview,
		NeedsReview:       item.NeedsReview,
		ReviewReason:      item.ReviewReason,
	}
	if !item.CreatedAt.IsZero() {
		out.CreatedAt = item.CreatedAt.Format(dateTimeFormat)
	}
	if !item.UpdatedAt.IsZero() {
		out.UpdatedAt = item.UpdatedAt.Format(dateTimeFormat)
	}
	if raw := strings.TrimSpace(item.MediaInfoJSON); raw != "" && json.Valid([]byte(raw)) {
		out.MediaInfo = json.RawMessage(raw)
	}
	return out
}

// FromQueueItems converts a slice of queue records, skipping nil entries.
func FromQueueItems(items []*queue.Item) []QueueItem {
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, FromQueueItem(item))
	}
	return out
}

// MergeQueueStats normalizes raw queue stats so every known status has a
// count, even when the store reported nothing for it.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	merged := make(map[string]int, len(queue.AllStatuses()))
	for _, status := range queue.AllStatuses() {
		merged[string(status)] = 0
	}
	for status, count := range stats {
		merged[string(status)] = count
	}
	return merged
}

// FromWorkflowStatus converts a workflow summary into its API representation.
func FromWorkflowStatus(summary workflow.StatusSummary) WorkflowStatus {
	out := WorkflowStatus{
		Running:    summary.Running,
		QueueStats: MergeQueueStats(summary.QueueStats),
		LastError:  summary.LastError,
	}
	if summary.LastItem != nil {
		converted := FromQueueItem(summary.LastItem)
		out.LastItem = &converted
	}
	names := make([]string, 0, len(summary.StageHealth))
	for name := range summary.StageHealth {
		names = append(names, name)
	}
	sort.Strings(names)
	out.StageHealth = make([]StageHealth, 0, len(names))
	for _, name := range names {
		health := summary.StageHealth[name]
		out.StageHealth = append(out.StageHealth, StageHealth{
			Name:   name,
			Ready:  health.Ready,
			Detail: health.Detail,
		})
	}
	return out
}

// FromDependencyStatuses converts dependency check results.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, DependencyStatus{
			Name:        status.Name,
			Command:     status.Command,
			Description: status.Description,
			Optional:    status.Optional,
			Available:   status.Available,
			Detail:      status.Detail,
		})
	}
	return out
}
