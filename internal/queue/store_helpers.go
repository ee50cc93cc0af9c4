package queue

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const itemColumns = `id, source_path, title, language, status, media_info_json,
	audio_file, subtitle_file, output_file, transcript_preview, error_message,
	created_at, updated_at, progress_stage, progress_percent, progress_message,
	last_heartbeat, needs_review, review_reason`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(scanner rowScanner) (*Item, error) {
	var (
		item              Item
		sourcePath        sql.NullString
		title             sql.NullString
		language          sql.NullString
		status            string
		mediaInfoJSON     sql.NullString
		audioFile         sql.NullString
		subtitleFile      sql.NullString
		outputFile        sql.NullString
		transcriptPreview sql.NullString
		errorMessage      sql.NullString
		createdAt         string
		updatedAt         string
		progressStage     sql.NullString
		progressMessage   sql.NullString
		lastHeartbeat     sql.NullString
		needsReview       int
		reviewReason      sql.NullString
	)

	err := scanner.Scan(
		&item.ID,
		&sourcePath,
		&title,
		&language,
		&status,
		&mediaInfoJSON,
		&audioFile,
		&subtitleFile,
		&outputFile,
		&transcriptPreview,
		&errorMessage,
		&createdAt,
		&updatedAt,
		&progressStage,
		&item.ProgressPercent,
		&progressMessage,
		&lastHeartbeat,
		&needsReview,
		&reviewReason,
	)
	if err != nil {
		return nil, err
	}

	item.SourcePath = sourcePath.String
	item.Title = title.String
	item.Language = language.String
	item.Status = Status(status)
	item.MediaInfoJSON = mediaInfoJSON.String
	item.AudioFile = audioFile.String
	item.SubtitleFile = subtitleFile.String
	item.OutputFile = outputFile.String
	item.TranscriptPreview = transcriptPreview.String
	item.ErrorMessage = errorMessage.String
	item.ProgressStage = progressStage.String
	item.ProgressMessage = progressMessage.String
	item.NeedsReview = needsReview != 0
	item.ReviewReason = reviewReason.String

	if item.CreatedAt, err = parseTimeString(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if item.UpdatedAt, err = parseTimeString(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if lastHeartbeat.Valid && lastHeartbeat.String != "" {
		hb, err := parseTimeString(lastHeartbeat.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_heartbeat: %w", err)
		}
		item.LastHeartbeat = &hb
	}

	return &item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	}
	for _, format := range formats {
		if parsed, err := time.Parse(format, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}
