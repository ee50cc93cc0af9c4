package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// NewFile creates a queue item for an uploaded or locally added video file.
func (s *Store) NewFile(ctx context.Context, sourcePath, language string) (*Item, error) {
	ctx = ensureContext(ctx)
	now := time.Now().UTC()
	item := &Item{
		SourcePath: sourcePath,
		Title:      inferTitleFromPath(sourcePath),
		Language:   language,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	res, err := s.execWithRetry(ctx, `
		INSERT INTO queue_items (source_path, title, language, status, created_at, updated_at, progress_percent)
		VALUES (?, ?, ?, ?, ?, ?, 0)`,
		item.SourcePath,
		item.Title,
		nullableString(item.Language),
		string(item.Status),
		item.CreatedAt.Format(time.RFC3339Nano),
		item.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert queue item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read inserted id: %w", err)
	}
	item.ID = id
	return item, nil
}

// GetByID returns a single item, or nil when no item has the given id.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM queue_items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get queue item %d: %w", id, err)
	}
	return item, nil
}

// Update persists all mutable fields of the item and refreshes updated_at.
func (s *Store) Update(ctx context.Context, item *Item) error {
	ctx = ensureContext(ctx)
	item.UpdatedAt = time.Now().UTC()

	_, err := s.execWithRetry(ctx, `
		UPDATE queue_items SET
			source_path = ?,
			title = ?,
			language = ?,
			status = ?,
			media_info_json = ?,
			audio_file = ?,
			subtitle_file = ?,
			output_file = ?,
			transcript_preview = ?,
			error_message = ?,
			updated_at = ?,
			progress_stage = ?,
			progress_percent = ?,
			progress_message = ?,
			last_heartbeat = ?,
			needs_review = ?,
			review_reason = ?
		WHERE id = ?`,
		item.SourcePath,
		item.Title,
		nullableString(item.Language),
		string(item.Status),
		nullableString(item.MediaInfoJSON),
		nullableString(item.AudioFile),
		nullableString(item.SubtitleFile),
		nullableString(item.OutputFile),
		nullableString(item.TranscriptPreview),
		nullableString(item.ErrorMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		nullableString(item.ProgressStage),
		item.ProgressPercent,
		nullableString(item.ProgressMessage),
		nullableTime(item.LastHeartbeat),
		boolToInt(item.NeedsReview),
		nullableString(item.ReviewReason),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update queue item %d: %w", item.ID, err)
	}
	return nil
}

// List returns items, optionally filtered by status, ordered oldest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + itemColumns + " FROM queue_items"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += " WHERE status IN (" + makePlaceholders(len(statuses)) + ")"
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue items: %w", err)
	}
	return items, nil
}

// ItemsByStatus returns all items currently in the given status.
func (s *Store) ItemsByStatus(ctx context.Context, status Status) ([]*Item, error) {
	return s.List(ctx, status)
}

// NextForStatuses returns the oldest item whose status matches any of the
// given statuses, or nil when the queue has no ready work.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Item, error) {
	ctx = ensureContext(ctx)
	if len(statuses) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(statuses))
	for _, status := range statuses {
		args = append(args, string(status))
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM queue_items WHERE status IN ("+makePlaceholders(len(statuses))+") ORDER BY created_at ASC, id ASC LIMIT 1",
		args...)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next queue item: %w", err)
	}
	return item, nil
}

// Remove deletes one item by id. Returns true when a row was deleted.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, "DELETE FROM queue_items WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("remove queue item %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove queue item %d: %w", id, err)
	}
	return affected > 0, nil
}

// Clear removes every item from the queue and returns the number deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, "DELETE FROM queue_items")
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return affected, nil
}

// ClearCompleted removes completed items and returns the number deleted.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	return s.clearByStatus(ctx, StatusCompleted)
}

// ClearFailed removes failed items and returns the number deleted.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	return s.clearByStatus(ctx, StatusFailed)
}

func (s *Store) clearByStatus(ctx context.Context, status Status) (int64, error) {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, "DELETE FROM queue_items WHERE status = ?", string(status))
	if err != nil {
		return 0, fmt.Errorf("clear %s items: %w", status, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear %s items: %w", status, err)
	}
	return affected, nil
}
