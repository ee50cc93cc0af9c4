package queue

import (
	"context"
	"fmt"
	"time"
)

// ResetStuckProcessing rolls any item left in a processing status back to the
// status that re-enters the same stage. Called on daemon startup so a crash
// mid-stage does not strand items.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var total int64
	for _, transition := range stageRollbackTransitions {
		res, err := s.execWithRetry(ctx, `
			UPDATE queue_items SET
				status = ?,
				progress_stage = NULL,
				progress_percent = 0,
				progress_message = NULL,
				last_heartbeat = NULL,
				updated_at = ?
			WHERE status = ?`,
			string(transition.to),
			time.Now().UTC().Format(time.RFC3339Nano),
			string(transition.from),
		)
		if err != nil {
			return total, fmt.Errorf("reset %s items: %w", transition.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("reset %s items: %w", transition.from, err)
		}
		total += affected
	}
	return total, nil
}

// UpdateHeartbeat records liveness for an in-flight item.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := s.execWithoutResultRetry(ctx,
		"UPDATE queue_items SET last_heartbeat = ?, updated_at = ? WHERE id = ?",
		now, now, id)
	if err != nil {
		return fmt.Errorf("update heartbeat for item %d: %w", id, err)
	}
	return nil
}

// ReclaimStaleProcessing rolls back any processing item whose heartbeat is
// older than the cutoff, returning the ids of reclaimed items.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) ([]int64, error) {
	ctx = ensureContext(ctx)
	cutoffStr := cutoff.UTC().Format(time.RFC3339Nano)
	var reclaimed []int64

	for _, transition := range stageRollbackTransitions {
		rows, err := s.db.QueryContext(ctx,
			"SELECT id FROM queue_items WHERE status = ? AND last_heartbeat IS NOT NULL AND last_heartbeat < ?",
			string(transition.from), cutoffStr)
		if err != nil {
			return reclaimed, fmt.Errorf("find stale %s items: %w", transition.from, err)
		}
		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return reclaimed, fmt.Errorf("scan stale item id: %w", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return reclaimed, fmt.Errorf("iterate stale items: %w", err)
		}
		rows.Close()

		for _, id := range ids {
			err := s.execWithoutResultRetry(ctx, `
				UPDATE queue_items SET
					status = ?,
					progress_stage = NULL,
					progress_percent = 0,
					progress_message = NULL,
					last_heartbeat = NULL,
					updated_at = ?
				WHERE id = ? AND status = ?`,
				string(transition.to),
				time.Now().UTC().Format(time.RFC3339Nano),
				id,
				string(transition.from),
			)
			if err != nil {
				return reclaimed, fmt.Errorf("reclaim item %d: %w", id, err)
			}
			reclaimed = append(reclaimed, id)
		}
	}
	return reclaimed, nil
}

// RetryFailed resets a failed item to the status that re-enters its last
// incomplete stage, inferred from which artifacts were produced.
func (s *Store) RetryFailed(ctx context.Context, id int64) (*Item, error) {
	ctx = ensureContext(ctx)
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("queue item %d not found", id)
	}
	if item.Status != StatusFailed {
		return nil, fmt.Errorf("queue item %d is %s, not failed", id, item.Status)
	}

	switch {
	case item.SubtitleFile != "":
		item.Status = StatusTranscribed
	case item.AudioFile != "":
		item.Status = StatusExtracted
	default:
		item.Status = StatusPending
	}
	item.ErrorMessage = ""
	item.NeedsReview = false
	item.ReviewReason = ""
	item.ProgressStage = ""
	item.ProgressPercent = 0
	item.ProgressMessage = ""
	item.LastHeartbeat = nil

	if err := s.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// FailDanglingProcessing marks every in-flight item failed with the given
// reason. Used for clean daemon shutdown when rollback is not wanted.
func (s *Store) FailDanglingProcessing(ctx context.Context, reason string) (int64, error) {
	ctx = ensureContext(ctx)
	statuses := ProcessingStatuses()
	args := make([]any, 0, len(statuses)+2)
	args = append(args, string(StatusFailed), reason)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	args = append(args, now)
	for _, status := range statuses {
		args = append(args, string(status))
	}
	res, err := s.execWithRetry(ctx,
		"UPDATE queue_items SET status = ?, error_message = ?, last_heartbeat = NULL, updated_at = ? WHERE status IN ("+makePlaceholders(len(statuses))+")",
		args...)
	if err != nil {
		return 0, fmt.Errorf("fail processing items: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("fail processing items: %w", err)
	}
	return affected, nil
}
