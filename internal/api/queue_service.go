package api

import (
	"context"
	"errors"

	"subburn/internal/queue"
)

// ErrQueueUnavailable indicates no queue store is wired into the service.
var ErrQueueUnavailable = errors.New("queue store unavailable")

// QueueReader is the subset of queue store behavior the API layer needs.
type QueueReader interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Item, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
	GetByID(ctx context.Context, id int64) (*queue.Item, error)
}

// QueueService exposes read-only queue views shared by the HTTP server, the
// IPC surface, and CLI commands.
type QueueService struct {
	store QueueReader
}

// NewQueueService builds a service over the given reader. A nil reader is
// tolerated and surfaces ErrQueueUnavailable on use.
func NewQueueService(store QueueReader) *QueueService {
	return &QueueService{store: store}
}

// List returns queue items, optionally filtered by status.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, ErrQueueUnavailable
	}
	items, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromQueueItems(items), nil
}

// Stats returns per-status queue counts with every status present.
func (s *QueueService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, ErrQueueUnavailable
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeQueueStats(stats), nil
}

// Describe returns a single queue entry by ID, or nil when missing.
func (s *QueueService) Describe(ctx context.Context, id int64) (*QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, ErrQueueUnavailable
	}
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	converted := FromQueueItem(item)
	return &converted, nil
}
