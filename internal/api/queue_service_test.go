package api

import (
	"context"
	"errors"
	"testing"

	"subburn/internal/queue"
)

type stubQueueReader struct {
	items   []*queue.Item
	stats   map[queue.Status]int
	listErr error
}

func (s *stubQueueReader) List(_ context.Context, statuses ...queue.Status) ([]*queue.Item, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(statuses) == 0 {
		return s.items, nil
	}
	wanted := make(map[queue.Status]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}
	var out []*queue.Item
	for _, item := range s.items {
		if _, ok := wanted[item.Status]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubQueueReader) Stats(context.Context) (map[queue.Status]int, error) {
	return s.stats, nil
}

func (s *stubQueueReader) GetByID(_ context.Context, id int64) (*queue.Item, error) {
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, nil
}

func TestQueueServiceList(t *testing.T) {
	service := NewQueueService(&stubQueueReader{items: []*queue.Item{
		{ID: 1, Status: queue.StatusPending},
		{ID: 2, Status: queue.StatusCompleted},
	}})

	items, err := service.List(context.Background(), queue.StatusCompleted)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestQueueServiceStats(t *testing.T) {
	service := NewQueueService(&stubQueueReader{stats: map[queue.Status]int{queue.StatusFailed: 2}})

	counts, err := service.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if counts["failed"] != 2 || counts["pending"] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestQueueServiceDescribeMissing(t *testing.T) {
	service := NewQueueService(&stubQueueReader{})

	item, err := service.Describe(context.Background(), 99)
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil for missing item, got %+v", item)
	}
}

func TestQueueServiceNilStore(t *testing.T) {
	service := NewQueueService(nil)

	if _, err := service.List(context.Background()); !errors.Is(err, ErrQueueUnavailable) {
		t.Fatalf("expected ErrQueueUnavailable, got %v", err)
	}
	if _, err := service.Stats(context.Background()); !errors.Is(err, ErrQueueUnavailable) {
		t.Fatalf("expected ErrQueueUnavailable, got %v", err)
	}
	if _, err := service.Describe(context.Background(), 1); !errors.Is(err, ErrQueueUnavailable) {
		t.Fatalf("expected ErrQueueUnavailable, got %v", err)
	}
}
