package main

import (
	"testing"

	"subburn/internal/api"
	"subburn/internal/ipc"
)

func TestFormatStatusLabel(t *testing.T) {
	cases := map[string]string{
		"pending":     "Pending",
		"transcribed": "Transcribed",
		"":            "",
	}
	for input, want := range cases {
		if got := formatStatusLabel(input); got != want {
			t.Fatalf("formatStatusLabel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBuildQueueListRowsSortsNewestFirst(t *testing.T) {
	items := []ipc.QueueItem{
		{ID: 1, Title: "Older", Status: "completed", CreatedAt: "2025-03-04T10:00:00Z"},
		{ID: 2, Title: "Newer", Status: "pending", CreatedAt: "2025-03-04T12:00:00Z"},
	}
	rows := buildQueueListRows(items)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "Newer" || rows[1][1] != "Older" {
		t.Fatalf("unexpected row order: %v", rows)
	}
	if rows[0][2] != "Pending" {
		t.Fatalf("expected formatted status, got %q", rows[0][2])
	}
	if rows[1][5] != "2025-03-04 10:00" {
		t.Fatalf("unexpected created column: %q", rows[1][5])
	}
}

func TestBuildQueueListRowsFallsBackToSourceName(t *testing.T) {
	items := []ipc.QueueItem{
		{ID: 7, SourcePath: "/videos/town_hall.mp4", Status: "pending"},
	}
	rows := buildQueueListRows(items)
	if rows[0][1] != "town_hall.mp4" {
		t.Fatalf("expected basename fallback, got %q", rows[0][1])
	}
}

func TestFormatProgress(t *testing.T) {
	if got := formatProgress(ipc.QueueItem{}); got != "-" {
		t.Fatalf("expected placeholder for empty progress, got %q", got)
	}
	item := ipc.QueueItem{Progress: api.QueueProgress{Stage: "transcribing", Percent: 42.4}}
	if got := formatProgress(item); got != "transcribing 42%" {
		t.Fatalf("unexpected progress format: %q", got)
	}
}

func TestBuildQueueStatusRowsSorted(t *testing.T) {
	rows := buildQueueStatusRows(map[string]int{"pending": 2, "failed": 1})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Failed" || rows[1][0] != "Pending" {
		t.Fatalf("expected alphabetical order, got %v", rows)
	}
}
