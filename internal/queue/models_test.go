package queue_test

import (
	"testing"

	"subburn/internal/queue"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  queue.Status
		ok    bool
	}{
		{"pending", queue.StatusPending, true},
		{" Completed ", queue.StatusCompleted, true},
		{"BURNING", queue.StatusBurning, true},
		{"", "", false},
		{"ripping", "", false},
	}

	for _, tc := range cases {
		got, ok := queue.ParseStatus(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseStatus(%q): ok = %v, want %v", tc.input, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseStatus(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestIsProcessing(t *testing.T) {
	processing := []queue.Status{queue.StatusExtracting, queue.StatusTranscribing, queue.StatusBurning}
	for _, status := range processing {
		if !queue.IsProcessingStatus(status) {
			t.Fatalf("expected %s to be processing", status)
		}
	}
	for _, status := range []queue.Status{queue.StatusPending, queue.StatusExtracted, queue.StatusTranscribed, queue.StatusCompleted, queue.StatusFailed} {
		if queue.IsProcessingStatus(status) {
			t.Fatalf("expected %s not to be processing", status)
		}
	}

	item := queue.Item{Status: queue.StatusBurning}
	if !item.IsProcessing() {
		t.Fatal("expected burning item to report processing")
	}
}

func TestSetFailedClearsProgress(t *testing.T) {
	item := queue.Item{Status: queue.StatusTranscribing}
	item.SetProgress("Transcribing", "halfway", 50)
	item.SetFailed("whisper crashed")

	if item.Status != queue.StatusFailed {
		t.Fatalf("expected failed, got %s", item.Status)
	}
	if item.ErrorMessage != "whisper crashed" {
		t.Fatalf("unexpected error message %q", item.ErrorMessage)
	}
	if item.ProgressPercent != 0 || item.LastHeartbeat != nil {
		t.Fatalf("expected progress cleared: %#v", item)
	}
}
