package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"subburn/internal/config"
	"subburn/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyProcessingCompleted(context.Background(), "Example", "/out/example.mp4"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceSendsHeadersAndBody(t *testing.T) {
	type captured struct {
		title    string
		tags     string
		priority string
		body     string
	}
	var got captured

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Completion = true
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyProcessingCompleted(context.Background(), "My Clip", "/out/my_clip.subbed.mp4"); err != nil {
		t.Fatalf("NotifyProcessingCompleted failed: %v", err)
	}

	if got.title != "Subburn - Complete" {
		t.Fatalf("unexpected title %q", got.title)
	}
	if !strings.Contains(got.body, "My Clip") || !strings.Contains(got.body, "/out/my_clip.subbed.mp4") {
		t.Fatalf("unexpected body %q", got.body)
	}
	if got.tags != "subburn,workflow,completed" {
		t.Fatalf("unexpected tags %q", got.tags)
	}
	if got.priority != "high" {
		t.Fatalf("unexpected priority %q", got.priority)
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Queue = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyFileQueued(context.Background(), "Clip"); err != nil {
		t.Fatalf("NotifyFileQueued failed: %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "transcription"); err != nil {
		t.Fatalf("NotifyError failed: %v", err)
	}
	if requests != 0 {
		t.Fatalf("expected no requests with toggles off, got %d", requests)
	}
}

func TestNtfyServiceSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic rejected", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
