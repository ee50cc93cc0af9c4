package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"subburn/internal/config"
)

const userAgent = "Subburn/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyFileQueued(ctx context.Context, title string) error
	NotifyTranscriptionCompleted(ctx context.Context, title string, cueCount int) error
	NotifyProcessingCompleted(ctx context.Context, title, outputFile string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:        topic,
		client:          &http.Client{Timeout: timeout},
		queueEvents:     cfg.Notifications.Queue,
		completionEvent: cfg.Notifications.Completion,
		errorEvents:     cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint        string
	client          *http.Client
	queueEvents     bool
	completionEvent bool
	errorEvents     bool
}

func (n *ntfyService) NotifyFileQueued(ctx context.Context, title string) error {
	if !n.queueEvents {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Subburn - Queued",
		message: fmt.Sprintf("Queued for captioning: %s", title),
		tags:    []string{"subburn", "queue", "added"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTranscriptionCompleted(ctx context.Context, title string, cueCount int) error {
	if !n.queueEvents {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Subburn - Transcribed",
		message: fmt.Sprintf("Transcription complete: %s (%d cues)", title, cueCount),
		tags:    []string{"subburn", "transcribe", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyProcessingCompleted(ctx context.Context, title, outputFile string) error {
	if !n.completionEvent {
		return nil
	}
	title = strings.TrimSpace(title)
	outputFile = strings.TrimSpace(outputFile)
	message := fmt.Sprintf("Captioned video ready: %s", title)
	if outputFile != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, outputFile)
	}
	data := payload{
		title:    "Subburn - Complete",
		message:  message,
		tags:     []string{"subburn", "workflow", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errorEvents {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Subburn - Error",
		message:  builder.String(),
		tags:     []string{"subburn", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Subburn - Test",
		message:  "Notification system test",
		tags:     []string{"subburn", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyFileQueued(context.Context, string) error                   { return nil }
func (noopService) NotifyTranscriptionCompleted(context.Context, string, int) error  { return nil }
func (noopService) NotifyProcessingCompleted(context.Context, string, string) error  { return nil }
func (noopService) NotifyError(context.Context, error, string) error                 { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
