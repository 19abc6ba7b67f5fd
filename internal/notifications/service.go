package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipdeck/internal/config"
)

const userAgent = "clipdeck/0.1.0"

// Service defines the notification surface exposed to the upload pipeline.
type Service interface {
	NotifyUploadSucceeded(ctx context.Context, title, remoteID string, publishAt *time.Time) error
	NotifyFlagged(ctx context.Context, title string, segments int) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
		success:  cfg.Notifications.Success,
		flagged:  cfg.Notifications.Flagged,
		errors:   cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client

	success bool
	flagged bool
	errors  bool
}

func (n *ntfyService) NotifyUploadSucceeded(ctx context.Context, title, remoteID string, publishAt *time.Time) error {
	if !n.success {
		return nil
	}
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("✅ Uploaded: %s", title)
	if remoteID = strings.TrimSpace(remoteID); remoteID != "" {
		message = fmt.Sprintf("%s\nVideo: %s", message, remoteID)
	}
	if publishAt != nil {
		message = fmt.Sprintf("%s\nPublishes: %s", message, publishAt.UTC().Format(time.RFC3339))
	}
	data := payload{
		title:   "clipdeck - Uploaded",
		message: message,
		tags:    []string{"clipdeck", "upload", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFlagged(ctx context.Context, title string, segments int) error {
	if !n.flagged {
		return nil
	}
	title = strings.TrimSpace(title)
	noun := "segments"
	if segments == 1 {
		noun = "segment"
	}
	data := payload{
		title:    "clipdeck - Flagged",
		message:  fmt.Sprintf("🚩 Upload blocked: %s\n%d flagged %s, review required", title, segments, noun),
		tags:     []string{"clipdeck", "moderation", "flagged"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
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
		title:    "clipdeck - Error",
		message:  builder.String(),
		tags:     []string{"clipdeck", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "clipdeck - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"clipdeck", "test"},
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

func (noopService) NotifyUploadSucceeded(context.Context, string, string, *time.Time) error { return nil }
func (noopService) NotifyFlagged(context.Context, string, int) error                        { return nil }
func (noopService) NotifyError(context.Context, error, string) error                        { return nil }
func (noopService) TestNotification(context.Context) error                                  { return nil }
