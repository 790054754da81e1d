package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"writegeist/internal/config"
)

const userAgent = "Writegeist-Go/0.1.0"

// Service defines the notification surface exposed to daemon components.
type Service interface {
	NotifyPatchApplied(ctx context.Context, section, outcome string) error
	NotifyChapterIngested(ctx context.Context, title string, characters, locations int) error
	NotifyProjectUploaded(ctx context.Context, contentLength int) error
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
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		ingest:    cfg.Notifications.Ingest,
		proposals: cfg.Notifications.Proposals,
		errors:    cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	ingest    bool
	proposals bool
	errors    bool
}

func (n *ntfyService) NotifyPatchApplied(ctx context.Context, section, outcome string) error {
	if !n.proposals {
		return nil
	}
	section = strings.TrimSpace(section)
	data := payload{
		title:   "Writegeist - Section Updated",
		message: fmt.Sprintf("Merged proposal into %s (%s)", section, outcome),
		tags:    []string{"writegeist", "proposal", "applied"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyChapterIngested(ctx context.Context, title string, characters, locations int) error {
	if !n.ingest {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Writegeist - Chapter Ingested",
		message: fmt.Sprintf("Analyzed %q: %d characters, %d locations", title, characters, locations),
		tags:    []string{"writegeist", "ingest", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyProjectUploaded(ctx context.Context, contentLength int) error {
	if !n.proposals {
		return nil
	}
	data := payload{
		title:   "Writegeist - Project Replaced",
		message: fmt.Sprintf("Project page replaced (%d bytes)", contentLength),
		tags:    []string{"writegeist", "upload", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
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
		title:    "Writegeist - Error",
		message:  builder.String(),
		tags:     []string{"writegeist", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Writegeist - Test",
		message:  "Notification system test",
		tags:     []string{"writegeist", "test"},
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

func (noopService) NotifyPatchApplied(context.Context, string, string) error      { return nil }
func (noopService) NotifyChapterIngested(context.Context, string, int, int) error { return nil }
func (noopService) NotifyProjectUploaded(context.Context, int) error              { return nil }
func (noopService) NotifyError(context.Context, error, string) error              { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
