package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"writegeist/internal/config"
	"writegeist/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T) (*httptest.Server, func() []captured) {
	t.Helper()
	var mu sync.Mutex
	var requests []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		mu.Lock()
		requests = append(requests, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
	}))
	t.Cleanup(server.Close)
	return server, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), requests...)
	}
}

func testConfig(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.RequestTimeout = 5
	return &cfg
}

func TestNotifyPatchAppliedSendsHeaders(t *testing.T) {
	server, requests := newCaptureServer(t)
	svc := notifications.NewService(testConfig(server.URL))

	if err := svc.NotifyPatchApplied(context.Background(), "Characters", "applied"); err != nil {
		t.Fatalf("NotifyPatchApplied returned error: %v", err)
	}

	got := requests()
	if len(got) != 1 {
		t.Fatalf("expected 1 request, got %d", len(got))
	}
	if got[0].title != "Writegeist - Section Updated" {
		t.Errorf("title = %q", got[0].title)
	}
	if !strings.Contains(got[0].body, "Characters") {
		t.Errorf("body = %q", got[0].body)
	}
	if !strings.Contains(got[0].tags, "proposal") {
		t.Errorf("tags = %q", got[0].tags)
	}
}

func TestNotifyErrorSetsHighPriority(t *testing.T) {
	server, requests := newCaptureServer(t)
	svc := notifications.NewService(testConfig(server.URL))

	if err := svc.NotifyError(context.Background(), errors.New("merge failed"), "proposal"); err != nil {
		t.Fatalf("NotifyError returned error: %v", err)
	}

	got := requests()
	if len(got) != 1 {
		t.Fatalf("expected 1 request, got %d", len(got))
	}
	if got[0].priority != "high" {
		t.Errorf("priority = %q", got[0].priority)
	}
	if !strings.Contains(got[0].body, "merge failed") {
		t.Errorf("body = %q", got[0].body)
	}
}

func TestDisabledKindsAreSuppressed(t *testing.T) {
	server, requests := newCaptureServer(t)
	cfg := testConfig(server.URL)
	cfg.Notifications.Ingest = false
	cfg.Notifications.Proposals = false
	svc := notifications.NewService(cfg)

	if err := svc.NotifyChapterIngested(context.Background(), "Chapter One", 3, 2); err != nil {
		t.Fatalf("NotifyChapterIngested returned error: %v", err)
	}
	if err := svc.NotifyPatchApplied(context.Background(), "Setting", "applied"); err != nil {
		t.Fatalf("NotifyPatchApplied returned error: %v", err)
	}
	if got := requests(); len(got) != 0 {
		t.Fatalf("expected suppressed notifications, got %d requests", len(got))
	}
}

func TestNoTopicYieldsNoop(t *testing.T) {
	svc := notifications.NewService(testConfig(""))
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "test"); err != nil {
		t.Fatalf("noop NotifyError returned error: %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop TestNotification returned error: %v", err)
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	svc := notifications.NewService(testConfig(server.URL))
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("error = %v, want ntfy 429", err)
	}
}
