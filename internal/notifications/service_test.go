package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"plume/internal/config"
	"plume/internal/notifications"
	"plume/internal/workflow"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyTransition(context.Background(), "Mémoire", workflow.PhaseStoryboard, workflow.PhaseDrafting); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, sink *captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		sink.title = r.Header.Get("Title")
		sink.tags = r.Header.Get("Tags")
		sink.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		sink.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestConfig(endpoint string) config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = endpoint
	cfg.Notifications.Transitions = true
	cfg.Notifications.Finalization = true
	cfg.Notifications.Errors = true
	return cfg
}

func TestNtfyServiceFormatsTransition(t *testing.T) {
	var sink captured
	server := newCaptureServer(t, &sink)
	cfg := newTestConfig(server.URL)
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyTransition(context.Background(), "Mémoire M2", workflow.PhaseStoryboard, workflow.PhaseDrafting); err != nil {
		t.Fatalf("NotifyTransition: %v", err)
	}
	if sink.title != "Plume - Transfert" {
		t.Fatalf("unexpected title %q", sink.title)
	}
	if sink.body != "Transfert terminé : Mémoire M2 (storyboard vers drafting)" {
		t.Fatalf("unexpected body %q", sink.body)
	}
	if sink.tags != "plume,transfer,drafting" {
		t.Fatalf("unexpected tags %q", sink.tags)
	}
}

func TestNtfyServiceFormatsFinalized(t *testing.T) {
	var sink captured
	server := newCaptureServer(t, &sink)
	cfg := newTestConfig(server.URL)
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyFinalized(context.Background(), "Thèse", 5, 12400); err != nil {
		t.Fatalf("NotifyFinalized: %v", err)
	}
	if sink.title != "Plume - Document finalisé" {
		t.Fatalf("unexpected title %q", sink.title)
	}
	if sink.body != "Document prêt : Thèse (5 sections, 12400 mots)" {
		t.Fatalf("unexpected body %q", sink.body)
	}
	if sink.priority != "high" {
		t.Fatalf("unexpected priority %q", sink.priority)
	}
}

func TestNtfyServiceFormatsError(t *testing.T) {
	var sink captured
	server := newCaptureServer(t, &sink)
	cfg := newTestConfig(server.URL)
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyError(context.Background(), errors.New("transfert refusé"), "advance"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	if sink.body != "Erreur (advance) : transfert refusé" {
		t.Fatalf("unexpected body %q", sink.body)
	}
	if sink.priority != "high" {
		t.Fatalf("unexpected priority %q", sink.priority)
	}
}

func TestNtfyServiceHonoursEventToggles(t *testing.T) {
	var sink captured
	server := newCaptureServer(t, &sink)
	cfg := newTestConfig(server.URL)
	cfg.Notifications.Transitions = false
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyTransition(context.Background(), "Mémoire", workflow.PhaseDrafting, workflow.PhaseRevision); err != nil {
		t.Fatalf("NotifyTransition: %v", err)
	}
	if sink.title != "" {
		t.Fatalf("expected no request when transitions disabled, got title %q", sink.title)
	}
}

func TestNtfyServiceReportsHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic rejected", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)
	cfg := newTestConfig(server.URL)
	svc := notifications.NewService(&cfg)

	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for HTTP 403")
	}
}
