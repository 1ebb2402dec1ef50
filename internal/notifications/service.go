package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"plume/internal/config"
	"plume/internal/workflow"
)

const userAgent = "Plume-Go/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyTransition(ctx context.Context, projectTitle string, from, to workflow.Phase) error
	NotifyFinalized(ctx context.Context, projectTitle string, sections, words int) error
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

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint:     topic,
		client:       client,
		transitions:  cfg.Notifications.Transitions,
		finalization: cfg.Notifications.Finalization,
		errors:       cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	transitions  bool
	finalization bool
	errors       bool
}

func (n *ntfyService) NotifyTransition(ctx context.Context, projectTitle string, from, to workflow.Phase) error {
	if !n.transitions {
		return nil
	}
	projectTitle = strings.TrimSpace(projectTitle)
	data := payload{
		title:   "Plume - Transfert",
		message: fmt.Sprintf("Transfert terminé : %s (%s vers %s)", projectTitle, from, to),
		tags:    []string{"plume", "transfer", string(to)},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFinalized(ctx context.Context, projectTitle string, sections, words int) error {
	if !n.finalization {
		return nil
	}
	projectTitle = strings.TrimSpace(projectTitle)
	data := payload{
		title:    "Plume - Document finalisé",
		message:  fmt.Sprintf("Document prêt : %s (%d sections, %d mots)", projectTitle, sections, words),
		tags:     []string{"plume", "finalized"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Erreur")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" (")
		builder.WriteString(contextLabel)
		builder.WriteString(")")
	}
	builder.WriteString(" : ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("inconnue")
	}

	data := payload{
		title:    "Plume - Erreur",
		message:  builder.String(),
		tags:     []string{"plume", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Plume - Test",
		message:  "Test du système de notifications",
		tags:     []string{"plume", "test"},
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

func (noopService) NotifyTransition(context.Context, string, workflow.Phase, workflow.Phase) error {
	return nil
}

func (noopService) NotifyFinalized(context.Context, string, int, int) error { return nil }

func (noopService) NotifyError(context.Context, error, string) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
