package venice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"plume/internal/ai"
	"plume/internal/config"
)

func testRequest() ai.Request {
	return ai.Request{System: "cadrage", Prompt: "matériau de la section"}
}

func TestCompleteParsesContent(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"content_hints\":[\"ok\"]}"}}]}`))
	}))
	defer server.Close()

	client := NewClient(config.Venice{APIKey: "secret", BaseURL: server.URL, Model: "venice-large"})
	content, err := client.Complete(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.Contains(content, "content_hints") {
		t.Fatalf("unexpected content %q", content)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected authorization %q", gotAuth)
	}
	if gotBody["model"] != "venice-large" {
		t.Fatalf("unexpected model %v", gotBody["model"])
	}
	messages, ok := gotBody["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("unexpected messages %v", gotBody["messages"])
	}
}

func TestCompleteReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(config.Venice{APIKey: "secret", BaseURL: server.URL})
	if _, err := client.Complete(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error on http 429")
	} else if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestCompleteReportsAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model unavailable"}}`))
	}))
	defer server.Close()

	client := NewClient(config.Venice{APIKey: "secret", BaseURL: server.URL})
	if _, err := client.Complete(context.Background(), testRequest()); err == nil {
		t.Fatal("expected api error")
	} else if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected api message in error, got %v", err)
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := NewClient(config.Venice{})
	if _, err := client.Complete(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(config.Venice{APIKey: "secret", BaseURL: server.URL})
	if _, err := client.Complete(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error on empty choices")
	}
}
