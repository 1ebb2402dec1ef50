package ai

import (
	"path/filepath"
	"testing"

	"plume/internal/logging"
	"plume/internal/project"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.json")
	cache := NewCache(path, logging.NewNop())

	suggestions := &project.Suggestions{ContentHints: []string{"creuser la comparaison"}}
	if err := cache.Store("abc", "openai", suggestions); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// A fresh instance must see the persisted entry.
	reopened := NewCache(path, logging.NewNop())
	got, found := reopened.Lookup("abc")
	if !found {
		t.Fatal("expected cache hit after reload")
	}
	if len(got.ContentHints) != 1 || got.ContentHints[0] != "creuser la comparaison" {
		t.Fatalf("unexpected cached value %+v", got)
	}
	if reopened.Count() != 1 {
		t.Fatalf("expected 1 entry, got %d", reopened.Count())
	}
}

func TestCacheMissAndClear(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "suggestions.json"), logging.NewNop())

	if _, found := cache.Lookup("missing"); found {
		t.Fatal("unexpected hit")
	}
	if err := cache.Store("abc", "openai", &project.Suggestions{StyleAdvice: []string{"resserrer"}}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cache.Count() != 0 {
		t.Fatalf("expected empty cache, got %d", cache.Count())
	}
}

func TestCacheWithoutPathIsNoop(t *testing.T) {
	cache := NewCache("", logging.NewNop())
	if err := cache.Store("abc", "openai", &project.Suggestions{}); err != nil {
		t.Fatalf("Store on pathless cache: %v", err)
	}
	if _, found := cache.Lookup("abc"); found {
		t.Fatal("pathless cache should never hit")
	}
}

func TestCacheKeyStableAndDistinct(t *testing.T) {
	a := Request{System: "s", Prompt: "p"}
	if CacheKey(a) != CacheKey(a) {
		t.Fatal("same request should yield same key")
	}
	b := Request{System: "s", Prompt: "q"}
	if CacheKey(a) == CacheKey(b) {
		t.Fatal("different prompts should yield different keys")
	}
}

func TestTruncateBoundsPrompt(t *testing.T) {
	text := "mot " // 4 runes per repeat
	long := ""
	for i := 0; i < 100; i++ {
		long += text
	}
	cut := truncate(long, 50)
	if len([]rune(cut)) > 50 {
		t.Fatalf("truncation exceeded bound: %d runes", len([]rune(cut)))
	}
	if truncate("court", 50) != "court" {
		t.Fatal("short text should pass through unchanged")
	}
	if truncate(long, 0) != long {
		t.Fatal("non-positive bound should disable truncation")
	}
}
