package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"plume/internal/logging"
	"plume/internal/project"
)

// cacheEntry maps a prompt digest to the suggestions it produced.
type cacheEntry struct {
	Key         string               `json:"key"`
	Provider    string               `json:"provider"`
	Suggestions *project.Suggestions `json:"suggestions"`
	CachedAt    time.Time            `json:"cached_at"`
}

// Cache provides thread-safe access to the on-disk suggestion cache.
// An empty path makes every operation a no-op.
type Cache struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache creates a cache instance backed by the given file. The file is
// created lazily on first Store.
func NewCache(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Cache{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "aicache"),
		entries: make(map[string]cacheEntry),
	}
	if path == "" {
		return c
	}
	if err := c.load(); err != nil {
		c.logger.Warn("failed to load suggestion cache, starting empty", logging.Error(err))
	}
	return c
}

// CacheKey digests a request so identical prompts hit the same entry.
func CacheKey(req Request) string {
	sum := sha256.Sum256([]byte(req.System + "\x00" + req.Prompt))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached suggestions for a key if present.
func (c *Cache) Lookup(key string) (*project.Suggestions, bool) {
	if key == "" || c.path == "" {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, found := c.entries[key]
	if !found || entry.Suggestions == nil {
		return nil, false
	}
	return entry.Suggestions, true
}

// Store adds an entry and persists the cache to disk.
func (c *Cache) Store(key, provider string, suggestions *project.Suggestions) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if c.path == "" || suggestions == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		Key:         key,
		Provider:    provider,
		Suggestions: suggestions,
		CachedAt:    time.Now().UTC(),
	}
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("cached suggestions", logging.String("provider", provider))
	return nil
}

// Clear removes all entries and persists the empty cache.
func (c *Cache) Clear() error {
	if c.path == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

// Count returns the number of cached entries.
func (c *Cache) Count() int {
	if c.path == "" {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []cacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	c.entries = make(map[string]cacheEntry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Key) != "" {
			c.entries[entry.Key] = entry
		}
	}
	return nil
}

// save writes the cache to disk atomically via a temp file.
func (c *Cache) save() error {
	entries := make([]cacheEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
