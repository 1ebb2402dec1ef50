package testsupport

import (
	"path/filepath"
	"testing"

	"plume/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.AI.OpenAI.APIKey = "test"
	cfgVal.AI.CacheEnabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithOpenAIBaseURL points the primary completion provider at a test server.
func WithOpenAIBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AI.OpenAI.BaseURL = url
	}
}

// WithVenice enables the fallback completion provider against a test server.
func WithVenice(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AI.Venice.Enabled = true
		b.cfg.AI.Venice.APIKey = "test"
		b.cfg.AI.Venice.BaseURL = url
	}
}

// WithSuggestionCache enables the on-disk suggestion cache for the test.
func WithSuggestionCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AI.CacheEnabled = true
	}
}
