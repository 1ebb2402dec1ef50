package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAI()
	c.normalizeAdaptive()
	c.normalizeWorkflow()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAI() {
	c.AI.OpenAI.APIKey = strings.TrimSpace(c.AI.OpenAI.APIKey)
	c.AI.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.AI.OpenAI.BaseURL), "/")
	c.AI.OpenAI.Model = strings.TrimSpace(c.AI.OpenAI.Model)
	if c.AI.OpenAI.BaseURL == "" {
		c.AI.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
	if c.AI.OpenAI.Model == "" {
		c.AI.OpenAI.Model = defaultOpenAIModel
	}

	c.AI.Venice.APIKey = strings.TrimSpace(c.AI.Venice.APIKey)
	c.AI.Venice.BaseURL = strings.TrimRight(strings.TrimSpace(c.AI.Venice.BaseURL), "/")
	c.AI.Venice.Model = strings.TrimSpace(c.AI.Venice.Model)
	if c.AI.Venice.BaseURL == "" {
		c.AI.Venice.BaseURL = defaultVeniceBaseURL
	}
	if c.AI.Venice.Model == "" {
		c.AI.Venice.Model = defaultVeniceModel
	}

	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = defaultAITimeoutSeconds
	}
	if c.AI.MaxInputRunes <= 0 {
		c.AI.MaxInputRunes = defaultMaxInputRunes
	}
}

func (c *Config) normalizeAdaptive() {
	if c.Adaptive.FeedbackWindow <= 0 {
		c.Adaptive.FeedbackWindow = defaultFeedbackWindow
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.MinSectionWords <= 0 {
		c.Workflow.MinSectionWords = defaultMinSectionWords
	}
	if c.Workflow.GuidanceCoverage <= 0 {
		c.Workflow.GuidanceCoverage = defaultGuidanceCoverage
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
