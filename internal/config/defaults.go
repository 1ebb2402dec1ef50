package config

const (
	defaultDataDir          = "~/.local/share/plume/data"
	defaultLogDir           = "~/.local/share/plume/logs"
	defaultExportDir        = "~/plume-exports"
	defaultCacheDir         = "~/.cache/plume"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultVeniceBaseURL    = "https://api.venice.ai/api/v1"
	defaultVeniceModel      = "venice-large"
	defaultAITimeoutSeconds = 30
	defaultMaxInputRunes    = 24000
	defaultFeedbackWindow   = 20
	defaultMinSectionWords  = 50
	defaultGuidanceCoverage = 0.5
	defaultNtfyTimeout      = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
			CacheDir:  defaultCacheDir,
		},
		AI: AI{
			OpenAI: OpenAI{
				BaseURL: defaultOpenAIBaseURL,
				Model:   defaultOpenAIModel,
			},
			Venice: Venice{
				BaseURL: defaultVeniceBaseURL,
				Model:   defaultVeniceModel,
			},
			TimeoutSeconds: defaultAITimeoutSeconds,
			MaxInputRunes:  defaultMaxInputRunes,
			CacheEnabled:   true,
		},
		Adaptive: Adaptive{
			FeedbackWindow: defaultFeedbackWindow,
		},
		Workflow: Workflow{
			MinSectionWords:  defaultMinSectionWords,
			GuidanceCoverage: defaultGuidanceCoverage,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			Transitions:    true,
			Finalization:   true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
