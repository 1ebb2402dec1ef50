package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"plume/internal/adaptive"
	"plume/internal/ai"
	"plume/internal/config"
	"plume/internal/export"
	"plume/internal/history"
	"plume/internal/logging"
	"plume/internal/notifications"
	"plume/internal/profile"
	"plume/internal/project"
	"plume/internal/sediment"
	"plume/internal/services/openai"
	"plume/internal/services/venice"
	"plume/internal/storage"
)

type commandContext struct {
	configFlag *string
	userFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, userFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		userFlag:   userFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) userID() string {
	if c.userFlag != nil {
		if user := strings.TrimSpace(*c.userFlag); user != "" {
			return user
		}
	}
	if user := strings.TrimSpace(os.Getenv("PLUME_USER")); user != "" {
		return user
	}
	return "default"
}

// appEnv bundles the wired workflow components behind one database handle.
type appEnv struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	lock     *flock.Flock
	store    *project.Store
	profiles *profile.Store
	history  *history.Manager
	engine   *adaptive.Engine
	aiSvc    *ai.Service
	manager  *sediment.Manager
	exporter *export.Exporter
	notifier notifications.Service
}

func (e *appEnv) close() {
	if e.db != nil {
		_ = e.db.Close()
	}
	if e.lock != nil {
		_ = e.lock.Unlock()
	}
}

// withEnv opens the workspace for the duration of one command. The file lock
// keeps concurrent plume invocations from interleaving writes on the same
// database.
func (c *commandContext) withEnv(cmd *cobra.Command, fn func(ctx context.Context, env *appEnv) error) error {
	env, err := c.openEnv()
	if err != nil {
		return err
	}
	defer env.close()
	return fn(cmd.Context(), env)
}

func (c *commandContext) openEnv() (*appEnv, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "plume.log")},
	})
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "plume.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("workspace %s is in use by another plume instance", cfg.Paths.DataDir)
	}

	db, err := storage.Open(cfg)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := project.NewStore(db, logger)
	profiles := profile.NewStore(db, logger)
	hist := history.NewManager(store, logger)
	engine := adaptive.NewEngine(cfg, profiles, logger)
	aiSvc := newAIService(cfg, logger)
	manager := sediment.NewManager(cfg, store, profiles, hist, engine, aiSvc, logger)

	return &appEnv{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		lock:     lock,
		store:    store,
		profiles: profiles,
		history:  hist,
		engine:   engine,
		aiSvc:    aiSvc,
		manager:  manager,
		exporter: export.NewExporter(cfg, store, logger),
		notifier: notifications.NewService(cfg),
	}, nil
}

// newAIService wires the configured completion providers. Without an OpenAI
// key the transfer pipeline runs on the adaptive engine alone.
func newAIService(cfg *config.Config, logger *slog.Logger) *ai.Service {
	if strings.TrimSpace(cfg.AI.OpenAI.APIKey) == "" {
		return nil
	}
	primary := openai.NewClient(cfg.AI.OpenAI)
	var fallback ai.Completer
	if cfg.AI.Venice.Enabled {
		fallback = venice.NewClient(cfg.AI.Venice)
	}
	cachePath := ""
	if cfg.AI.CacheEnabled {
		cachePath = cfg.SuggestionCachePath()
	}
	cache := ai.NewCache(cachePath, logger)
	return ai.NewService(cfg, primary, fallback, cache, logger)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
