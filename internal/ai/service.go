package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"plume/internal/config"
	"plume/internal/logging"
	"plume/internal/project"
	"plume/internal/services"
)

// Service turns section material into suggestions through a primary
// completer with an optional fallback. Results are cached by prompt digest
// so re-running a transition does not re-bill identical requests.
type Service struct {
	primary  Completer
	fallback Completer
	cache    *Cache
	timeout  time.Duration
	maxRunes int
	logger   *slog.Logger
}

// NewService assembles the suggestion service. fallback may be nil.
func NewService(cfg *config.Config, primary, fallback Completer, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		primary:  primary,
		fallback: fallback,
		cache:    cache,
		timeout:  timeout,
		maxRunes: cfg.AI.MaxInputRunes,
		logger:   logging.NewComponentLogger(logger, "ai"),
	}
}

// Suggest produces advisory suggestions for one section. It never returns
// partial content on success: the result is either a parsed suggestion set
// or an error the caller can degrade on.
func (s *Service) Suggest(ctx context.Context, req SuggestionRequest) (*project.Suggestions, error) {
	if req.Section == nil {
		return nil, services.Wrap(services.ErrValidation, "ai", "suggest", "section is nil", nil)
	}

	completion := buildRequest(req, s.maxRunes)
	key := CacheKey(completion)
	if s.cache != nil {
		if cached, found := s.cache.Lookup(key); found {
			s.logger.Debug("suggestion cache hit",
				logging.Int64(logging.FieldSectionID, req.Section.ID))
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	suggestions, provider, err := s.complete(ctx, completion)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Store(key, provider, suggestions); err != nil {
			s.logger.Warn("failed to persist suggestion cache", logging.Error(err))
		}
	}
	return suggestions, nil
}

func (s *Service) complete(ctx context.Context, req Request) (*project.Suggestions, string, error) {
	if s.primary == nil {
		return nil, "", services.Wrap(services.ErrInfrastructure, "ai", "suggest", "no completion provider configured", nil)
	}

	raw, primaryErr := s.primary.Complete(ctx, req)
	if primaryErr == nil {
		suggestions, err := parseSuggestions(raw)
		if err == nil {
			return suggestions, s.primary.Name(), nil
		}
		primaryErr = err
	}
	if errors.Is(primaryErr, context.DeadlineExceeded) {
		return nil, "", services.Wrap(services.ErrTimeout, "ai", "suggest",
			fmt.Sprintf("%s did not answer within %s", s.primary.Name(), s.timeout), primaryErr)
	}

	if s.fallback == nil {
		return nil, "", services.Wrap(services.ErrTransient, "ai", "suggest",
			fmt.Sprintf("%s failed", s.primary.Name()), primaryErr)
	}

	s.logger.Warn("primary completion provider failed, trying fallback",
		logging.String("primary", s.primary.Name()),
		logging.String("fallback", s.fallback.Name()),
		logging.Error(primaryErr))

	raw, fallbackErr := s.fallback.Complete(ctx, req)
	if fallbackErr == nil {
		suggestions, err := parseSuggestions(raw)
		if err == nil {
			return suggestions, s.fallback.Name(), nil
		}
		fallbackErr = err
	}
	if errors.Is(fallbackErr, context.DeadlineExceeded) {
		return nil, "", services.Wrap(services.ErrTimeout, "ai", "suggest",
			fmt.Sprintf("%s did not answer within %s", s.fallback.Name(), s.timeout), fallbackErr)
	}
	return nil, "", services.Wrap(services.ErrTransient, "ai", "suggest",
		fmt.Sprintf("both providers failed: %s then %s", primaryErr, fallbackErr), fallbackErr)
}

// parseSuggestions decodes the completion payload. Providers occasionally
// wrap the JSON in a markdown fence; strip it before decoding.
func parseSuggestions(raw string) (*project.Suggestions, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}
	if raw == "" {
		return nil, errors.New("empty completion payload")
	}
	var suggestions project.Suggestions
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, fmt.Errorf("parse suggestion payload: %w", err)
	}
	return &suggestions, nil
}
