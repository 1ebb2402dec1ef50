// Package openai implements the primary completion provider on top of the
// OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"plume/internal/ai"
	"plume/internal/config"
)

const defaultModel = "gpt-4o-mini"

// Client wraps the OpenAI chat completion API as an ai.Completer.
type Client struct {
	api   *goopenai.Client
	model string
}

// Option customizes the OpenAI client.
type Option func(*Client)

// WithModel overrides the configured model.
func WithModel(model string) Option {
	return func(c *Client) {
		model = strings.TrimSpace(model)
		if model != "" {
			c.model = model
		}
	}
}

// NewClient constructs an OpenAI client from configuration.
func NewClient(cfg config.OpenAI, opts ...Option) *Client {
	apiConfig := goopenai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		apiConfig.BaseURL = strings.TrimRight(base, "/")
	}

	client := &Client{
		api:   goopenai.NewClientWithConfig(apiConfig),
		model: strings.TrimSpace(cfg.Model),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.model == "" {
		client.model = defaultModel
	}
	return client
}

// Name identifies the provider in logs and cache entries.
func (c *Client) Name() string { return "openai" }

// Complete sends one chat completion request and returns the raw content.
func (c *Client) Complete(ctx context.Context, req ai.Request) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: 0.3,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai complete: empty choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai complete: empty content")
	}
	return content, nil
}
