// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inference sends card pair images to a vision model and returns
// the model's free-text reply through a provider-neutral Backend.
package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/trivia-cards/pkg/types"
)

// Default models per provider.
const (
	DefaultAnthropicModel = "claude-3-7-sonnet-20250219"
	DefaultOpenAIModel    = "gpt-4o"
	DefaultGeminiModel    = "gemini-1.5-pro"

	DefaultMaxTokens = 4000
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// Backend describes one card pair. The reply is raw model text; parsing it
// is the caller's job.
type Backend interface {
	Name() string
	Describe(ctx context.Context, question, answer Image, instruction string) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, question, answer Image, instruction string) (string, error)

// Name implements Backend.
func (f BackendFunc) Name() string { return "func" }

// Describe implements Backend.
func (f BackendFunc) Describe(ctx context.Context, question, answer Image, instruction string) (string, error) {
	return f(ctx, question, answer, instruction)
}

// New builds the backend named by cfg.Provider. client is used by the
// HTTP-based SDKs; nil means http.DefaultClient. The caller must Close the
// result when it implements io.Closer.
func New(ctx context.Context, cfg types.AIConfig, client *http.Client) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key for provider %s", cfg.Provider)
	}
	if client == nil {
		client = http.DefaultClient
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	switch cfg.Provider {
	case types.ProviderAnthropic, "":
		return NewAnthropic(cfg.APIKey, modelOr(cfg.Model, DefaultAnthropicModel), cfg.BaseURL, maxTokens, client), nil
	case types.ProviderOpenAI:
		return NewOpenAI(cfg.APIKey, modelOr(cfg.Model, DefaultOpenAIModel), cfg.BaseURL, maxTokens, client), nil
	case types.ProviderGemini:
		return NewGemini(ctx, cfg.APIKey, modelOr(cfg.Model, DefaultGeminiModel), cfg.BaseURL, maxTokens)
	default:
		return nil, fmt.Errorf("unknown provider %q (use anthropic, openai, or gemini)", cfg.Provider)
	}
}

func modelOr(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}
