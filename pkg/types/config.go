// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// HTTPConfig holds shared HTTP settings for the inference SDK clients.
type HTTPConfig struct {
	// Timeout bounds a single HTTP round trip. Zero means no client timeout;
	// the per-pair context deadline still applies.
	Timeout time.Duration `json:"http_timeout" yaml:"http_timeout" mapstructure:"http_timeout"`

	// UserAgent is sent with every request (e.g. "trivia-cards/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Provider names an inference service.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
)

// ParseProvider maps a configured provider name to a Provider. An empty
// name selects Anthropic.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderAnthropic, nil
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini:
		return p, nil
	}
	return "", fmt.Errorf("unknown provider %q: use anthropic, openai, or gemini", s)
}

// AIConfig holds settings for the vision model call.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the backend: anthropic, openai, or gemini.
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier passed to the provider.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the credential. Resolved at startup, never written to disk.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint (proxies, local gateways).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxTokens caps the length of the reply (default 4000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// CallTimeout bounds one inference call for one pair (default 2m).
	CallTimeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// DeckConfig describes the cards being photographed; it only feeds the prompt.
type DeckConfig struct {
	// Game is the name of the trivia game printed on the cards.
	Game string `json:"game" yaml:"game" mapstructure:"game"`

	// Language is the language the cards are printed in.
	Language string `json:"language" yaml:"language" mapstructure:"language"`
}

// OutputConfig holds export destinations. Empty paths fall back to files
// next to the input directory.
type OutputConfig struct {
	Anki string `json:"anki" yaml:"anki" mapstructure:"anki"`
	JSON string `json:"json" yaml:"json" mapstructure:"json"`
	XLSX string `json:"xlsx,omitempty" yaml:"xlsx,omitempty" mapstructure:"xlsx"`
}

// Config is the full run configuration as assembled from flags, the config
// file, and the environment.
type Config struct {
	AI AIConfig `json:"ai" yaml:"ai" mapstructure:",squash"`

	Deck DeckConfig `json:"deck" yaml:"deck" mapstructure:"deck"`

	Output OutputConfig `json:"output" yaml:"output" mapstructure:"output"`

	// Identity selects per-item or per-card identifiers. Empty means
	// per-card when a taxonomy is configured and per-item otherwise.
	Identity string `json:"identity" yaml:"identity" mapstructure:"identity"`

	// DefaultCategory fills records whose reply carried no category.
	DefaultCategory string `json:"default_category" yaml:"default_category" mapstructure:"default_category"`

	// Taxonomy is an inline ordered category list.
	Taxonomy []string `json:"taxonomy,omitempty" yaml:"taxonomy,omitempty" mapstructure:"taxonomy"`

	// TaxonomyFile points to a YAML, TOML, or JSON taxonomy file. It wins
	// over the inline list.
	TaxonomyFile string `json:"taxonomy_file,omitempty" yaml:"taxonomy_file,omitempty" mapstructure:"taxonomy_file"`
}
