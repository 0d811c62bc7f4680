// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/trivia-cards/internal/inference"
	"github.com/pdiddy/trivia-cards/internal/normalize"
	"github.com/pdiddy/trivia-cards/internal/pipeline"
	"github.com/pdiddy/trivia-cards/internal/taxonomy"
	"github.com/pdiddy/trivia-cards/pkg/types"
)

// setConfigDefaults registers the defaults every command sees.
func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("provider", string(types.ProviderAnthropic))
	v.SetDefault("max_tokens", inference.DefaultMaxTokens)
	v.SetDefault("timeout", pipeline.DefaultCallTimeout)
	v.SetDefault("default_category", normalize.DefaultCategory)
	v.SetDefault("user_agent", "trivia-cards/"+version)

	// Declared so that environment-only values reach Unmarshal.
	for _, key := range []string{"model", "base_url", "identity", "taxonomy_file", "deck.game", "deck.language", "output.anki", "output.json", "output.xlsx"} {
		v.SetDefault(key, "")
	}
}

// bindFlags binds the named flags of cmd to config keys. Binding happens
// when a command runs so that commands sharing a key do not clobber each
// other's bindings.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag --%s", flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// loadConfig unmarshals the merged flag, environment, and file settings.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading configuration: %w", err)
	}
	provider, err := types.ParseProvider(string(cfg.AI.Provider))
	if err != nil {
		return types.Config{}, err
	}
	cfg.AI.Provider = provider
	return cfg, nil
}

// resolveTaxonomy returns the configured taxonomy, or nil when the run
// keeps the model's own categories. A taxonomy file wins over an inline
// list.
func resolveTaxonomy(cfg types.Config) (*taxonomy.Taxonomy, error) {
	if cfg.TaxonomyFile != "" {
		return taxonomy.Load(cfg.TaxonomyFile)
	}
	if len(cfg.Taxonomy) > 0 {
		return taxonomy.New("", cfg.Taxonomy)
	}
	return nil, nil
}

// resolveIdentity picks the identity strategy. Unset, it follows the
// taxonomy: a taxonomy means one card pair is one physical card, so its
// records share an identifier.
func resolveIdentity(cfg types.Config, tax *taxonomy.Taxonomy) (types.IdentityStrategy, error) {
	if cfg.Identity != "" {
		return types.ParseIdentityStrategy(cfg.Identity)
	}
	if tax != nil {
		return types.IdentityPerCard, nil
	}
	return types.IdentityPerItem, nil
}
