// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trivia-cards/internal/taxonomy"
	"github.com/pdiddy/trivia-cards/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "trivia-cards.yaml", `provider: OpenAI
model: gpt-4o-mini
timeout: 45s
deck:
  game: Bezzerwizzer
  language: Norwegian
taxonomy:
  - Geography
  - History
output:
  json: backup.json
`)

	v := viper.New()
	setConfigDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, types.ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 45*time.Second, cfg.AI.CallTimeout)
	assert.Equal(t, 4000, cfg.AI.MaxTokens)
	assert.Equal(t, "trivia-cards/dev", cfg.AI.UserAgent)
	assert.Equal(t, "Bezzerwizzer", cfg.Deck.Game)
	assert.Equal(t, "Norwegian", cfg.Deck.Language)
	assert.Equal(t, []string{"Geography", "History"}, cfg.Taxonomy)
	assert.Equal(t, "backup.json", cfg.Output.JSON)
	assert.Equal(t, "Unknown", cfg.DefaultCategory)
}

func TestLoadConfig_Provider(t *testing.T) {
	v := viper.New()
	setConfigDefaults(v)

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.ProviderAnthropic, cfg.AI.Provider)

	v.Set("provider", " Gemini ")
	cfg, err = loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.ProviderGemini, cfg.AI.Provider)

	v.Set("provider", "foo")
	_, err = loadConfig(v)
	assert.ErrorContains(t, err, `unknown provider "foo"`)
}

func TestResolveTaxonomy(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "deck.yaml", "name: Deck\ncategories: [Art, Sport]\n")

	tax, err := resolveTaxonomy(types.Config{})
	require.NoError(t, err)
	assert.Nil(t, tax)

	tax, err = resolveTaxonomy(types.Config{Taxonomy: []string{"A", "B", "C"}})
	require.NoError(t, err)
	assert.Equal(t, 3, tax.Len())

	tax, err = resolveTaxonomy(types.Config{Taxonomy: []string{"ignored"}, TaxonomyFile: file})
	require.NoError(t, err)
	assert.Equal(t, []string{"Art", "Sport"}, tax.Categories())

	_, err = resolveTaxonomy(types.Config{Taxonomy: []string{"A", "A"}})
	assert.Error(t, err)
}

func TestResolveIdentity(t *testing.T) {
	tax, err := taxonomy.New("", []string{"A"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		cfg     types.Config
		tax     *taxonomy.Taxonomy
		want    types.IdentityStrategy
		wantErr bool
	}{
		{name: "default without taxonomy", want: types.IdentityPerItem},
		{name: "default with taxonomy", tax: tax, want: types.IdentityPerCard},
		{name: "explicit wins", cfg: types.Config{Identity: "per-item"}, tax: tax, want: types.IdentityPerItem},
		{name: "alias", cfg: types.Config{Identity: "pair"}, want: types.IdentityPerCard},
		{name: "invalid", cfg: types.Config{Identity: "random"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveIdentity(tt.cfg, tt.tax)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunPairs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"IMG_1.jpg", "IMG_2.jpg", "IMG_3.jpg"} {
		writeFile(t, dir, name, "img")
	}

	var out bytes.Buffer
	pairsCmd.SetOut(&out)
	t.Cleanup(func() { pairsCmd.SetOut(nil) })

	require.NoError(t, runPairs(pairsCmd, []string{dir}))
	assert.Contains(t, out.String(), "IMG_1.jpg")
	assert.Contains(t, out.String(), "3 images, 1 pairs")
	assert.Contains(t, out.String(), "unpaired (skipped): IMG_3.jpg")
}
