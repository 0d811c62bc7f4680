// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/trivia-cards/internal/export"
	"github.com/pdiddy/trivia-cards/internal/extract"
	"github.com/pdiddy/trivia-cards/internal/httputil"
	"github.com/pdiddy/trivia-cards/internal/inference"
	"github.com/pdiddy/trivia-cards/internal/locate"
	"github.com/pdiddy/trivia-cards/internal/normalize"
	"github.com/pdiddy/trivia-cards/internal/pipeline"
	"github.com/pdiddy/trivia-cards/internal/secrets"
	"github.com/pdiddy/trivia-cards/internal/taxonomy"
	"github.com/pdiddy/trivia-cards/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process <folder>",
	Short: "Extract flashcards from a folder of card photos",
	Long: `Process pairs the images in a folder (sorted by name, .jpg before .jpeg
before .png), sends each question/answer pair to a vision model, and writes
the extracted cards as a flashcard import file and a JSON backup next to the
folder.

Pairs whose reply cannot be parsed are skipped and the run continues. With a
taxonomy, every card must yield exactly one question per category; a card
that does not aborts the run without writing any file. Ctrl-C stops after
the current pair and still exports the cards extracted so far.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

// processFlagKeys maps process flags to config keys.
var processFlagKeys = map[string]string{
	"provider":         "provider",
	"model":            "model",
	"base-url":         "base_url",
	"max-tokens":       "max_tokens",
	"timeout":          "timeout",
	"http-timeout":     "http_timeout",
	"identity":         "identity",
	"default-category": "default_category",
	"taxonomy":         "taxonomy",
	"taxonomy-file":    "taxonomy_file",
	"game":             "deck.game",
	"language":         "deck.language",
	"output-anki":      "output.anki",
	"output-json":      "output.json",
	"output-xlsx":      "output.xlsx",
}

func init() {
	f := processCmd.Flags()
	f.String("api-key", "", "API key for the provider (overrides .secrets/ and the environment)")
	f.String("provider", "", "inference provider: anthropic, openai, or gemini (default anthropic)")
	f.String("model", "", "model identifier (default depends on provider)")
	f.String("base-url", "", "override the provider API endpoint")
	f.Int("max-tokens", 0, "maximum reply tokens (default 4000)")
	f.Duration("timeout", 0, "bound on one inference call (default 2m)")
	f.Duration("http-timeout", 0, "HTTP round-trip timeout (default none)")
	f.String("identity", "", "record identity: per-item or per-card (default per-card with a taxonomy, else per-item)")
	f.String("default-category", "", "category for items the model did not categorize (default Unknown)")
	f.StringSlice("taxonomy", nil, "ordered category list, comma separated")
	f.String("taxonomy-file", "", "taxonomy file (.yaml, .toml, or .json)")
	f.String("game", "", "name of the trivia game, used in the prompt")
	f.String("language", "", "language the cards are printed in, used in the prompt")
	f.String("output-anki", "", "flashcard text output (default <folder>-anki.txt next to the folder)")
	f.String("output-json", "", "JSON backup output (default <folder>-cards.json next to the folder)")
	f.String("output-xlsx", "", "optional spreadsheet output")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	if err := bindFlags(v, cmd, processFlagKeys); err != nil {
		return err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	dir := args[0]

	located, err := locate.Pairs(dir)
	if err != nil {
		return err
	}
	if located.Odd() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d images is an odd count; skipping unpaired %s\n", located.Images, located.Dropped)
		slog.Warn("locate.odd_count", "images", located.Images, "dropped", located.Dropped)
	}
	if len(located.Pairs) == 0 {
		fmt.Fprintf(out, "no input: no card images in %s\n", dir)
		return nil
	}

	tax, err := resolveTaxonomy(cfg)
	if err != nil {
		return err
	}
	identity, err := resolveIdentity(cfg, tax)
	if err != nil {
		return err
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	key, source, err := secrets.Resolve(cfg.AI.Provider, apiKey, loadedSecrets)
	if err != nil {
		return err
	}
	cfg.AI.APIKey = key
	slog.Debug("secrets.resolved", "provider", cfg.AI.Provider, "source", source)

	defaults, err := export.DefaultPaths(dir)
	if err != nil {
		return err
	}
	paths := export.Paths{Anki: cfg.Output.Anki, JSON: cfg.Output.JSON, XLSX: cfg.Output.XLSX}.WithDefaults(defaults)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, closeBackend, err := buildPipeline(ctx, cfg, tax, identity, out)
	if err != nil {
		return err
	}
	defer closeBackend()

	fmt.Fprintf(out, "Processing %d card pairs from %s\n", len(located.Pairs), dir)
	summary, runErr := p.Run(ctx, located.Pairs)

	var ce *taxonomy.CardinalityError
	if errors.As(runErr, &ce) {
		printSummary(out, summary)
		return fmt.Errorf("run aborted, no files written: %w", runErr)
	}
	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted {
		return runErr
	}

	if _, err := export.Files(paths, summary.Records, out); err != nil {
		return err
	}
	printSummary(out, summary)

	if interrupted {
		return fmt.Errorf("interrupted after %d of %d pairs", len(summary.Outcomes), summary.Pairs)
	}
	return nil
}

// buildPipeline wires the backend, prompt, normalizer, and taxonomy. The
// returned func releases the backend.
func buildPipeline(ctx context.Context, cfg types.Config, tax *taxonomy.Taxonomy, identity types.IdentityStrategy, progress io.Writer) (*pipeline.Pipeline, func(), error) {
	backend, err := inference.New(ctx, cfg.AI, httputil.NewClient(cfg.AI.HTTPConfig))
	if err != nil {
		return nil, nil, err
	}
	closeBackend := func() {
		if c, ok := backend.(io.Closer); ok {
			if err := c.Close(); err != nil {
				slog.Warn("inference.close", "err", err)
			}
		}
	}

	prompt := inference.PromptData{Game: cfg.Deck.Game, Language: cfg.Deck.Language}
	if tax != nil {
		prompt.Categories = tax.Categories()
	}
	instruction, err := inference.RenderPrompt(prompt)
	if err != nil {
		closeBackend()
		return nil, nil, err
	}

	norm, err := normalize.New(identity, cfg.DefaultCategory)
	if err != nil {
		closeBackend()
		return nil, nil, err
	}

	p, err := pipeline.New(pipeline.Config{
		Backend:     backend,
		Extractor:   extract.New(),
		Normalizer:  norm,
		Taxonomy:    tax,
		Instruction: instruction,
		CallTimeout: cfg.AI.CallTimeout,
		Progress:    progress,
		Logger:      slog.Default(),
	})
	if err != nil {
		closeBackend()
		return nil, nil, err
	}
	slog.Info("pipeline.start",
		"backend", backend.Name(),
		"identity", identity,
		"taxonomy", tax != nil,
	)
	return p, closeBackend, nil
}

// printSummary writes the final tally.
func printSummary(w io.Writer, s pipeline.Summary) {
	fmt.Fprintf(w, "\nRun summary: %d pairs, %d processed, %d skipped, %d records\n",
		s.Pairs, s.Done, s.Skipped, len(s.Records))
}
