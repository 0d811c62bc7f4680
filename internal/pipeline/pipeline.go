// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives card pairs through inference, extraction,
// normalization, and optional category reconciliation, one pair at a time.
//
// Per-pair failures (unreadable image, inference error, unparseable reply,
// unexpected reply shape) skip the pair and the run continues. A taxonomy
// cardinality mismatch aborts the whole run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pdiddy/trivia-cards/internal/extract"
	"github.com/pdiddy/trivia-cards/internal/inference"
	"github.com/pdiddy/trivia-cards/internal/normalize"
	"github.com/pdiddy/trivia-cards/internal/taxonomy"
	"github.com/pdiddy/trivia-cards/pkg/types"
)

// DefaultCallTimeout bounds one inference call when Config leaves it unset.
const DefaultCallTimeout = 2 * time.Minute

// State is the processing state of one card pair.
type State string

const (
	StatePending     State = "pending"
	StateExtracting  State = "extracting"
	StateNormalizing State = "normalizing"
	StateReconciling State = "reconciling"
	StateDone        State = "done"
	StateSkipped     State = "skipped"
	StateAborted     State = "aborted"
)

// PairOutcome records what happened to one pair.
type PairOutcome struct {
	Pair  types.CardPair
	State State

	// Stage is the state the pair was in when it failed.
	Stage State

	Records int
	Err     error
}

// Summary holds the result of a run. Records are in pair order, and in
// reply order within a pair.
type Summary struct {
	Pairs    int
	Done     int
	Skipped  int
	Records  []types.Record
	Outcomes []PairOutcome
}

// Aborted reports whether the run stopped on a fatal error.
func (s Summary) Aborted() bool {
	for _, o := range s.Outcomes {
		if o.State == StateAborted {
			return true
		}
	}
	return false
}

// Config wires the collaborators of a Pipeline.
type Config struct {
	Backend    inference.Backend
	Extractor  *extract.Extractor
	Normalizer *normalize.Normalizer

	// Taxonomy enables positional category reconciliation. Nil keeps the
	// categories reported by the model.
	Taxonomy *taxonomy.Taxonomy

	// Instruction is the prompt sent with every pair.
	Instruction string

	// CallTimeout bounds each inference call. Negative disables the bound.
	CallTimeout time.Duration

	// Progress receives one human-readable line per pair. Nil discards.
	Progress io.Writer

	Logger *slog.Logger
}

// Pipeline processes card pairs sequentially.
type Pipeline struct {
	cfg Config
}

// New validates cfg and fills defaults.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Backend == nil {
		return nil, errors.New("pipeline: no inference backend")
	}
	if cfg.Normalizer == nil {
		return nil, errors.New("pipeline: no normalizer")
	}
	if cfg.Instruction == "" {
		return nil, errors.New("pipeline: empty instruction")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = extract.New()
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.Progress == nil {
		cfg.Progress = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{cfg: cfg}, nil
}

// Run processes pairs in order. A *taxonomy.CardinalityError stops the run
// and the returned Summary carries no records. When ctx is cancelled the
// loop stops and Run returns the records accumulated so far with ctx's
// error, so callers can still flush them.
func (p *Pipeline) Run(ctx context.Context, pairs []types.CardPair) (Summary, error) {
	w := p.cfg.Progress
	log := p.cfg.Logger
	summary := Summary{Pairs: len(pairs)}

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			log.Warn("pipeline.interrupted", "next_pair", pair.Index, "records", len(summary.Records))
			return summary, err
		}

		fmt.Fprintf(w, "processing pair %d: %s & %s\n", pair.Index, filepath.Base(pair.Question), filepath.Base(pair.Answer))

		records, outcome := p.processPair(ctx, pair)
		summary.Outcomes = append(summary.Outcomes, outcome)

		switch outcome.State {
		case StateDone:
			summary.Done++
			summary.Records = append(summary.Records, records...)
			fmt.Fprintf(w, "done    pair %d (%d records)\n", pair.Index, len(records))
		case StateAborted:
			fmt.Fprintf(w, "aborted pair %d: %v\n", pair.Index, outcome.Err)
			log.Error("pipeline.aborted", "pair", pair.Index, "err", outcome.Err)
			summary.Records = nil
			return summary, outcome.Err
		default:
			summary.Skipped++
			fmt.Fprintf(w, "skipped pair %d: %v\n", pair.Index, outcome.Err)
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
		}
	}

	log.Info("pipeline.complete",
		"pairs", summary.Pairs,
		"done", summary.Done,
		"skipped", summary.Skipped,
		"records", len(summary.Records),
	)
	return summary, nil
}

// processPair moves one pair through the state machine.
func (p *Pipeline) processPair(ctx context.Context, pair types.CardPair) ([]types.Record, PairOutcome) {
	log := p.cfg.Logger.With("pair", pair.Index)
	outcome := PairOutcome{Pair: pair, State: StatePending}

	skip := func(stage State, err error, attrs ...any) ([]types.Record, PairOutcome) {
		outcome.State = StateSkipped
		outcome.Stage = stage
		outcome.Err = err
		log.Warn("pipeline.pair.skipped", append([]any{"stage", stage, "err", err}, attrs...)...)
		return nil, outcome
	}

	outcome.State = StateExtracting
	question, err := inference.LoadImage(pair.Question)
	if err != nil {
		return skip(StateExtracting, err)
	}
	answer, err := inference.LoadImage(pair.Answer)
	if err != nil {
		return skip(StateExtracting, err)
	}

	raw, err := p.describe(ctx, question, answer)
	if err != nil {
		return skip(StateExtracting, fmt.Errorf("inference (%s): %w", p.cfg.Backend.Name(), err))
	}

	payload, err := p.cfg.Extractor.Extract(raw)
	if err != nil {
		return skip(StateExtracting, err, "raw", raw)
	}
	log.Debug("pipeline.pair.extracted", "strategy", payload.Strategy)

	outcome.State = StateNormalizing
	records, err := p.cfg.Normalizer.Normalize(payload.Value)
	if err != nil {
		return skip(StateNormalizing, err, "raw", raw)
	}

	if p.cfg.Taxonomy != nil {
		outcome.State = StateReconciling
		records, err = p.cfg.Taxonomy.Reconcile(pair.Index, records)
		if err != nil {
			outcome.State = StateAborted
			outcome.Stage = StateReconciling
			outcome.Err = err
			log.Debug("pipeline.pair.raw", "raw", raw)
			return nil, outcome
		}
	}

	outcome.State = StateDone
	outcome.Records = len(records)
	log.Info("pipeline.pair.done", "records", len(records))
	return records, outcome
}

// describe calls the backend under the per-call timeout.
func (p *Pipeline) describe(ctx context.Context, question, answer inference.Image) (string, error) {
	if p.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.CallTimeout)
		defer cancel()
	}
	start := time.Now()
	raw, err := p.cfg.Backend.Describe(ctx, question, answer, p.cfg.Instruction)
	p.cfg.Logger.Debug("inference.request",
		"backend", p.cfg.Backend.Name(),
		"question", question.Name,
		"answer", answer.Name,
		"elapsed_ms", time.Since(start).Milliseconds(),
		"ok", err == nil,
	)
	return raw, err
}
