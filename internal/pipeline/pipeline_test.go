// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trivia-cards/internal/inference"
	"github.com/pdiddy/trivia-cards/internal/normalize"
	"github.com/pdiddy/trivia-cards/internal/taxonomy"
	"github.com/pdiddy/trivia-cards/pkg/types"
)

// setupPairs writes n pairs of fake images and returns them.
func setupPairs(t *testing.T, n int) []types.CardPair {
	t.Helper()
	dir := t.TempDir()
	pairs := make([]types.CardPair, n)
	for i := range pairs {
		q := filepath.Join(dir, fmt.Sprintf("IMG_%03d.jpg", 2*i))
		a := filepath.Join(dir, fmt.Sprintf("IMG_%03d.jpg", 2*i+1))
		require.NoError(t, os.WriteFile(q, []byte("q"), 0o644))
		require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))
		pairs[i] = types.CardPair{Index: i, Question: q, Answer: a}
	}
	return pairs
}

// scriptedBackend replies by call order.
func scriptedBackend(replies ...string) (inference.Backend, *int) {
	calls := 0
	return inference.BackendFunc(func(_ context.Context, _, _ inference.Image, _ string) (string, error) {
		calls++
		if calls > len(replies) {
			return "", errors.New("no scripted reply")
		}
		return replies[calls-1], nil
	}), &calls
}

func newPipeline(t *testing.T, backend inference.Backend, identity types.IdentityStrategy, tax *taxonomy.Taxonomy, progress io.Writer) *Pipeline {
	t.Helper()
	n := 0
	norm, err := normalize.New(identity, "", normalize.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	require.NoError(t, err)

	p, err := New(Config{
		Backend:     backend,
		Normalizer:  norm,
		Taxonomy:    tax,
		Instruction: "describe",
		Progress:    progress,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return p
}

func TestRun_PreservesOrder(t *testing.T) {
	pairs := setupPairs(t, 2)
	backend, calls := scriptedBackend(
		"```json\n[{\"question\":\"Q1\",\"answer\":\"A1\",\"category\":\"Art\"},{\"question\":\"Q2\",\"answer\":\"A2\"}]\n```",
		`[{"question":"Q3","answer":"A3","category":"Sport"}]`,
	)
	var progress bytes.Buffer
	p := newPipeline(t, backend, types.IdentityPerItem, nil, &progress)

	summary, err := p.Run(context.Background(), pairs)
	require.NoError(t, err)

	assert.Equal(t, 2, *calls)
	assert.Equal(t, 2, summary.Pairs)
	assert.Equal(t, 2, summary.Done)
	assert.Zero(t, summary.Skipped)
	assert.Equal(t, []types.Record{
		{ID: "id-1", Category: "Art", Question: "Q1", Answer: "A1"},
		{ID: "id-2", Category: "Unknown", Question: "Q2", Answer: "A2"},
		{ID: "id-3", Category: "Sport", Question: "Q3", Answer: "A3"},
	}, summary.Records)

	out := progress.String()
	assert.Contains(t, out, "processing pair 0: IMG_000.jpg & IMG_001.jpg")
	assert.Contains(t, out, "done    pair 1 (1 records)")
}

func TestRun_MalformedReplySkipsPair(t *testing.T) {
	pairs := setupPairs(t, 3)
	backend, _ := scriptedBackend(
		`[{"question":"Q1","answer":"A1"}]`,
		`[{"question":`,
		`[{"question":"Q3","answer":"A3"}]`,
	)
	var progress bytes.Buffer
	p := newPipeline(t, backend, types.IdentityPerItem, nil, &progress)

	summary, err := p.Run(context.Background(), pairs)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Done)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Records, 2)
	assert.Equal(t, "Q1", summary.Records[0].Question)
	assert.Equal(t, "Q3", summary.Records[1].Question)

	require.Len(t, summary.Outcomes, 3)
	assert.Equal(t, StateSkipped, summary.Outcomes[1].State)
	assert.Equal(t, StateExtracting, summary.Outcomes[1].Stage)
	assert.Contains(t, progress.String(), "skipped pair 1:")
	assert.False(t, summary.Aborted())
}

func TestRun_NonFatalFailures(t *testing.T) {
	tests := []struct {
		name      string
		backend   inference.Backend
		breakPair bool
		wantStage State
	}{
		{
			name: "inference error",
			backend: inference.BackendFunc(func(context.Context, inference.Image, inference.Image, string) (string, error) {
				return "", errors.New("503 overloaded")
			}),
			wantStage: StateExtracting,
		},
		{
			name: "unexpected shape",
			backend: inference.BackendFunc(func(context.Context, inference.Image, inference.Image, string) (string, error) {
				return `{"status":"cannot read card"}`, nil
			}),
			wantStage: StateNormalizing,
		},
		{
			name: "missing image",
			backend: inference.BackendFunc(func(context.Context, inference.Image, inference.Image, string) (string, error) {
				return `[]`, nil
			}),
			breakPair: true,
			wantStage: StateExtracting,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := setupPairs(t, 1)
			if tt.breakPair {
				require.NoError(t, os.Remove(pairs[0].Answer))
			}
			p := newPipeline(t, tt.backend, types.IdentityPerItem, nil, nil)

			summary, err := p.Run(context.Background(), pairs)
			require.NoError(t, err)
			assert.Equal(t, 1, summary.Skipped)
			assert.Empty(t, summary.Records)
			assert.Equal(t, tt.wantStage, summary.Outcomes[0].Stage)
			assert.Error(t, summary.Outcomes[0].Err)
		})
	}
}

func TestRun_PerCardIdentityWithTaxonomy(t *testing.T) {
	tax, err := taxonomy.New("", []string{"Geography", "History", "Science"})
	require.NoError(t, err)

	reply := `[{"question":"q1","answer":"a1","category":"x"},{"question":"q2","answer":"a2"},{"question":"q3","answer":"a3"}]`
	backend, _ := scriptedBackend(reply, reply)
	pairs := setupPairs(t, 2)
	p := newPipeline(t, backend, types.IdentityPerCard, tax, nil)

	summary, err := p.Run(context.Background(), pairs)
	require.NoError(t, err)
	require.Len(t, summary.Records, 6)

	first, second := summary.Records[:3], summary.Records[3:]
	for i, r := range first {
		assert.Equal(t, first[0].ID, r.ID)
		assert.Equal(t, tax.Categories()[i], r.Category)
	}
	for _, r := range second {
		assert.Equal(t, second[0].ID, r.ID)
	}
	assert.NotEqual(t, first[0].ID, second[0].ID)
}

func TestRun_CardinalityAborts(t *testing.T) {
	categories := make([]string, 16)
	for i := range categories {
		categories[i] = fmt.Sprintf("C%d", i)
	}
	tax, err := taxonomy.New("", categories)
	require.NoError(t, err)

	items := make([]string, 16)
	for i := range items {
		items[i] = fmt.Sprintf(`{"question":"q%d","answer":"a%d"}`, i, i)
	}
	full := "[" + strings.Join(items, ",") + "]"
	short := "[" + strings.Join(items[:15], ",") + "]"

	backend, calls := scriptedBackend(full, short, full)
	pairs := setupPairs(t, 3)
	p := newPipeline(t, backend, types.IdentityPerCard, tax, nil)

	summary, err := p.Run(context.Background(), pairs)
	require.Error(t, err)

	var ce *taxonomy.CardinalityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 16, ce.Expected)
	assert.Equal(t, 15, ce.Actual)
	assert.Equal(t, 1, ce.Pair)

	assert.Equal(t, 2, *calls, "run must stop at the failing pair")
	assert.True(t, summary.Aborted())
	assert.Empty(t, summary.Records)
}

func TestRun_CancelKeepsAccumulatedRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	backend := inference.BackendFunc(func(_ context.Context, _, _ inference.Image, _ string) (string, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return fmt.Sprintf(`[{"question":"Q%d"}]`, calls), nil
	})
	pairs := setupPairs(t, 4)
	p := newPipeline(t, backend, types.IdentityPerItem, nil, nil)

	summary, err := p.Run(ctx, pairs)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
	require.Len(t, summary.Records, 2)
	assert.Equal(t, "Q1", summary.Records[0].Question)
	assert.Equal(t, "Q2", summary.Records[1].Question)
}

func TestRun_CallTimeout(t *testing.T) {
	backend := inference.BackendFunc(func(ctx context.Context, _, _ inference.Image, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	norm, err := normalize.New(types.IdentityPerItem, "")
	require.NoError(t, err)
	p, err := New(Config{
		Backend:     backend,
		Normalizer:  norm,
		Instruction: "describe",
		CallTimeout: 10 * time.Millisecond,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	summary, err := p.Run(context.Background(), setupPairs(t, 2))
	require.NoError(t, err, "a per-call timeout skips the pair without stopping the run")
	assert.Equal(t, 2, summary.Skipped)
	assert.ErrorIs(t, summary.Outcomes[0].Err, context.DeadlineExceeded)
}

func TestNew_Validation(t *testing.T) {
	norm, err := normalize.New(types.IdentityPerItem, "")
	require.NoError(t, err)
	backend, _ := scriptedBackend()

	_, err = New(Config{Normalizer: norm, Instruction: "x"})
	assert.Error(t, err)
	_, err = New(Config{Backend: backend, Instruction: "x"})
	assert.Error(t, err)
	_, err = New(Config{Backend: backend, Normalizer: norm})
	assert.Error(t, err)
}
