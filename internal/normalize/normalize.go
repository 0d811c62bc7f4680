// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns a decoded model reply into records. It accepts
// the array form the prompt asks for as well as the object wrappers models
// tend to produce anyway, applies field defaults, and stamps identity
// according to the configured strategy.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdiddy/trivia-cards/pkg/types"
)

// DefaultCategory is used when an item has no category and none is configured.
const DefaultCategory = "Unknown"

// FallbackKeys are the object keys searched, in order, for a nested item
// array when a reply is an object instead of an array.
var FallbackKeys = []string{"cards", "questions"}

// ErrUnexpectedShape is returned for replies that cannot be read as items.
var ErrUnexpectedShape = errors.New("unexpected reply shape")

// Normalizer converts decoded replies into records. One Normalize call
// corresponds to one card pair.
type Normalizer struct {
	identity        types.IdentityStrategy
	defaultCategory string
	newID           func() string
	schema          *jsonschema.Schema
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithIDGenerator replaces the UUID generator, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(n *Normalizer) { n.newID = fn }
}

// New builds a Normalizer. An empty defaultCategory falls back to
// DefaultCategory.
func New(identity types.IdentityStrategy, defaultCategory string, opts ...Option) (*Normalizer, error) {
	switch identity {
	case types.IdentityPerItem, types.IdentityPerCard:
	default:
		return nil, fmt.Errorf("unknown identity strategy %q", identity)
	}
	if defaultCategory = types.NeutralizeField(defaultCategory); defaultCategory == "" {
		defaultCategory = DefaultCategory
	}

	schema, err := compileSchema("items.json", itemsSchema)
	if err != nil {
		return nil, err
	}

	n := &Normalizer{
		identity:        identity,
		defaultCategory: defaultCategory,
		newID:           uuid.NewString,
		schema:          schema,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Identity reports the configured identity strategy.
func (n *Normalizer) Identity() types.IdentityStrategy { return n.identity }

// Normalize converts one decoded reply into records.
func (n *Normalizer) Normalize(v any) ([]types.Record, error) {
	items, err := n.Items(v)
	if err != nil {
		return nil, err
	}
	return n.Records(items), nil
}

// Items reads the extracted items out of a decoded reply. Field values are
// rendered as text and neutralized; no defaults are applied yet.
func (n *Normalizer) Items(v any) ([]types.ExtractedItem, error) {
	seq, err := sequence(v)
	if err != nil {
		return nil, err
	}
	if err := n.schema.Validate(seq); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}

	items := make([]types.ExtractedItem, 0, len(seq))
	for _, el := range seq {
		obj := el.(map[string]any)
		category := types.NeutralizeField(text(obj["category"]))
		items = append(items, types.ExtractedItem{
			Question:    types.NeutralizeField(text(obj["question"])),
			Answer:      types.NeutralizeField(text(obj["answer"])),
			Category:    category,
			HasCategory: category != "",
		})
	}
	return items, nil
}

// Records applies the default category and stamps identity.
func (n *Normalizer) Records(items []types.ExtractedItem) []types.Record {
	if len(items) == 0 {
		return nil
	}

	var cardID string
	if n.identity == types.IdentityPerCard {
		cardID = n.newID()
	}

	records := make([]types.Record, len(items))
	for i, it := range items {
		id := cardID
		if id == "" {
			id = n.newID()
		}
		category := it.Category
		if !it.HasCategory || category == "" {
			category = n.defaultCategory
		}
		records[i] = types.Record{
			ID:       id,
			Category: category,
			Question: it.Question,
			Answer:   it.Answer,
		}
	}
	return records
}

// sequence finds the item array inside a decoded reply.
func sequence(v any) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		for _, key := range FallbackKeys {
			if arr, ok := t[key].([]any); ok {
				return arr, nil
			}
		}
		_, hasQ := t["question"]
		_, hasA := t["answer"]
		if hasQ || hasA {
			return []any{t}, nil
		}
		return nil, fmt.Errorf("object has no item array or item fields: %w", ErrUnexpectedShape)
	case nil:
		return nil, fmt.Errorf("null reply: %w", ErrUnexpectedShape)
	default:
		return nil, fmt.Errorf("reply is %T, want array or object: %w", v, ErrUnexpectedShape)
	}
}

// text renders a scalar JSON value as a field string.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
