// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract isolates and decodes the JSON payload embedded in a
// model's free-text reply. Replies arrive fenced as ```json blocks, fenced
// without a label, wrapped in prose, or bare; each shape is handled by one
// Strategy and the strategies are tried in order.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoPayload is returned when the selected candidate text is empty.
var ErrNoPayload = errors.New("no JSON payload in reply")

// ParseError reports a reply that could not be decoded. Raw keeps the full
// reply for diagnosis.
type ParseError struct {
	Strategy string
	Raw      string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing model reply (strategy %s): %v", e.Strategy, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Payload is a decoded reply. Value holds the generic JSON tree with
// numbers kept as json.Number.
type Payload struct {
	Value    any
	Strategy string
	Text     string
}

// Extractor runs an ordered list of strategies over a reply. The first
// strategy that applies selects the candidate text; later strategies are
// not consulted even if decoding fails.
type Extractor struct {
	strategies []Strategy
}

// New builds an Extractor. With no arguments it uses DefaultStrategies.
func New(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	return &Extractor{strategies: strategies}
}

// Strategies returns the strategy names in the order they are tried.
func (e *Extractor) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// Extract selects and decodes the JSON payload of raw. Every failure is a
// *ParseError.
func (e *Extractor) Extract(raw string) (Payload, error) {
	for _, s := range e.strategies {
		text, ok := s.Select(raw)
		if !ok {
			continue
		}
		v, err := decode(text)
		if err != nil {
			return Payload{}, &ParseError{Strategy: s.Name(), Raw: raw, Err: err}
		}
		return Payload{Value: v, Strategy: s.Name(), Text: text}, nil
	}
	return Payload{}, &ParseError{Strategy: "none", Raw: raw, Err: ErrNoPayload}
}

// decode parses exactly one JSON value from text.
func decode(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoPayload
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("unexpected end of JSON input: %w", io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}
