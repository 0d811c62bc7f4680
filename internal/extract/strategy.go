// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
)

const fence = "```"

// Strategy selects the candidate JSON text from a raw model reply. Select
// is total: it either returns the text it isolated and true, or false when
// the reply does not have the shape it looks for.
type Strategy interface {
	Name() string
	Select(raw string) (string, bool)
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc struct {
	Label string
	Fn    func(raw string) (string, bool)
}

// Name returns the strategy label used in logs and errors.
func (s StrategyFunc) Name() string { return s.Label }

// Select runs the wrapped function.
func (s StrategyFunc) Select(raw string) (string, bool) { return s.Fn(raw) }

// DefaultStrategies is the order used when an Extractor is built without
// explicit strategies.
var DefaultStrategies = []Strategy{
	JSONFence{},
	AnyFence{},
	BracketSpan{},
	Trimmed{},
}

// JSONFence takes the text between the first ```json fence and the next
// closing fence. The label match ignores case. An unclosed fence runs to
// the end of the reply.
type JSONFence struct{}

func (JSONFence) Name() string { return "json-fence" }

func (JSONFence) Select(raw string) (string, bool) {
	start := indexLabelledFence(raw, "json")
	if start < 0 {
		return "", false
	}
	body := raw[start+len(fence)+len("json"):]
	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), true
}

// AnyFence takes the contents of the first fenced block of any label. The
// info string on the opening line (e.g. "javascript") is dropped.
type AnyFence struct{}

func (AnyFence) Name() string { return "any-fence" }

func (AnyFence) Select(raw string) (string, bool) {
	start := strings.Index(raw, fence)
	if start < 0 {
		return "", false
	}
	body := raw[start+len(fence):]
	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		info := strings.TrimSpace(body[:nl])
		if info != "" && !startsJSON(info) {
			body = body[nl+1:]
		}
	}
	return strings.TrimSpace(body), true
}

// BracketSpan handles bare JSON surrounded by prose ("Here are the cards:
// [...] Hope this helps"). It applies only when the reply does not already
// begin with a JSON container, and takes the span from the first opening
// bracket to the last matching closing bracket. Bracketed prose ahead of
// the payload ("Card [1]: [...]") widens the span past the payload and the
// reply fails to decode.
type BracketSpan struct{}

func (BracketSpan) Name() string { return "bracket-span" }

func (BracketSpan) Select(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || startsJSON(trimmed) {
		return "", false
	}
	open := strings.IndexAny(trimmed, "[{")
	if open < 0 {
		return "", false
	}
	closer := "]"
	if trimmed[open] == '{' {
		closer = "}"
	}
	end := strings.LastIndex(trimmed, closer)
	if end <= open {
		return "", false
	}
	return trimmed[open : end+1], true
}

// Trimmed always applies: the reply with surrounding whitespace removed.
type Trimmed struct{}

func (Trimmed) Name() string { return "trimmed" }

func (Trimmed) Select(raw string) (string, bool) {
	return strings.TrimSpace(raw), true
}

func startsJSON(s string) bool {
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")
}

// indexLabelledFence returns the byte offset of the first fence directly
// followed by label (case-insensitive), or -1.
func indexLabelledFence(raw, label string) int {
	offset := 0
	for {
		i := strings.Index(raw[offset:], fence)
		if i < 0 {
			return -1
		}
		at := offset + i
		rest := raw[at+len(fence):]
		if len(rest) >= len(label) && strings.EqualFold(rest[:len(label)], label) {
			return at
		}
		offset = at + len(fence)
	}
}
