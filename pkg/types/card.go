// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the trivia-cards pipeline:
// card pairs located on disk, items extracted from a model reply, and the
// canonical records that are exported as flashcards.
package types

import (
	"fmt"
	"strings"
)

// CardPair is one physical card: the photographed question face and the
// photographed answer face.
type CardPair struct {
	// Index is the zero-based position of the pair in the sorted listing.
	Index int `json:"index" yaml:"index"`

	// Question is the path to the question-face image.
	Question string `json:"question" yaml:"question"`

	// Answer is the path to the answer-face image.
	Answer string `json:"answer" yaml:"answer"`
}

// ExtractedItem is one question/answer unit parsed from a model reply,
// before identity and category are finalized.
type ExtractedItem struct {
	Question string
	Answer   string
	Category string

	// HasCategory reports whether the model supplied a non-blank category.
	HasCategory bool
}

// Record is the canonical exported entity. The JSON keys and their order
// match the existing JSON backups, which is why ID serializes as card_id.
type Record struct {
	ID       string `json:"card_id" yaml:"card_id"`
	Category string `json:"category" yaml:"category"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// IdentityStrategy decides whether each fact or each physical card gets a
// unique identifier.
type IdentityStrategy string

const (
	// IdentityPerItem mints one identifier per extracted item.
	IdentityPerItem IdentityStrategy = "per-item"

	// IdentityPerCard mints one identifier per card pair and shares it
	// across every record derived from that pair.
	IdentityPerCard IdentityStrategy = "per-card"
)

// ParseIdentityStrategy accepts the canonical names plus a few spellings
// people type on the command line.
func ParseIdentityStrategy(s string) (IdentityStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "per-item", "item", "per_item", "fact", "per-fact":
		return IdentityPerItem, nil
	case "per-card", "card", "per_card", "pair", "per-pair":
		return IdentityPerCard, nil
	}
	return "", fmt.Errorf("unknown identity strategy %q: use per-item or per-card", s)
}

// Field separators of the flashcard text format. They must never survive
// inside a record field.
const (
	FieldSeparator   = ";"
	SeparatorReplace = ","
)

// NeutralizeField trims s and rewrites characters that would break the
// line- and semicolon-delimited export format. It is idempotent.
func NeutralizeField(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\n' }), " ")
	s = strings.ReplaceAll(s, FieldSeparator, SeparatorReplace)
	return strings.TrimSpace(s)
}
