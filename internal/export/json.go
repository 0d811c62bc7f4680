// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pdiddy/trivia-cards/pkg/types"
)

// Document is the JSON backup layout.
type Document struct {
	Questions []types.Record `json:"questions"`
}

// WriteJSON writes records as an indented JSON document. Non-ASCII and
// HTML-significant characters are written literally.
func WriteJSON(w io.Writer, records []types.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if records == nil {
		records = []types.Record{}
	}
	if err := enc.Encode(Document{Questions: records}); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ReadJSON reads a JSON backup written by WriteJSON.
func ReadJSON(r io.Reader) ([]types.Record, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding JSON backup: %w", err)
	}
	return doc.Questions, nil
}
