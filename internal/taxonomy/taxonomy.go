// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package taxonomy holds the ordered category list a deck is printed with
// and reconciles extracted records against it by position.
package taxonomy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trivia-cards/pkg/types"
)

// ErrEmpty is returned for a taxonomy without categories.
var ErrEmpty = errors.New("taxonomy has no categories")

// Taxonomy is an ordered, immutable list of unique category names.
type Taxonomy struct {
	name       string
	categories []string
}

// File is the on-disk shape of a taxonomy in YAML, TOML, or JSON.
type File struct {
	Name       string   `json:"name" yaml:"name" toml:"name"`
	Categories []string `json:"categories" yaml:"categories" toml:"categories"`
}

// New validates categories and builds a Taxonomy. Names are trimmed; blank
// names, duplicates, and names containing export separators or line breaks
// are rejected.
func New(name string, categories []string) (*Taxonomy, error) {
	if len(categories) == 0 {
		return nil, ErrEmpty
	}
	seen := make(map[string]int, len(categories))
	out := make([]string, len(categories))
	for i, c := range categories {
		c = strings.TrimSpace(c)
		switch {
		case c == "":
			return nil, fmt.Errorf("category %d is blank", i+1)
		case strings.ContainsAny(c, types.FieldSeparator+"\r\n"):
			return nil, fmt.Errorf("category %d (%q) contains a separator or line break", i+1, c)
		}
		if prev, dup := seen[c]; dup {
			return nil, fmt.Errorf("category %q repeated at positions %d and %d", c, prev+1, i+1)
		}
		seen[c] = i
		out[i] = c
	}
	return &Taxonomy{name: strings.TrimSpace(name), categories: out}, nil
}

// Load reads a taxonomy file. The format follows the extension: .yaml or
// .yml, .toml, or .json.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy: %w", err)
	}
	f, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	name := f.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return New(name, f.Categories)
}

// Parse decodes taxonomy data in the format named by ext.
func Parse(ext string, data []byte) (File, error) {
	var f File
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".json":
		err = json.Unmarshal(data, &f)
	default:
		return File{}, fmt.Errorf("unsupported taxonomy format %q (use .yaml, .toml, or .json)", ext)
	}
	if err != nil {
		return File{}, fmt.Errorf("decoding taxonomy: %w", err)
	}
	return f, nil
}

// Name returns the taxonomy name, which may be empty for inline lists.
func (t *Taxonomy) Name() string { return t.name }

// Len returns the number of categories.
func (t *Taxonomy) Len() int { return len(t.categories) }

// Categories returns a copy of the ordered category list.
func (t *Taxonomy) Categories() []string {
	return append([]string(nil), t.categories...)
}

// File returns the serializable form of t.
func (t *Taxonomy) File() File {
	return File{Name: t.name, Categories: t.Categories()}
}
