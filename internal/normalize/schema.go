// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// scalar accepts any JSON value that can be rendered as a single text field.
var scalar = map[string]any{
	"type": []string{"string", "number", "boolean", "null"},
}

// itemsSchema describes the array form of a reply: a list of objects whose
// known fields hold scalars. Unknown fields are allowed and ignored.
var itemsSchema = map[string]any{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": scalar,
			"answer":   scalar,
			"category": scalar,
		},
	},
}

// compileSchema compiles a schema held as a Go map.
func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
