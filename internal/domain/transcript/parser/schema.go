package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// courseItemSchema describes one element of the array the vision model
// returns. Models emit numbers as strings often enough that units and year
// accept both.
var courseItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"code":     map[string]any{"type": "string", "minLength": 1},
		"title":    map[string]any{"type": []string{"string", "null"}},
		"grade":    map[string]any{"type": []string{"string", "null"}},
		"units":    map[string]any{"type": []string{"number", "string", "null"}},
		"semester": map[string]any{"type": []string{"string", "null"}},
		"year":     map[string]any{"type": []string{"number", "string", "null"}},
	},
	"required": []string{"code"},
}

func compileSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// validateItem checks raw against the schema and returns the decoded value.
func validateItem(schema *jsonschema.Schema, raw json.RawMessage) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("item does not match schema: %w", err)
	}
	return v.(map[string]any), nil
}
