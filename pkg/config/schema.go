package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON string

// validate checks a loaded config document against the embedded schema so
// typos like an unknown detector name or a string worker count fail at
// load time with a pointed message.
func validate(doc map[string]any) error {
	compiler := jsonschema.NewCompiler()
	raw, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return fmt.Errorf("parse config schema: %w", err)
	}
	if err := compiler.AddResource("vestige.schema.json", raw); err != nil {
		return fmt.Errorf("register config schema: %w", err)
	}
	schema, err := compiler.Compile("vestige.schema.json")
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	if err := schema.Validate(normalize(doc)); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// normalize converts koanf's raw map into plain JSON-shaped values the
// validator understands.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}
