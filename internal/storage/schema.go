package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// sessionDocSchema is the structural contract for a persisted user document.
// It is deliberately loose about leaf values — the Go types own those — but
// catches the corruption classes that actually happen to stored JSON:
// wrong-typed containers and truncated documents.
var sessionDocSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{"type": "string"},
		"profile": map[string]any{
			"type": []any{"object", "null"},
			"properties": map[string]any{
				"child_name":      map[string]any{"type": "string"},
				"age":             map[string]any{"type": "integer"},
				"grade":           map[string]any{"type": "string"},
				"guardian_phones": map[string]any{"type": "array", "maxItems": 2},
				"timezone":        map[string]any{"type": "string"},
				"weekly_schedule": map[string]any{"type": "object"},
			},
		},
		"onboarding":  map[string]any{"type": []any{"object", "null"}},
		"cursors":     map[string]any{"type": "object"},
		"pending":     map[string]any{"type": "object"},
		"history":     map[string]any{"type": "object"},
		"daily_flags": map[string]any{"type": "object"},
		"streak":      map[string]any{"type": "object"},
		"reading":     map[string]any{"type": []any{"object", "null"}},
	},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// validateSessionDoc checks a raw persisted document against the schema.
func validateSessionDoc(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compileOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value, not raw bytes.
		defBytes, err := json.Marshal(sessionDocSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://session-doc.json"
		if err := c.AddResource(url, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(url)
	})
	if compileErr != nil {
		return fmt.Errorf("compile session schema: %w", compileErr)
	}

	if err := compiledSchema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
