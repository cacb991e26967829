package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
)

// documentSchema constrains the shape of loaded configuration documents.
// Unknown top-level sections are allowed so that collaborator layers can
// carry their own settings in the same file.
const documentSchema = `{
  "type": "object",
  "properties": {
    "sla": {
      "type": "object",
      "properties": {
        "rules": {
          "type": "object",
          "additionalProperties": {"type": "number"}
        }
      }
    },
    "categorization": {
      "type": "object",
      "properties": {
        "rules": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["category", "keywords"],
            "properties": {
              "category": {"type": "string"},
              "keywords": {"type": "array", "items": {"type": "string"}}
            }
          }
        }
      }
    },
    "quality": {
      "type": "object",
      "properties": {
        "min_description_length": {"type": "integer", "minimum": 0},
        "max_reassignment_threshold": {"type": "integer", "minimum": 0},
        "on_hold_threshold_hours": {"type": "number", "minimum": 0}
      }
    },
    "patterns": {
      "type": "object",
      "properties": {
        "min_occurrences": {"type": "integer", "minimum": 1}
      }
    }
  }
}`

// Validate checks the document against the embedded schema. Returns nil
// when the document conforms.
func (c *Config) Validate(ctx context.Context) error {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(documentSchema), rs); err != nil {
		return fmt.Errorf("parsing config schema: %w", err)
	}

	// The document may hold typed values (default rule structs); a JSON
	// round-trip flattens them to what the schema expects.
	docJSON, err := json.Marshal(c.doc)
	if err != nil {
		return fmt.Errorf("marshaling config document: %w", err)
	}

	keyErrs, err := rs.ValidateBytes(ctx, docJSON)
	if err != nil {
		return fmt.Errorf("validating config document: %w", err)
	}
	if len(keyErrs) > 0 {
		msgs := make([]string, len(keyErrs))
		for i, keyErr := range keyErrs {
			msgs[i] = keyErr.Error()
		}
		return fmt.Errorf("invalid config document: %s", strings.Join(msgs, "; "))
	}
	return nil
}
