package server

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// checkRequestSchema is the wire contract for POST /v1/checks.
const checkRequestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["api_key", "provider"],
  "additionalProperties": false,
  "properties": {
    "api_key": {
      "type": "string",
      "minLength": 8,
      "maxLength": 256
    },
    "provider": {
      "type": "string",
      "enum": ["auto", "openai", "anthropic", "openrouter"]
    },
    "strict_mode": {
      "type": "boolean"
    },
    "target_model": {
      "type": "string",
      "maxLength": 256
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func requestSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("check_request.json", strings.NewReader(checkRequestSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = c.Compile("check_request.json")
	})
	return compiledSchema, schemaErr
}

// validateCheckRequest validates decoded request JSON against the wire
// schema. The returned message is safe to echo to the client.
func validateCheckRequest(doc any) error {
	schema, err := requestSchema()
	if err != nil {
		return fmt.Errorf("schema unavailable: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("%s", firstLeafMessage(ve))
		}
		return err
	}
	return nil
}

// firstLeafMessage walks to the most specific validation failure so the
// client sees "api_key: length must be >= 8" rather than the root summary.
func firstLeafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := strings.TrimPrefix(ve.InstanceLocation, "/")
	if loc == "" {
		return ve.Message
	}
	return loc + ": " + ve.Message
}
