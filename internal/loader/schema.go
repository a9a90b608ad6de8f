// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package loader

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// schemaCache holds the compiled schema to avoid recompilation.
var schemaCache *jschema.Schema

// GenerateSchema generates a JSON Schema from the Descriptor struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Descriptor{})

	schema.ID = jsonschema.ID(GetSchemaID())
	schema.Title = "Plugkit Module Descriptor"
	schema.Description = "Schema for plugin.yaml descriptor files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Hint("failed to marshal schema").Wrap(err)
	}
	return data, nil
}

// ValidateSchema validates YAML data against the descriptor JSON Schema.
// Failures carry the METADATA_ERROR code.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return oops.Code("METADATA_ERROR").New("descriptor data is empty")
	}

	// Parse YAML to generic interface for validation
	var yamlData any
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return oops.Code("METADATA_ERROR").Hint("invalid YAML").Wrap(err)
	}

	// Convert YAML to JSON-compatible types (yaml.Unmarshal uses map[string]any)
	jsonData := convertToJSONTypes(yamlData)

	sch, err := getCompiledSchema()
	if err != nil {
		return oops.Hint("failed to compile schema").Wrap(err)
	}

	if err := sch.Validate(jsonData); err != nil {
		return oops.Code("METADATA_ERROR").Hint("schema validation failed").Wrap(err)
	}

	return nil
}

// getCompiledSchema returns the cached compiled schema or compiles it.
func getCompiledSchema() (*jschema.Schema, error) {
	if schemaCache != nil {
		return schemaCache, nil
	}

	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, oops.Hint("failed to parse schema JSON").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, oops.Hint("failed to add schema resource").Wrap(err)
	}

	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, oops.Hint("failed to compile schema").Wrap(err)
	}

	schemaCache = sch
	return sch, nil
}

// convertToJSONTypes converts YAML-parsed data to JSON-compatible types.
// YAML uses map[string]any which is compatible, but we need to handle
// nested structures recursively.
func convertToJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = convertToJSONTypes(v)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = convertToJSONTypes(v)
		}
		return result
	case string, int, int64, float64, bool, nil:
		return val
	default:
		// For other types, try to convert via JSON round-trip
		if b, err := json.Marshal(val); err == nil {
			var result any
			if err := json.Unmarshal(b, &result); err == nil {
				return result
			}
		}
		return val
	}
}

// ResetSchemaCache clears the cached schema. Used for testing.
func ResetSchemaCache() {
	schemaCache = nil
}

// GetSchemaID returns the schema $id for use in plugin.yaml files.
func GetSchemaID() string {
	return "https://plugkit.dev/schemas/plugin.schema.json"
}
