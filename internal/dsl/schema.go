package dsl

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema is the JSON Schema for the DSL's recognized top-level keys
// and node-spec shape (spec §4.6's tables). It exists alongside the
// field-level structural checks in compile.go — the schema catches shape
// errors (wrong type, typo'd field name) before the graph builder runs;
// the structural pass catches graph-level problems (dangling references,
// duplicate names) a JSON Schema cannot express.
const documentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "metadata": {"type": "object"},
    "inputs": {"type": "object"},
    "output": {"type": "object"},
    "executors": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "func": {"type": "string", "minLength": 1},
          "exec_type": {"type": "string"},
          "custom_vars": {"type": "object"},
          "depends_on": {
            "type": "array",
            "items": {"type": "string"}
          }
        },
        "required": ["name", "func"],
        "additionalProperties": false
      }
    }
  },
  "required": ["executors"]
}`

var (
	schemaOnce    sync.Once
	schemaCompile *jsonschema.Schema
	schemaErr     error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("flowdag-document.json", strings.NewReader(documentSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schemaCompile, schemaErr = c.Compile("flowdag-document.json")
	})
	return schemaCompile, schemaErr
}

// validateSchema checks raw (already-decoded JSON-shaped data) against the
// document schema.
func validateSchema(raw map[string]any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	return schema.Validate(raw)
}
