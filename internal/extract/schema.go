package extract

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"noiflow/internal/domain"
)

// recordSchema builds the JSON Schema for a model response: every field of
// the record must be present, typed number or null, with no extra keys.
func recordSchema() string {
	props := make([]string, len(domain.AllFields))
	required := make([]string, len(domain.AllFields))
	for i, f := range domain.AllFields {
		props[i] = fmt.Sprintf("%q: {\"type\": [\"number\", \"null\"]}", f)
		required[i] = fmt.Sprintf("%q", f)
	}
	return fmt.Sprintf(`{
  "type": "object",
  "properties": {%s},
  "required": [%s],
  "additionalProperties": false
}`, strings.Join(props, ", "), strings.Join(required, ", "))
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// compileSchema compiles the record schema once per process.
func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("record.json", strings.NewReader(recordSchema())); err != nil {
			schemaErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("record.json")
	})
	return compiledSchema, schemaErr
}

// validateAgainstSchema checks a decoded model response against the record
// schema. Violations wrap domain.ErrSchemaMismatch so the engine can decide
// to retry.
func validateAgainstSchema(decoded map[string]interface{}) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaMismatch, err)
	}
	return nil
}
