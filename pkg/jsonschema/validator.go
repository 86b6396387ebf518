// Package jsonschema validates JSON documents against JSON Schema documents.
// Schemas are compiled once into a Validator and reused across validations,
// which fits riposte's per-route response schemas.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors is the flattened list of schema violations found in one
// document.
type ValidationErrors []error

// Error implements the error interface for ValidationErrors.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validator wraps a compiled JSON Schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles a JSON Schema document. Compilation happens once;
// the returned Validator is safe for concurrent use.
func NewValidator(schemaStr string) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schemaStr)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks a JSON document against the schema. It returns nil when
// the document conforms, a ValidationErrors list of every violation when it
// does not, and a plain error when the document is not valid JSON at all.
func (v *Validator) Validate(jsonStr string) error {
	var doc interface{}
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	if validationErr, ok := err.(*jsonschema.ValidationError); ok {
		return flatten(validationErr)
	}
	return err
}

// Validate is the one-shot convenience: compile schemaStr and validate
// jsonStr against it.
func Validate(jsonStr, schemaStr string) error {
	v, err := NewValidator(schemaStr)
	if err != nil {
		return err
	}
	return v.Validate(jsonStr)
}

// flatten walks the nested causes of a violation into a single list.
func flatten(err *jsonschema.ValidationError) ValidationErrors {
	var errors ValidationErrors
	if err.Message != "" {
		errors = append(errors, fmt.Errorf("validation error at %s: %s", err.InstanceLocation, err.Message))
	}
	for _, cause := range err.Causes {
		errors = append(errors, flatten(cause)...)
	}
	return errors
}
