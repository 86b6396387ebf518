package jsonschema

import (
	"errors"
	"strings"
	"testing"
)

const todoSchema = `{
	"type": "object",
	"properties": {
		"id": { "type": "integer" },
		"title": { "type": "string", "minLength": 1 },
		"done": { "type": "boolean" }
	},
	"required": ["id", "title"]
}`

func TestNewValidator(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		wantErr bool
	}{
		{name: "valid schema", schema: todoSchema},
		{name: "schema is not JSON", schema: `{ not json }`, wantErr: true},
		{name: "unknown type keyword", schema: `{"type": "invalid-type"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewValidator(tt.schema)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewValidator() error = nil, want error")
				}
				if !strings.Contains(err.Error(), "invalid schema") {
					t.Errorf("NewValidator() error = %q, want mention of invalid schema", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewValidator() error = %v", err)
			}
			if v == nil {
				t.Fatal("NewValidator() = nil, want validator")
			}
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		wantErrs []string
	}{
		{
			name: "conforming document",
			json: `{"id": 1, "title": "write the report", "done": false}`,
		},
		{
			name: "conforming without optional property",
			json: `{"id": 2, "title": "ship it"}`,
		},
		{
			name:     "missing required property",
			json:     `{"id": 1}`,
			wantErrs: []string{"validation error at", "missing properties", "title"},
		},
		{
			name:     "wrong type",
			json:     `{"id": "seven", "title": "x"}`,
			wantErrs: []string{"/id", "integer"},
		},
		{
			name:     "multiple violations reported together",
			json:     `{"id": "seven", "title": ""}`,
			wantErrs: []string{"/id", "/title", "; "},
		},
	}

	v, err := NewValidator(todoSchema)
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.json)
			if len(tt.wantErrs) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil, want violations")
			}
			var ve ValidationErrors
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error type = %T, want ValidationErrors", err)
			}
			for _, want := range tt.wantErrs {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() error = %q, want substring %q", err, want)
				}
			}
		})
	}
}

func TestValidator_Validate_InvalidJSON(t *testing.T) {
	v, err := NewValidator(`{"type": "object"}`)
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}

	err = v.Validate(`{ not json }`)
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("Validate() error = %q, want mention of invalid JSON", err)
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		t.Errorf("Validate() error type = %T, want a plain error for a malformed document", err)
	}
}

func TestValidate_OneShot(t *testing.T) {
	if err := Validate(`{"id": 3, "title": "ship it"}`, todoSchema); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if err := Validate(`{}`, todoSchema); err == nil {
		t.Error("Validate() error = nil, want violations")
	}
	if err := Validate(`{}`, `{ broken`); err == nil {
		t.Error("Validate() error = nil, want schema error")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	tests := []struct {
		name string
		errs ValidationErrors
		want string
	}{
		{name: "empty", errs: nil, want: ""},
		{name: "single", errs: ValidationErrors{errors.New("a")}, want: "a"},
		{name: "joined", errs: ValidationErrors{errors.New("a"), errors.New("b")}, want: "a; b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.errs.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
