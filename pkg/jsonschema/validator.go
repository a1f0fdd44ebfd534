package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	yeahttp "github.com/wesleyorama2/yea/http"
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
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

// Schema is a compiled JSON Schema.
type Schema struct {
	schema *jsonschema.Schema
}

// Compile compiles a schema document held in memory.
func Compile(schemaStr string) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	registerFormats(compiler)

	if err := compiler.AddResource("schema.json", strings.NewReader(schemaStr)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: schema}, nil
}

// registerFormats turns format keywords into assertions; later drafts treat
// them as annotations by default.
func registerFormats(compiler *jsonschema.Compiler) {
	compiler.AssertFormat = true
}

// Check validates an already decoded JSON value and returns every failure.
func (s *Schema) Check(v interface{}) ValidationErrors {
	err := s.schema.Validate(v)
	if err == nil {
		return nil
	}
	if validationErr, ok := err.(*jsonschema.ValidationError); ok {
		return extractValidationErrors(validationErr)
	}
	return ValidationErrors{err}
}

// CheckJSON parses jsonStr and validates it.
func (s *Schema) CheckJSON(jsonStr string) ValidationErrors {
	var jsonData interface{}
	if err := json.Unmarshal([]byte(jsonStr), &jsonData); err != nil {
		return ValidationErrors{fmt.Errorf("invalid JSON: %w", err)}
	}
	return s.Check(jsonData)
}

// ResponseTransformer returns a transformer that rejects responses whose
// decoded data does not match schema. When no earlier transformer decoded
// the body, the raw body is parsed as JSON.
func ResponseTransformer(schema *Schema) yeahttp.ResponseTransformer {
	return func(resp *yeahttp.Response) (*yeahttp.Response, error) {
		var errs ValidationErrors
		if resp.Data != nil {
			errs = schema.Check(resp.Data)
		} else {
			errs = schema.CheckJSON(resp.Body)
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return resp, nil
	}
}

// extractValidationErrors extracts all validation errors from a jsonschema.ValidationError
func extractValidationErrors(err *jsonschema.ValidationError) ValidationErrors {
	var errors ValidationErrors

	// Add the current error
	if err.Message != "" {
		errors = append(errors, fmt.Errorf("validation error at %s: %s", err.InstanceLocation, err.Message))
	}

	// Add all child errors
	for _, childErr := range err.Causes {
		errors = append(errors, extractValidationErrors(childErr)...)
	}

	return errors
}
