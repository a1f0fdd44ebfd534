package config

import (
	"fmt"
	"regexp"
	"strings"

	yeahttp "github.com/wesleyorama2/yea/http"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) []ValidationError {
	var errors []ValidationError

	for name, env := range config.Environments {
		if env.BaseURL == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("environments.%s.baseUrl", name),
				Message: "baseUrl is required",
			})
		}
	}

	if len(config.Requests) == 0 {
		errors = append(errors, ValidationError{
			Path:    "requests",
			Message: "at least one request is required",
		})
	}

	for name, req := range config.Requests {
		errors = append(errors, validateRequest(config, name, req)...)
	}

	for name, suite := range config.Suites {
		if len(suite.Requests) == 0 {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("suites.%s.requests", name),
				Message: "at least one request is required",
			})
		}

		for i, reqName := range suite.Requests {
			if _, ok := config.Requests[reqName]; !ok {
				errors = append(errors, ValidationError{
					Path:    fmt.Sprintf("suites.%s.requests[%d]", name, i),
					Message: fmt.Sprintf("request not found: %s", reqName),
				})
			}
		}
	}

	return errors
}

func validateRequest(config *Config, name string, req Request) []ValidationError {
	var errors []ValidationError
	path := func(field string) string {
		return fmt.Sprintf("requests.%s.%s", name, field)
	}

	if req.URL == "" {
		errors = append(errors, ValidationError{Path: path("url"), Message: "url is required"})
	}

	// An empty method means GET
	if req.Method != "" && !yeahttp.IsSupportedMethod(strings.ToUpper(req.Method)) {
		errors = append(errors, ValidationError{
			Path:    path("method"),
			Message: fmt.Sprintf("invalid method: %s", req.Method),
		})
	}

	if req.Body != nil && len(req.Form) > 0 {
		errors = append(errors, ValidationError{
			Path:    path("form"),
			Message: "body and form cannot both be set",
		})
	}

	if req.Timeout != "" {
		if d, err := parseDurationString(req.Timeout); err != nil || d < 0 {
			errors = append(errors, ValidationError{
				Path:    path("timeout"),
				Message: fmt.Sprintf("invalid timeout: %s", req.Timeout),
			})
		}
	}

	if req.AllowedStatus != nil {
		if msg := checkAllowedStatus(req.AllowedStatus); msg != "" {
			errors = append(errors, ValidationError{Path: path("allowedStatus"), Message: msg})
		}
	}

	if req.Schema != "" {
		if _, ok := config.Schemas[req.Schema]; !ok {
			errors = append(errors, ValidationError{
				Path:    path("schema"),
				Message: fmt.Sprintf("schema not found: %s", req.Schema),
			})
		}
	}

	for varName, p := range req.Extract {
		if p == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("requests.%s.extract.%s", name, varName),
				Message: "extract path cannot be empty",
			})
		}
	}

	for field, m := range map[string]map[string]string{"css": req.CSS, "xpath": req.XPath} {
		for fieldName, expr := range m {
			if expr == "" {
				errors = append(errors, ValidationError{
					Path:    fmt.Sprintf("requests.%s.%s.%s", name, field, fieldName),
					Message: "expression cannot be empty",
				})
			}
		}
	}

	return errors
}

func checkAllowedStatus(v interface{}) string {
	spec, err := statusSpec(v)
	if err != nil {
		return err.Error()
	}
	if pattern, ok := spec.(string); ok {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Sprintf("invalid status pattern: %s", pattern)
		}
	}
	return ""
}

// ValidateEnvironment validates that an environment exists
func ValidateEnvironment(config *Config, envName string) error {
	if _, ok := config.Environments[envName]; !ok {
		return fmt.Errorf("environment not found: %s", envName)
	}
	return nil
}

// ValidateRequest validates that a request exists
func ValidateRequest(config *Config, reqName string) error {
	if _, ok := config.Requests[reqName]; !ok {
		return fmt.Errorf("request not found: %s", reqName)
	}
	return nil
}

// ValidateSuite validates that a suite exists
func ValidateSuite(config *Config, suiteName string) error {
	if _, ok := config.Suites[suiteName]; !ok {
		return fmt.Errorf("suite not found: %s", suiteName)
	}
	return nil
}
