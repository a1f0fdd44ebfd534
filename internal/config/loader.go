package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents a request collection file
type Config struct {
	Environments map[string]Environment `json:"environments" yaml:"environments"`
	Requests     map[string]Request     `json:"requests" yaml:"requests"`
	Suites       map[string]Suite       `json:"suites,omitempty" yaml:"suites,omitempty"`
	Schemas      map[string]interface{} `json:"schemas,omitempty" yaml:"schemas,omitempty"`
}

// Environment represents an environment configuration
type Environment struct {
	BaseURL string            `json:"baseUrl" yaml:"baseUrl"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Vars    map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Request represents a request configuration
type Request struct {
	Method      string            `json:"method" yaml:"method"`
	URL         string            `json:"url" yaml:"url"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	QueryParams map[string]string `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
	URLParams   map[string]string `json:"urlParams,omitempty" yaml:"urlParams,omitempty"`

	// Body is sent verbatim when it is a string and as JSON otherwise.
	Body interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	Form map[string]string `json:"form,omitempty" yaml:"form,omitempty"`

	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// AllowedStatus is a status code or a regular expression.
	AllowedStatus interface{} `json:"allowedStatus,omitempty" yaml:"allowedStatus,omitempty"`

	Extract  map[string]string      `json:"extract,omitempty" yaml:"extract,omitempty"`
	Validate map[string]interface{} `json:"validate,omitempty" yaml:"validate,omitempty"`
	Schema   string                 `json:"schema,omitempty" yaml:"schema,omitempty"`
	CSS      map[string]string      `json:"css,omitempty" yaml:"css,omitempty"`
	XPath    map[string]string      `json:"xpath,omitempty" yaml:"xpath,omitempty"`
}

// Suite represents an ordered list of requests sharing variables
type Suite struct {
	Requests []string          `json:"requests" yaml:"requests"`
	Vars     map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// LoadConfig loads a configuration file. Files ending in .yaml or .yml are
// read as YAML, everything else as JSON.
func LoadConfig(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON parses a JSON collection.
func ParseJSON(data []byte) (*Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "error parsing config file")
	}
	return &config, nil
}

// ParseYAML parses a YAML collection.
func ParseYAML(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "error parsing config file")
	}
	return &config, nil
}

// parseDurationString accepts Go durations as well as forms like
// "30 seconds" or "1 minute".
func parseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}

	duration = strings.ToLower(duration)
	duration = strings.ReplaceAll(duration, " ", "")

	// Longest words first so "seconds" is not left as "s" + "s"
	replacements := []struct{ word, abbrev string }{
		{"milliseconds", "ms"},
		{"millisecond", "ms"},
		{"seconds", "s"},
		{"second", "s"},
		{"minutes", "m"},
		{"minute", "m"},
		{"hours", "h"},
		{"hour", "h"},
	}
	for _, r := range replacements {
		duration = strings.ReplaceAll(duration, r.word, r.abbrev)
	}

	return time.ParseDuration(duration)
}

// ProcessEnvironment replaces {{name}} placeholders in input. Unknown
// placeholders are left alone.
func ProcessEnvironment(input string, env map[string]string) string {
	result := input
	for key, value := range env {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// ProcessEnvironmentInMap processes environment variables in every value of a map
func ProcessEnvironmentInMap(input map[string]string, env map[string]string) map[string]string {
	result := make(map[string]string, len(input))
	for key, value := range input {
		result[key] = ProcessEnvironment(value, env)
	}
	return result
}

// processEnvironmentInValue walks a decoded JSON or YAML value and replaces
// placeholders in every string it holds.
func processEnvironmentInValue(v interface{}, env map[string]string) interface{} {
	switch val := v.(type) {
	case string:
		return ProcessEnvironment(val, env)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = processEnvironmentInValue(item, env)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = processEnvironmentInValue(item, env)
		}
		return out
	default:
		return v
	}
}

// MergeEnvironments merges two environments, with the second taking precedence
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}

// GetConfigDir returns the directory containing the config file
func GetConfigDir(configPath string) string {
	return filepath.Dir(configPath)
}
