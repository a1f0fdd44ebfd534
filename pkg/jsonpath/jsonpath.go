package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract extracts a value from a JSON string using a JSONPath expression
func Extract(json string, path string) (string, error) {
	// Handle empty JSON
	if json == "" {
		return "", fmt.Errorf("empty JSON string")
	}

	// Handle empty path
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}

	// JSONPath: $.users[0].name
	// gjson:    users.0.name
	result := gjson.Get(json, convertToGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}

	if result.Type == gjson.Null {
		return "null", nil
	}

	return result.String(), nil
}

// ExtractMultiple extracts multiple values from a JSON string using a map of JSONPath expressions
func ExtractMultiple(json string, paths map[string]string) (map[string]string, error) {
	if json == "" {
		return nil, fmt.Errorf("empty JSON string")
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no JSONPath expressions provided")
	}

	results := make(map[string]string)
	var errors []string

	for name, path := range paths {
		value, err := Extract(json, path)
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		results[name] = value
	}

	if len(errors) > 0 {
		return results, fmt.Errorf("extraction errors: %s", strings.Join(errors, "; "))
	}

	return results, nil
}

// Segments splits a dotted path with bracket indices into its components:
// "data.accounts[0].name" -> ["data", "accounts", "0", "name"]. A leading "$"
// is ignored and quoted brackets (['a.b']) keep dots inside the segment.
func Segments(path string) []string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "$")
	var segments []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			segments = append(segments, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch c {
		case '.':
			flush()
		case '[':
			flush()
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				cur.WriteString(path[i+1:])
				i = len(path)
				continue
			}
			inner := strings.Trim(path[i+1:i+end], `'"`)
			if inner != "" {
				segments = append(segments, inner)
			}
			i += end
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return segments
}

// Lookup resolves segments against a JSON document and returns the decoded
// value (maps, slices, float64, string, bool or nil).
func Lookup(json []byte, segments []string) (interface{}, bool) {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = escapeComponent(s)
	}
	path := strings.Join(escaped, ".")
	if path == "" {
		path = "@this"
	}
	result := gjson.GetBytes(json, path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// escapeComponent escapes gjson path syntax characters in one segment.
func escapeComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%', '(', ')', '[', ']', '{', '}', ',', ':', '"':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// convertToGjsonPath converts a JSONPath expression to a gjson path format
func convertToGjsonPath(path string) string {
	if strings.TrimPrefix(path, "$") == "" {
		return "@this"
	}
	segments := Segments(path)
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = escapeComponent(s)
	}
	return strings.Join(escaped, ".")
}
