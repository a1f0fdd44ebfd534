package http

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"
	"golang.org/x/net/http/httpguts"
)

// QueryEncoder accumulates key/value pairs and renders them as an encoded
// query string. Implementations may be swapped through Polyfills.QueryEncoder.
type QueryEncoder interface {
	Append(key, value string)
	String() string
}

// keyAppender is implemented by encoders that can render a key without a value.
type keyAppender interface {
	AppendKey(key string)
}

// ComponentEncoder percent-encodes keys and values the way encodeURIComponent
// does: unreserved characters and !~*'() are kept, space becomes %20.
type ComponentEncoder struct {
	segments []string
}

// NewComponentEncoder returns the default QueryEncoder.
func NewComponentEncoder() QueryEncoder {
	return &ComponentEncoder{}
}

// Append adds key=value.
func (e *ComponentEncoder) Append(key, value string) {
	e.segments = append(e.segments, EncodeComponent(key)+"="+EncodeComponent(value))
}

// AppendKey adds a bare key.
func (e *ComponentEncoder) AppendKey(key string) {
	e.segments = append(e.segments, EncodeComponent(key))
}

func (e *ComponentEncoder) String() string {
	return strings.Join(e.segments, "&")
}

// SearchParams encodes with url.Values semantics: keys sorted, space as '+'.
type SearchParams struct {
	values url.Values
}

// NewSearchParams returns a QueryEncoder backed by url.Values.
func NewSearchParams() QueryEncoder {
	return &SearchParams{values: url.Values{}}
}

// Append adds key=value.
func (s *SearchParams) Append(key, value string) {
	s.values.Add(key, value)
}

func (s *SearchParams) String() string {
	return s.values.Encode()
}

const hexDigits = "0123456789ABCDEF"

// EncodeComponent percent-encodes s like encodeURIComponent.
func EncodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// encodeValues renders data as a query string using the encoder returned by
// newEncoder. Map keys are emitted in sorted order; *Params keeps insertion
// order; slice values repeat the key once per element; nil values render the
// bare key.
func encodeValues(data interface{}, newEncoder func() QueryEncoder) (string, error) {
	enc := newEncoder()
	appendOne := func(key string, v interface{}) error {
		if v == nil {
			if ka, ok := enc.(keyAppender); ok {
				ka.AppendKey(key)
			} else {
				enc.Append(key, "")
			}
			return nil
		}
		s, ok := scalarString(v)
		if !ok {
			return invalidArgument("Unsupported value for key '%s'", key)
		}
		enc.Append(key, s)
		return nil
	}

	switch d := data.(type) {
	case nil:
		return "", nil
	case string:
		return d, nil
	case *Params:
		if d == nil {
			return "", nil
		}
		for _, key := range d.Keys() {
			for _, v := range d.Get(key) {
				enc.Append(key, v)
			}
		}
		return enc.String(), nil
	case map[string]string:
		for _, key := range sortedKeys(d) {
			enc.Append(key, d[key])
		}
		return enc.String(), nil
	case url.Values:
		return encodeMulti(enc, d), nil
	case map[string][]string:
		return encodeMulti(enc, d), nil
	case map[string]interface{}:
		for _, key := range sortedKeys(d) {
			if err := appendValue(key, d[key], appendOne); err != nil {
				return "", err
			}
		}
		return enc.String(), nil
	}

	if isStruct(data) {
		values, err := query.Values(data)
		if err != nil {
			return "", &RequestError{
				Kind:    KindInvalidArgument,
				Message: "Unable to encode struct as query",
				Cause:   err,
			}
		}
		return encodeMulti(enc, values), nil
	}
	return "", invalidArgument("Unsupported type %T for query encoding", data)
}

// appendValue repeats key once per element when v is a slice or array.
// Byte slices are treated as text.
func appendValue(key string, v interface{}, appendOne func(string, interface{}) error) error {
	switch vs := v.(type) {
	case []byte:
		return appendOne(key, string(vs))
	case []string:
		for _, s := range vs {
			if err := appendOne(key, s); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return appendOne(key, v)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := appendOne(key, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func encodeMulti(enc QueryEncoder, m map[string][]string) string {
	for _, key := range sortedKeys(m) {
		for _, v := range m[key] {
			enc.Append(key, v)
		}
	}
	return enc.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isStruct(v interface{}) bool {
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// scalarString stringifies strings, numbers, booleans and fmt.Stringers.
func scalarString(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int:
		return strconv.Itoa(x), true
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(x).Int(), 10), true
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(x).Uint(), 10), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}

// numberString stringifies strings and numbers only, the value types accepted
// for headers and bodies.
func numberString(v interface{}) (string, bool) {
	switch v.(type) {
	case bool, fmt.Stringer:
		return "", false
	}
	return scalarString(v)
}

// normalizeHeaders validates and lowercases a header object.
func normalizeHeaders(object map[string]interface{}) (map[string]string, error) {
	headers := make(map[string]string, len(object))
	for _, name := range sortedKeys(object) {
		key := strings.ToLower(name)
		if !httpguts.ValidHeaderFieldName(key) {
			return nil, invalidArgument("Invalid header name '%s'", name)
		}
		value, ok := numberString(object[name])
		if !ok || !httpguts.ValidHeaderFieldValue(value) {
			return nil, invalidArgument("Invalid header value for header '%s'", key)
		}
		headers[key] = value
	}
	return headers, nil
}

// HeaderField is one response header line as delivered by a transport.
type HeaderField struct {
	Name  string
	Value string
}

// foldHeaders lowercases names; the last occurrence of a name wins.
func foldHeaders(fields []HeaderField) map[string]string {
	headers := make(map[string]string, len(fields))
	for _, f := range fields {
		headers[strings.ToLower(strings.TrimSpace(f.Name))] = strings.TrimSpace(f.Value)
	}
	return headers
}

var absoluteURL = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.-]*:)?//`)

// IsAbsoluteURL reports whether u carries a scheme or is protocol-relative.
func IsAbsoluteURL(u string) bool {
	return absoluteURL.MatchString(u)
}

// ComposeURL joins baseURL, path and query. Trailing slashes of baseURL are
// trimmed and exactly one slash separates it from a relative path. An
// absolute path ignores baseURL.
func ComposeURL(baseURL, path, query string) string {
	var b strings.Builder
	if baseURL != "" && !IsAbsoluteURL(path) {
		b.WriteString(strings.TrimRight(baseURL, "/"))
		if path != "" && path[0] != '/' {
			b.WriteByte('/')
		}
	}
	b.WriteString(path)
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	return b.String()
}

var urlParamToken = regexp.MustCompile(`:[A-Za-z0-9_]+`)

// ExpandURLParams replaces whole ":name" tokens in path with the
// path-escaped value of params[name], in a single pass. Tokens without a
// value are left as they are.
func ExpandURLParams(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}
	return urlParamToken.ReplaceAllStringFunc(path, func(token string) string {
		value, ok := params[token[1:]]
		if !ok {
			return token
		}
		return url.PathEscape(value)
	})
}
