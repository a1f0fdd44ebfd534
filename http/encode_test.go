package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeValues(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"empty map", map[string]string{}, ""},
		{"single pair", map[string]string{"foo": "bar"}, "foo=bar"},
		{"two pairs sorted", map[string]string{"foo": "bar", "baz": "xyz"}, "baz=xyz&foo=bar"},
		{"params keep insertion order", NewParams().Add("foo", "bar").Add("baz", "xyz"), "foo=bar&baz=xyz"},
		{"encodes space in value", map[string]string{"foo": "bar xyz"}, "foo=bar%20xyz"},
		{"encodes ampersand in value", map[string]string{"foo": "bar&xyz"}, "foo=bar%26xyz"},
		{"keeps quote in value", map[string]string{"foo": "bar'xyz"}, "foo=bar'xyz"},
		{"encodes space in key", map[string]string{"bar xyz": "bar"}, "bar%20xyz=bar"},
		{"encodes ampersand in key", map[string]string{"bar&xyz": "bar"}, "bar%26xyz=bar"},
		{"keeps quote in key", map[string]string{"bar'xyz": "bar"}, "bar'xyz=bar"},
		{"empty array", map[string]interface{}{"foo": []string{}}, ""},
		{"array values", map[string]interface{}{"foo": []string{"one", "two"}}, "foo=one&foo=two"},
		{"array order kept", map[string]interface{}{"foo": []string{"two", "one"}}, "foo=two&foo=one"},
		{"nil renders bare key", map[string]interface{}{"foo": nil}, "foo"},
		{"nil with others", map[string]interface{}{"foo": nil, "bar": "xyz"}, "bar=xyz&foo"},
		{"nil in array", map[string]interface{}{"foo": []interface{}{nil}}, "foo"},
		{"mixed array", map[string]interface{}{"foo": []interface{}{"one", nil, "three"}}, "foo=one&foo&foo=three"},
		{"numbers and bools", map[string]interface{}{"n": 1.5, "b": true, "i": 7}, "b=true&i=7&n=1.5"},
		{"multi-valued map", map[string][]string{"a": {"1", "2"}}, "a=1&a=2"},
		{"int slice", map[string]interface{}{"id": []int{1, 2}}, "id=1&id=2"},
		{"float slice", map[string]interface{}{"w": []float64{0.5, 2}}, "w=0.5&w=2"},
		{"bool array", map[string]interface{}{"f": [2]bool{true, false}}, "f=true&f=false"},
		{"byte slice is text", map[string]interface{}{"raw": []byte("a b")}, "raw=a%20b"},
		{"unicode", map[string]string{"q": "é"}, "q=%C3%A9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeValues(tt.input, NewComponentEncoder)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEncodeValues_Struct(t *testing.T) {
	type filter struct {
		Name  string   `url:"name"`
		Tags  []string `url:"tag"`
		Limit int      `url:"limit,omitempty"`
	}

	got, err := encodeValues(filter{Name: "a b", Tags: []string{"x", "y"}}, NewComponentEncoder)
	require.NoError(t, err)
	assert.Equal(t, "name=a%20b&tag=x&tag=y", got)

	got, err = encodeValues(&filter{Name: "n", Limit: 5}, NewComponentEncoder)
	require.NoError(t, err)
	assert.Equal(t, "limit=5&name=n", got)
}

func TestEncodeValues_Unsupported(t *testing.T) {
	_, err := encodeValues(map[string]interface{}{"foo": map[string]string{"bar": "xyz"}}, NewComponentEncoder)
	assert.True(t, IsKind(err, KindInvalidArgument))

	_, err = encodeValues(map[string]interface{}{"foo": []map[string]string{{"a": "b"}}}, NewComponentEncoder)
	assert.True(t, IsKind(err, KindInvalidArgument))

	_, err = encodeValues(42, NewComponentEncoder)
	assert.True(t, IsKind(err, KindInvalidArgument))
}

func TestSearchParams(t *testing.T) {
	got, err := encodeValues(map[string]interface{}{"b": "x y", "a": nil}, NewSearchParams)
	require.NoError(t, err)
	assert.Equal(t, "a=&b=x+y", got)
}

func TestEncodeComponent(t *testing.T) {
	assert.Equal(t, "abc-_.!~*'()", EncodeComponent("abc-_.!~*'()"))
	assert.Equal(t, "%2F%3F%3D%26%23%2B", EncodeComponent("/?=&#+"))
	assert.Equal(t, "%20", EncodeComponent(" "))
}

func TestComposeURL(t *testing.T) {
	tests := []struct {
		base, path, query string
		expected          string
	}{
		{"", "accounts", "", "accounts"},
		{"", "/accounts", "", "/accounts"},
		{"", "https://example.com", "", "https://example.com"},
		{"https://example.com", "accounts", "", "https://example.com/accounts"},
		{"https://example.com/", "accounts", "", "https://example.com/accounts"},
		{"https://example.com", "/accounts", "", "https://example.com/accounts"},
		{"https://example.com/", "/accounts", "", "https://example.com/accounts"},
		{"https://example.com/nested", "accounts", "", "https://example.com/nested/accounts"},
		{"https://example.com/nested", "/accounts", "", "https://example.com/nested/accounts"},
		{"https://example.com/nested/", "accounts", "", "https://example.com/nested/accounts"},
		{"https://example.com/nested/foo", "accounts", "", "https://example.com/nested/foo/accounts"},
		{"https://example.com", "", "", "https://example.com"},
		{"https://example.com", "", "foo=bar", "https://example.com?foo=bar"},
		{"https://example.com", "accounts", "foo=bar", "https://example.com/accounts?foo=bar"},
		{"", "accounts", "foo=bar", "accounts?foo=bar"},
		{"https://example.com", "http://other.com/x", "", "http://other.com/x"},
		{"https://example.com", "//cdn.example.com/x", "", "//cdn.example.com/x"},
	}

	for _, tt := range tests {
		t.Run(tt.base+"|"+tt.path+"|"+tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComposeURL(tt.base, tt.path, tt.query))
		})
	}
}

func TestExpandURLParams(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		params   map[string]string
		expected string
	}{
		{"no params", "/users/:id", nil, "/users/:id"},
		{"single", "/users/:id", map[string]string{"id": "42"}, "/users/42"},
		{"escaped", "/files/:name", map[string]string{"name": "a/b c"}, "/files/a%2Fb%20c"},
		{"longest first", "/:idx/:id", map[string]string{"id": "1", "idx": "2"}, "/2/1"},
		{"whole names only", "/u/:id/:identity", map[string]string{"id": "5"}, "/u/5/:identity"},
		{"values are not expanded again", "/x/:ab", map[string]string{"ab": ":a", "a": "z"}, "/x/:a"},
		{"repeated name", "/:id/copy/:id", map[string]string{"id": "7"}, "/7/copy/7"},
		{"port untouched", "http://host:8080/:id", map[string]string{"id": "7"}, "http://host:8080/7"},
		{"empty name ignored", "/a:b", map[string]string{"": "x"}, "/a:b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandURLParams(tt.path, tt.params))
		})
	}
}

func TestFoldHeaders(t *testing.T) {
	got := foldHeaders([]HeaderField{
		{Name: "Content-Type", Value: "text/plain"},
		{Name: "X-Dup", Value: "first"},
		{Name: "x-dup", Value: "second"},
	})
	assert.Equal(t, map[string]string{"content-type": "text/plain", "x-dup": "second"}, got)
}
