package http

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/wesleyorama2/yea/pkg/jsonpath"
)

// ResponseTransformer derives a new Response from the previous one. Returning
// an error rejects the dispatch with a TransformError.
type ResponseTransformer func(resp *Response) (*Response, error)

// JSONResponseTransformer decodes the body into Data when the content-type
// starts with application/json. Malformed JSON is an error.
func JSONResponseTransformer(resp *Response) (*Response, error) {
	if !strings.HasPrefix(resp.Header("content-type"), "application/json") {
		return resp, nil
	}
	var data interface{}
	if err := json.Unmarshal([]byte(resp.Body), &data); err != nil {
		return nil, errors.Wrap(err, "decoding JSON response body")
	}
	out := resp.Clone()
	out.Data = data
	return out, nil
}

// FieldTransformer returns a transformer storing the result of fn under
// Fields[name].
func FieldTransformer(name string, fn func(resp *Response) (interface{}, error)) ResponseTransformer {
	return func(resp *Response) (*Response, error) {
		v, err := fn(resp)
		if err != nil {
			return nil, errors.Wrapf(err, "deriving field %q", name)
		}
		return resp.SetField(name, v), nil
	}
}

// applyTransformers folds resp through ts left to right.
func applyTransformers(resp *Response, ts []ResponseTransformer) (*Response, error) {
	for i, t := range ts {
		next, err := t(resp)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, errors.Errorf("response transformer %d returned no response", i)
		}
		resp = next
	}
	return resp, nil
}

// ParsePropPath splits "data.accounts[0].name" into
// ["data", "accounts", "0", "name"].
func ParsePropPath(path string) []string {
	return jsonpath.Segments(path)
}

// Prop resolves a path such as "data.accounts[0]" or "headers.content-type"
// against the response. Root names are status, headers, body, data and the
// keys of Fields.
func (r *Response) Prop(path string) (interface{}, error) {
	segments := ParsePropPath(path)
	if len(segments) == 0 {
		return r, nil
	}
	raw, err := json.Marshal(r.view())
	if err != nil {
		return nil, errors.Wrap(err, "encoding response for prop lookup")
	}
	v, ok := jsonpath.Lookup(raw, segments)
	if !ok {
		return nil, errors.Errorf("prop path not found: %s", path)
	}
	return v, nil
}
