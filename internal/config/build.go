package config

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"

	yeahttp "github.com/wesleyorama2/yea/http"
	"github.com/wesleyorama2/yea/pkg/jsonschema"
	"github.com/wesleyorama2/yea/pkg/selector"
)

// BuildRequest turns the named request into a yea request, resolving
// placeholders from the environment variables overridden by vars.
func BuildRequest(config *Config, envName, reqName string, vars map[string]string) (yeahttp.Request, error) {
	return BuildRequestFrom(yeahttp.New(), config, envName, reqName, vars)
}

// BuildRequestFrom is BuildRequest starting from base instead of a default
// request, so callers can supply polyfills, headers or a timeout shared by
// every request of a run.
func BuildRequestFrom(base yeahttp.Request, config *Config, envName, reqName string, vars map[string]string) (yeahttp.Request, error) {
	req, ok := config.Requests[reqName]
	if !ok {
		return base, fmt.Errorf("request not found: %s", reqName)
	}

	var env Environment
	if envName != "" {
		if env, ok = config.Environments[envName]; !ok {
			return base, fmt.Errorf("environment not found: %s", envName)
		}
	}
	vars = MergeEnvironments(env.Vars, vars)

	r, err := applyRequest(base, env, req, vars)
	if err != nil {
		return base, errors.Wrapf(err, "request %s", reqName)
	}

	r, err = addSchema(r, config, req)
	if err != nil {
		return base, errors.Wrapf(err, "request %s", reqName)
	}

	r, err = addSelectors(r, req)
	if err != nil {
		return base, errors.Wrapf(err, "request %s", reqName)
	}
	return r, nil
}

func applyRequest(r yeahttp.Request, env Environment, req Request, vars map[string]string) (yeahttp.Request, error) {
	var err error

	if env.BaseURL != "" {
		r = r.BaseURL(ProcessEnvironment(env.BaseURL, vars))
	}

	method := req.Method
	if method == "" {
		method = "GET"
	}
	if r, err = r.Method(method); err != nil {
		return r, err
	}

	r = r.URL(ProcessEnvironment(req.URL, vars))
	if len(req.URLParams) > 0 {
		r = r.URLParams(ProcessEnvironmentInMap(req.URLParams, vars))
	}

	headers := MergeEnvironments(env.Headers, req.Headers)
	if len(headers) > 0 {
		if r, err = r.AmendHeaders(toObject(ProcessEnvironmentInMap(headers, vars))); err != nil {
			return r, err
		}
	}

	// Query parameters replace any query written into the URL
	if len(req.QueryParams) > 0 {
		if r, err = r.Query(ProcessEnvironmentInMap(req.QueryParams, vars)); err != nil {
			return r, err
		}
	}

	switch {
	case req.Body != nil && len(req.Form) > 0:
		return r, fmt.Errorf("body and form cannot both be set")
	case len(req.Form) > 0:
		if r, err = r.URLEncoded(ProcessEnvironmentInMap(req.Form, vars)); err != nil {
			return r, err
		}
	case req.Body != nil:
		if body, ok := req.Body.(string); ok {
			r, err = r.Body(ProcessEnvironment(body, vars))
		} else {
			r, err = r.JSON(processEnvironmentInValue(req.Body, vars))
		}
		if err != nil {
			return r, err
		}
	}

	if req.Timeout != "" {
		d, err := parseDurationString(req.Timeout)
		if err != nil {
			return r, errors.Wrap(err, "invalid timeout")
		}
		if r, err = r.Timeout(d); err != nil {
			return r, err
		}
	}

	if req.AllowedStatus != nil {
		spec, err := statusSpec(req.AllowedStatus)
		if err != nil {
			return r, err
		}
		if r, err = r.SetAllowedStatusCode(spec); err != nil {
			return r, err
		}
	}
	return r, nil
}

// addSchema appends a validating transformer for an inline validate block
// or a named schema.
func addSchema(r yeahttp.Request, config *Config, req Request) (yeahttp.Request, error) {
	var doc interface{}
	switch {
	case len(req.Validate) > 0:
		doc = req.Validate
	case req.Schema != "":
		named, ok := config.Schemas[req.Schema]
		if !ok {
			return r, fmt.Errorf("schema not found: %s", req.Schema)
		}
		doc = named
	default:
		return r, nil
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return r, errors.Wrap(err, "encoding schema")
	}
	schema, err := jsonschema.Compile(string(data))
	if err != nil {
		return r, err
	}
	return r.AddResponseTransformer(jsonschema.ResponseTransformer(schema))
}

func addSelectors(r yeahttp.Request, req Request) (yeahttp.Request, error) {
	for _, name := range sortedNames(req.CSS) {
		t, err := selector.CSSField(name, req.CSS[name])
		if err != nil {
			return r, err
		}
		if r, err = r.AddResponseTransformer(t); err != nil {
			return r, err
		}
	}
	for _, name := range sortedNames(req.XPath) {
		t, err := selector.XPathField(name, req.XPath[name])
		if err != nil {
			return r, err
		}
		if r, err = r.AddResponseTransformer(t); err != nil {
			return r, err
		}
	}
	return r, nil
}

// statusSpec converts a decoded allowedStatus value. JSON numbers arrive as
// float64, YAML integers as int.
func statusSpec(v interface{}) (interface{}, error) {
	switch s := v.(type) {
	case int:
		return s, nil
	case float64:
		if s != math.Trunc(s) {
			return nil, fmt.Errorf("invalid allowedStatus: %v", s)
		}
		return int(s), nil
	case string:
		return s, nil
	}
	return nil, fmt.Errorf("invalid allowedStatus: %v", v)
}

func toObject(m map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
