package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yeahttp "github.com/wesleyorama2/yea/http"
)

func buildConfig(baseURL string) *Config {
	return &Config{
		Environments: map[string]Environment{
			"dev": {
				BaseURL: baseURL,
				Headers: map[string]string{"X-Env": "dev", "Accept": "text/plain"},
				Vars:    map[string]string{"userId": "1", "token": "t0"},
			},
		},
		Requests: map[string]Request{
			"getUser": {
				Method:      "get",
				URL:         "/users/{{userId}}?ignored=1",
				Headers:     map[string]string{"Accept": "application/json", "Authorization": "Bearer {{token}}"},
				QueryParams: map[string]string{"b": "2", "a": "{{userId}}"},
				Timeout:     "2 seconds",
			},
			"createPost": {
				Method:        "POST",
				URL:           "/users/:id/posts",
				URLParams:     map[string]string{"id": "{{userId}}"},
				Body:          map[string]interface{}{"owner": "{{userId}}", "tags": []interface{}{"x"}},
				AllowedStatus: float64(201),
				Schema:        "post",
			},
			"login": {
				Method: "POST",
				URL:    "/login",
				Form:   map[string]string{"user": "{{userId}}", "pass": "a b"},
			},
			"raw": {
				Method:        "PUT",
				URL:           "/raw",
				Body:          "id={{userId}}",
				AllowedStatus: "^(200|404)$",
			},
			"page": {
				URL:   "/page",
				CSS:   map[string]string{"title": "h1"},
				XPath: map[string]string{"links": "//a/@href"},
			},
		},
		Schemas: map[string]interface{}{
			"post": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"id"},
			},
		},
	}
}

func TestBuildRequest_Shape(t *testing.T) {
	config := buildConfig("https://api.example.com")

	r, err := BuildRequest(config, "dev", "getUser", map[string]string{"userId": "42"})
	require.NoError(t, err)

	cfg := r.Config()
	assert.Equal(t, "GET", cfg.Method)
	assert.Equal(t, "https://api.example.com/users/42?a=42&b=2", cfg.ComposedURL())
	assert.Equal(t, "application/json", cfg.Headers["accept"])
	assert.Equal(t, "dev", cfg.Headers["x-env"])
	assert.Equal(t, "Bearer t0", cfg.Headers["authorization"])
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

func TestBuildRequest_Bodies(t *testing.T) {
	config := buildConfig("https://api.example.com")

	r, err := BuildRequest(config, "dev", "createPost", nil)
	require.NoError(t, err)
	cfg := r.Config()
	assert.Equal(t, "https://api.example.com/users/1/posts", cfg.ComposedURL())
	assert.JSONEq(t, `{"owner":"1","tags":["x"]}`, cfg.Body)
	assert.Equal(t, "application/json", cfg.Headers["content-type"])
	assert.True(t, cfg.AllowedStatusCode.Allows(201))
	assert.False(t, cfg.AllowedStatusCode.Allows(200))
	assert.Len(t, cfg.ResponseTransformers, 2)

	r, err = BuildRequest(config, "dev", "login", nil)
	require.NoError(t, err)
	cfg = r.Config()
	assert.Equal(t, "pass=a%20b&user=1", cfg.Body)
	assert.Equal(t, "application/x-www-form-urlencoded", cfg.Headers["content-type"])

	r, err = BuildRequest(config, "", "raw", nil)
	require.NoError(t, err)
	cfg = r.Config()
	assert.Equal(t, "PUT", cfg.Method)
	assert.Equal(t, "id={{userId}}", cfg.Body)
	assert.True(t, cfg.AllowedStatusCode.Allows(404))
}

func TestBuildRequest_Errors(t *testing.T) {
	config := buildConfig("https://api.example.com")
	config.Requests["badStatus"] = Request{URL: "/x", AllowedStatus: true}
	config.Requests["badSchema"] = Request{URL: "/x", Schema: "missing"}
	config.Requests["badCSS"] = Request{URL: "/x", CSS: map[string]string{"t": "li["}}
	config.Requests["badTimeout"] = Request{URL: "/x", Timeout: "-1s"}
	config.Requests["bodyAndForm"] = Request{URL: "/x", Body: "a", Form: map[string]string{"b": "c"}}
	config.Requests["badMethod"] = Request{URL: "/x", Method: "FETCH"}

	tests := []struct {
		env, request, message string
	}{
		{"dev", "unknown", "request not found: unknown"},
		{"staging", "getUser", "environment not found: staging"},
		{"dev", "badStatus", "request badStatus: invalid allowedStatus: true"},
		{"dev", "badSchema", "request badSchema: schema not found: missing"},
		{"dev", "badCSS", "request badCSS: invalid CSS selector"},
		{"dev", "badTimeout", "request badTimeout: Expected a non-negative duration for timeout"},
		{"dev", "bodyAndForm", "request bodyAndForm: body and form cannot both be set"},
		{"dev", "badMethod", "request badMethod: Invalid method: FETCH"},
	}

	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			_, err := BuildRequest(config, tt.env, tt.request, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestBuildRequest_Dispatch(t *testing.T) {
	var gotBody, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		gotType = r.Header.Get("Content-Type")

		switch r.URL.Path {
		case "/users/1/posts":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id": 9}`)
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, `<html><body><h1>Users</h1><a href="/a">a</a><a href="/b">b</a></body></html>`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	config := buildConfig(server.URL)

	r, err := BuildRequest(config, "dev", "createPost", nil)
	require.NoError(t, err)
	resp, err := r.Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, float64(9), resp.Data.(map[string]interface{})["id"])
	assert.JSONEq(t, `{"owner":"1","tags":["x"]}`, gotBody)
	assert.Equal(t, "application/json", gotType)

	r, err = BuildRequest(config, "dev", "page", nil)
	require.NoError(t, err)
	resp, err = r.Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Users"}, resp.Fields["title"])
	assert.Equal(t, []string{"/a", "/b"}, resp.Fields["links"])

	r, err = BuildRequest(config, "dev", "raw", nil)
	require.NoError(t, err)
	resp, err = r.Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestBuildRequest_SchemaRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"title": "no id"})
	}))
	defer server.Close()

	r, err := BuildRequest(buildConfig(server.URL), "dev", "createPost", nil)
	require.NoError(t, err)

	_, err = r.Do(context.Background())
	require.Error(t, err)
	assert.True(t, yeahttp.IsKind(err, yeahttp.KindTransform))
	assert.Contains(t, err.Error(), "missing properties")
}

func TestBuildRequestFrom_KeepsBase(t *testing.T) {
	base := yeahttp.New().Header("X-Trace", "abc")
	config := buildConfig("https://api.example.com")

	r, err := BuildRequestFrom(base, config, "dev", "getUser", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", r.Config().Headers["x-trace"])
	assert.Empty(t, base.Config().BaseURL)
}
