package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_StatusClasses(t *testing.T) {
	tests := []struct {
		status      int
		success     bool
		redirect    bool
		clientError bool
		serverError bool
	}{
		{200, true, false, false, false},
		{204, true, false, false, false},
		{301, false, true, false, false},
		{404, false, false, true, false},
		{503, false, false, false, true},
		{100, false, false, false, false},
	}

	for _, tt := range tests {
		resp := &Response{Status: tt.status}
		if resp.IsSuccess() != tt.success {
			t.Errorf("IsSuccess(%d) = %v", tt.status, resp.IsSuccess())
		}
		if resp.IsRedirect() != tt.redirect {
			t.Errorf("IsRedirect(%d) = %v", tt.status, resp.IsRedirect())
		}
		if resp.IsClientError() != tt.clientError {
			t.Errorf("IsClientError(%d) = %v", tt.status, resp.IsClientError())
		}
		if resp.IsServerError() != tt.serverError {
			t.Errorf("IsServerError(%d) = %v", tt.status, resp.IsServerError())
		}
		if resp.IsError() != (tt.clientError || tt.serverError) {
			t.Errorf("IsError(%d) = %v", tt.status, resp.IsError())
		}
	}
}

func TestResponse_Header(t *testing.T) {
	resp := &Response{Headers: map[string]string{"content-type": "text/plain"}}
	assert.Equal(t, "text/plain", resp.Header("Content-Type"))
	assert.Equal(t, "", resp.Header("X-Missing"))
}

func TestResponse_CloneAndSetField(t *testing.T) {
	resp := &Response{
		Status:  200,
		Headers: map[string]string{"a": "1"},
		Body:    "x",
	}

	withField := resp.SetField("title", "Hello")
	assert.Nil(t, resp.Fields, "SetField must not touch the receiver")
	assert.Equal(t, "Hello", withField.Fields["title"])

	clone := withField.Clone()
	clone.Headers["a"] = "2"
	clone.Fields["title"] = "Changed"
	assert.Equal(t, "1", withField.Headers["a"])
	assert.Equal(t, "Hello", withField.Fields["title"])
}

func TestResponse_DecodeJSON(t *testing.T) {
	resp := &Response{Body: `[{"id":1},{"id":2}]`}

	var items []struct {
		ID int `json:"id"`
	}
	require.NoError(t, resp.DecodeJSON(&items))
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[1].ID)

	assert.Error(t, (&Response{Body: "<html>"}).DecodeJSON(&items))
}
