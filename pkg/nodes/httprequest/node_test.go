package httprequest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/nodes"
)

func TestHTTPRequestNode_Execute_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title": "delectus aut autem", "completed": false}`))
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("fetch", map[string]any{"url": server.URL})
	require.NoError(t, err)

	ec := models.NewExecutionContext("wf-1", nil)

	result, err := node.Execute(context.Background(), ec)
	require.NoError(t, err)

	output, ok := result.Output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, output["status"])
	assert.Equal(t, true, output["success"])
	assert.JSONEq(t, `{"title": "delectus aut autem", "completed": false}`, output["raw"].(string))

	body, ok := output["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "delectus aut autem", body["title"])

	// The parsed body, not the envelope, flows downstream.
	forward, ok := result.ForwardValue().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "delectus aut autem", forward["title"])
}

func TestHTTPRequestNode_Execute_PostWithBody(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "token-123", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 42}`))
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("create", map[string]any{
		"url":     server.URL,
		"method":  "post",
		"body":    map[string]any{"name": "fluxo"},
		"headers": map[string]any{"Authorization": "token-123"},
	})
	require.NoError(t, err)

	ec := models.NewExecutionContext("wf-1", nil)

	result, err := node.Execute(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, "fluxo", received["name"])

	output := result.Output.(map[string]any)
	assert.Equal(t, http.StatusCreated, output["status"])
}

func TestHTTPRequestNode_Execute_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("plain text"))
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("fetch", map[string]any{"url": server.URL})
	require.NoError(t, err)

	ec := models.NewExecutionContext("wf-1", nil)

	result, err := node.Execute(context.Background(), ec)
	require.NoError(t, err)

	output := result.Output.(map[string]any)
	assert.Equal(t, "plain text", output["raw"])
	assert.Nil(t, output["body"])
}

func TestHTTPRequestNode_Execute_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("fetch", map[string]any{"url": server.URL})
	require.NoError(t, err)

	ec := models.NewExecutionContext("wf-1", nil)

	result, err := node.Execute(context.Background(), ec)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, nodes.IsExecutionError(err))
	assert.Contains(t, err.Error(), "status 500")
}

func TestHTTPRequestNode_Execute_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	node, err := NewHTTPRequestNode("fetch", map[string]any{"url": url})
	require.NoError(t, err)

	ec := models.NewExecutionContext("wf-1", nil)

	_, err = node.Execute(context.Background(), ec)
	require.Error(t, err)
	assert.True(t, nodes.IsExecutionError(err))
	assert.Contains(t, err.Error(), "HTTP request failed")
}

func TestNewHTTPRequestNode_Validation(t *testing.T) {
	_, err := NewHTTPRequestNode("fetch", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required parameter: url")

	_, err = NewHTTPRequestNode("fetch", map[string]any{"url": "http://example.com", "method": "TELEPORT"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP method")
}
