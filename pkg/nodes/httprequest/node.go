// Package httprequest provides the HTTP request node.
package httprequest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/nodes"
)

// requestTimeout bounds every request; it is fixed by contract.
const requestTimeout = 10 * time.Second

var validMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodPut: true,
	http.MethodPatch: true, http.MethodDelete: true, http.MethodHead: true,
}

// HTTPRequestNode performs one HTTP request. Its stored result is the
// envelope {status, success, raw, body}; the parsed JSON body (when the
// response is JSON) is what flows downstream as the data seed.
type HTTPRequestNode struct {
	name       string
	parameters map[string]any
	client     *http.Client
}

func NewHTTPRequestNode(name string, parameters map[string]any) (*HTTPRequestNode, error) {
	node := &HTTPRequestNode{
		name:       name,
		parameters: parameters,
		client:     &http.Client{Timeout: requestTimeout},
	}

	if err := node.Validate(); err != nil {
		return nil, err
	}

	return node, nil
}

func (n *HTTPRequestNode) Validate() error {
	url, _ := n.parameters["url"].(string)
	if url == "" {
		return nodes.Errorf("missing required parameter: url")
	}

	if method, ok := n.parameters["method"].(string); ok && method != "" {
		if !validMethods[strings.ToUpper(method)] {
			return nodes.Errorf("invalid HTTP method: %s", method)
		}
	}

	return nil
}

func (n *HTTPRequestNode) Execute(ctx context.Context, _ *models.ExecutionContext) (*nodes.Result, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	url, _ := n.parameters["url"].(string)
	method := n.method()

	request, err := n.buildRequest(ctx, method, url)
	if err != nil {
		return nil, nodes.Errorf("HTTP request failed: %v", err)
	}

	response, err := n.client.Do(request)
	if err != nil {
		return nil, nodes.Errorf("HTTP request failed: %v", err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, nodes.Errorf("HTTP request failed: failed to read response: %v", err)
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		body = nil
	}

	if response.StatusCode >= http.StatusBadRequest {
		return nil, nodes.Errorf("HTTP request failed: status %d", response.StatusCode)
	}

	output := map[string]any{
		"status":  response.StatusCode,
		"success": response.StatusCode >= http.StatusOK && response.StatusCode < http.StatusBadRequest,
		"raw":     string(raw),
		"body":    body,
	}

	return &nodes.Result{Output: output, Forward: body}, nil
}

func (n *HTTPRequestNode) method() string {
	if method, ok := n.parameters["method"].(string); ok && method != "" {
		return strings.ToUpper(method)
	}

	return http.MethodGet
}

func (n *HTTPRequestNode) buildRequest(ctx context.Context, method, url string) (*http.Request, error) {
	var payload io.Reader

	body, hasBody := n.parameters["body"]
	if hasBody && body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}

		payload = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, err
	}

	if headers, ok := n.parameters["headers"].(map[string]any); ok {
		for key, value := range headers {
			if text, ok := value.(string); ok {
				request.Header.Set(key, text)
			}
		}
	}

	if payload != nil && request.Header.Get("Content-Type") == "" {
		request.Header.Set("Content-Type", "application/json")
	}

	return request, nil
}
