package httprequest

import "github.com/fluxo-hq/fluxo/pkg/protocol"

// Factory creates HTTPRequestNode instances.
type Factory struct{}

func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Create(name string, parameters map[string]any) (protocol.Node, error) {
	return NewHTTPRequestNode(name, parameters)
}

func (f *Factory) Kind() string {
	return "http_request"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "HTTP Request Configuration",
		"description": "Performs an HTTP request with a fixed 10 second timeout",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "URL to request",
			},
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method",
				"default":     "GET",
				"enum":        []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"},
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Request headers",
			},
			"body": map[string]any{
				"description": "JSON-serialisable request body",
			},
		},
		"required": []string{"url"},
	}
}
