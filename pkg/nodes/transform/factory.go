package transform

import "github.com/fluxo-hq/fluxo/pkg/protocol"

// Factory creates TransformNode instances.
type Factory struct{}

func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Create(name string, parameters map[string]any) (protocol.Node, error) {
	return NewTransformNode(name, parameters)
}

func (f *Factory) Kind() string {
	return "transform"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Transform Configuration",
		"description": "Transforms the current data seed",
		"properties": map[string]any{
			"operation": map[string]any{
				"type":        "string",
				"description": "Transformation to apply",
				"enum":        []string{OperationUppercase, OperationExtractField},
			},
			"field": map[string]any{
				"type":        "string",
				"description": "Field to extract (extract_field only)",
			},
		},
		"required": []string{"operation"},
	}
}
