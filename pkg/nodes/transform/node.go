// Package transform provides the value transformation node.
package transform

import (
	"context"
	"strings"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/nodes"
)

const (
	OperationUppercase    = "uppercase"
	OperationExtractField = "extract_field"
)

var validOperations = []string{OperationUppercase, OperationExtractField}

// TransformNode reworks the current data seed: uppercase a string, or pull a
// single field out of a mapping.
type TransformNode struct {
	name       string
	parameters map[string]any
}

func NewTransformNode(name string, parameters map[string]any) (*TransformNode, error) {
	node := &TransformNode{
		name:       name,
		parameters: parameters,
	}

	if err := node.Validate(); err != nil {
		return nil, err
	}

	return node, nil
}

func (n *TransformNode) Validate() error {
	operation, _ := n.parameters["operation"].(string)

	switch operation {
	case OperationUppercase:
		return nil
	case OperationExtractField:
		if field, _ := n.parameters["field"].(string); field == "" {
			return nodes.Errorf("field parameter is required for extract_field operation")
		}

		return nil
	default:
		return nodes.Errorf("invalid operation, must be one of %s", strings.Join(validOperations, ", "))
	}
}

func (n *TransformNode) Execute(_ context.Context, ec *models.ExecutionContext) (*nodes.Result, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	operation, _ := n.parameters["operation"].(string)
	input := ec.Current()

	switch operation {
	case OperationUppercase:
		text, ok := input.(string)
		if !ok {
			return nil, nodes.Errorf("input must be a string for uppercase operation")
		}

		return nodes.NewResult(strings.ToUpper(text)), nil
	default: // extract_field, validated above
		field, _ := n.parameters["field"].(string)

		mapping, ok := input.(map[string]any)
		if !ok {
			return nil, nodes.Errorf("input must be a mapping for extract_field operation")
		}

		// A missing key yields an absent value, not an error.
		return nodes.NewResult(mapping[field]), nil
	}
}
