// Package protocol defines the interfaces and contracts for pluggable nodes.
package protocol

import (
	"context"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/nodes"
)

// Node is one executable step in a workflow. Validate checks the parameter
// bag and fails with a *nodes.ExecutionError describing the first missing or
// invalid field; Execute performs the node's work against the run context.
// Execute must call Validate before any side effect.
type Node interface {
	Validate() error
	Execute(ctx context.Context, ec *models.ExecutionContext) (*nodes.Result, error)
}

// NodeFactory creates node instances for one node kind and describes the
// kind's configuration.
type NodeFactory interface {
	// Create materialises a node from its definition parameters.
	Create(name string, parameters map[string]any) (Node, error)

	// Kind returns the node kind (and trigger kind, for triggers) this
	// factory serves, e.g. "trigger:manual" or "http_request".
	Kind() string

	// Schema returns the JSON schema for the node's parameter bag.
	Schema() map[string]any
}
