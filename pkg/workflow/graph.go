// Package workflow materializes workflow definitions into executable graphs
// and runs them.
package workflow

import (
	"fmt"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/protocol"
	"github.com/fluxo-hq/fluxo/pkg/registry"
)

// Graph is a workflow definition together with its materialized node
// instances. Nodes are built once at registration so stateful nodes, like
// the schedule trigger, keep their state across runs.
type Graph struct {
	Workflow *models.Workflow

	nodes map[string]protocol.Node
}

// NewGraph validates the definition's structure and builds every node
// through the registry. A definition that fails either check never becomes
// runnable.
func NewGraph(wf *models.Workflow, reg *registry.Registry) (*Graph, error) {
	if err := wf.ValidateStructure(); err != nil {
		return nil, err
	}

	instances := make(map[string]protocol.Node, len(wf.Nodes))

	for _, definition := range wf.Nodes {
		instance, err := reg.Create(definition)
		if err != nil {
			return nil, fmt.Errorf("failed to build node '%s': %w", definition.Name, err)
		}

		instances[definition.Name] = instance
	}

	return &Graph{Workflow: wf, nodes: instances}, nil
}

// Node returns the materialized instance for a node name, or nil.
func (g *Graph) Node(name string) protocol.Node {
	return g.nodes[name]
}
