// Package models defines the core domain models for node-based workflow automation.
package models

import (
	"errors"
	"fmt"
	"time"
)

// Workflow is a named directed graph of nodes. Connections map a source node
// name to its successors in declared order. Triggers lists the node names
// that may originate a run.
type Workflow struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"        validate:"required,min=3"`
	Description string              `json:"description,omitempty"`
	Nodes       []*Node             `json:"nodes"       validate:"required,min=1"`
	Connections map[string][]string `json:"connections"`
	Triggers    []string            `json:"triggers"    validate:"required,min=1"`
	Active      bool                `json:"active"`
	Owner       string              `json:"owner,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

var (
	ErrNoNodes           = errors.New("workflow has no nodes")
	ErrNoTriggers        = errors.New("workflow has no trigger nodes")
	ErrDuplicateNode     = errors.New("duplicate node name")
	ErrUnknownNode       = errors.New("connection references unknown node")
	ErrTriggerNotFound   = errors.New("trigger references unknown node")
	ErrTriggerNotTrigger = errors.New("trigger references a non-trigger node")
	ErrMissingNodeName   = errors.New("node name is required")
)

// ValidateStructure checks the graph invariants: non-empty node set, unique
// node names, every connection endpoint resolvable, and at least one trigger
// node referencing an actual trigger.
func (w *Workflow) ValidateStructure() error {
	if len(w.Nodes) == 0 {
		return ErrNoNodes
	}

	seen := make(map[string]*Node, len(w.Nodes))

	for _, node := range w.Nodes {
		if node.Name == "" {
			return ErrMissingNodeName
		}

		if _, dup := seen[node.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, node.Name)
		}

		seen[node.Name] = node
	}

	for source, targets := range w.Connections {
		if _, ok := seen[source]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownNode, source)
		}

		for _, target := range targets {
			if _, ok := seen[target]; !ok {
				return fmt.Errorf("%w: %s -> %s", ErrUnknownNode, source, target)
			}
		}
	}

	if len(w.Triggers) == 0 {
		return ErrNoTriggers
	}

	for _, name := range w.Triggers {
		node, ok := seen[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTriggerNotFound, name)
		}

		if !node.IsTrigger() {
			return fmt.Errorf("%w: %s", ErrTriggerNotTrigger, name)
		}
	}

	return nil
}

// NodeByName returns the node with the given name, or nil.
func (w *Workflow) NodeByName(name string) *Node {
	for _, node := range w.Nodes {
		if node.Name == name {
			return node
		}
	}

	return nil
}

// Successors returns the declared-order successors of a node.
func (w *Workflow) Successors(name string) []string {
	return w.Connections[name]
}

// ManualTriggers returns manual trigger nodes in definition order.
func (w *Workflow) ManualTriggers() []*Node {
	var out []*Node

	for _, node := range w.Nodes {
		if node.IsTrigger() && node.TriggerKind == TriggerKindManual {
			out = append(out, node)
		}
	}

	return out
}

// ScheduleTriggers returns schedule trigger nodes in definition order.
func (w *Workflow) ScheduleTriggers() []*Node {
	var out []*Node

	for _, node := range w.Nodes {
		if node.IsSchedule() {
			out = append(out, node)
		}
	}

	return out
}
