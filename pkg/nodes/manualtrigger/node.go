// Package manualtrigger provides the trigger node fired on user demand.
package manualtrigger

import (
	"context"
	"time"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/nodes"
)

// ManualTriggerNode fires whenever the engine asks it to. It takes no
// parameters and always produces a payload.
type ManualTriggerNode struct {
	name string
}

func NewManualTriggerNode(name string, _ map[string]any) *ManualTriggerNode {
	return &ManualTriggerNode{name: name}
}

func (n *ManualTriggerNode) Validate() error {
	return nil
}

func (n *ManualTriggerNode) Execute(_ context.Context, _ *models.ExecutionContext) (*nodes.Result, error) {
	return nodes.NewResult(map[string]any{
		"trigger_type": "manual",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}), nil
}
