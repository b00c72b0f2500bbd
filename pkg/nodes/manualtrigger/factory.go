package manualtrigger

import "github.com/fluxo-hq/fluxo/pkg/protocol"

// Factory creates ManualTriggerNode instances.
type Factory struct{}

func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Create(name string, parameters map[string]any) (protocol.Node, error) {
	return NewManualTriggerNode(name, parameters), nil
}

func (f *Factory) Kind() string {
	return "trigger:manual"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Manual Trigger Configuration",
		"description": "Fires when a user runs the workflow on demand; no configuration",
		"properties":  map[string]any{},
	}
}
