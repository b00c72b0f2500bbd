package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/protocol"
	"github.com/fluxo-hq/fluxo/pkg/registry"
)

type nullMailer struct{}

func (nullMailer) Send(context.Context, protocol.MailMessage) error { return nil }

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	r := registry.NewRegistry(nil)
	r.RegisterDefaultNodes(nullMailer{})

	return r
}

func manualTriggerNode(name string) *models.Node {
	return &models.Node{
		Name:        name,
		Kind:        models.NodeKindTrigger,
		TriggerKind: models.TriggerKindManual,
	}
}

func TestNewGraph(t *testing.T) {
	wf := &models.Workflow{
		ID:   "wf-1",
		Name: "uppercase pipeline",
		Nodes: []*models.Node{
			manualTriggerNode("start"),
			{
				Name:       "shout",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "uppercase"},
			},
		},
		Connections: map[string][]string{"start": {"shout"}},
		Triggers:    []string{"start"},
	}

	graph, err := NewGraph(wf, testRegistry(t))
	require.NoError(t, err)
	assert.NotNil(t, graph.Node("start"))
	assert.NotNil(t, graph.Node("shout"))
	assert.Nil(t, graph.Node("missing"))
}

func TestNewGraph_InvalidStructure(t *testing.T) {
	wf := &models.Workflow{
		ID:       "wf-1",
		Name:     "broken",
		Nodes:    []*models.Node{manualTriggerNode("start")},
		Triggers: []string{"missing"},
	}

	_, err := NewGraph(wf, testRegistry(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTriggerNotFound)
}

func TestNewGraph_BadNodeParameters(t *testing.T) {
	wf := &models.Workflow{
		ID:   "wf-1",
		Name: "bad params",
		Nodes: []*models.Node{
			manualTriggerNode("start"),
			{
				Name:       "fetch",
				Kind:       models.NodeKindHTTPRequest,
				Parameters: map[string]any{},
			},
		},
		Connections: map[string][]string{"start": {"fetch"}},
		Triggers:    []string{"start"},
	}

	_, err := NewGraph(wf, testRegistry(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build node 'fetch'")
}

func TestNewGraph_ScheduleTriggerKeepsState(t *testing.T) {
	wf := &models.Workflow{
		ID:   "wf-1",
		Name: "scheduled",
		Nodes: []*models.Node{
			{
				Name:        "tick",
				Kind:        models.NodeKindTrigger,
				TriggerKind: models.TriggerKindScheduleInterval,
				Parameters:  map[string]any{"interval_minutes": 5},
			},
		},
		Triggers: []string{"tick"},
	}

	graph, err := NewGraph(wf, testRegistry(t))
	require.NoError(t, err)

	// Same instance on every lookup, so per-node state survives runs.
	assert.Same(t, graph.Node("tick"), graph.Node("tick"))
}
