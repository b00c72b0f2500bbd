package workflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/nodes"
	"github.com/fluxo-hq/fluxo/pkg/protocol"
	"github.com/fluxo-hq/fluxo/pkg/registry"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []protocol.MailMessage
}

func (m *recordingMailer) Send(_ context.Context, message protocol.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, message)

	return nil
}

func (m *recordingMailer) messages() []protocol.MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]protocol.MailMessage(nil), m.sent...)
}

func mustGraph(t *testing.T, wf *models.Workflow, reg *registry.Registry) *Graph {
	t.Helper()

	graph, err := NewGraph(wf, reg)
	require.NoError(t, err)

	return graph
}

func TestEngine_Run_FetchExtractEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 1, "title": "delectus aut autem", "completed": false}`))
	}))
	defer server.Close()

	mailer := &recordingMailer{}
	reg := registry.NewRegistry(nil)
	reg.RegisterDefaultNodes(mailer)

	wf := &models.Workflow{
		ID:   "wf-todo",
		Name: "todo digest",
		Nodes: []*models.Node{
			manualTriggerNode("start"),
			{
				Name:       "fetch",
				Kind:       models.NodeKindHTTPRequest,
				Parameters: map[string]any{"url": server.URL},
			},
			{
				Name:       "extract",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "extract_field", "field": "title"},
			},
			{
				Name: "notify",
				Kind: models.NodeKindSendEmail,
				Parameters: map[string]any{
					"from_email":   "bot@example.com",
					"app_password": "app-pass",
					"to":           "team@example.com",
					"subject":      "Todo: {{extract}}",
					"body":         "Fetched status {{fetch.status}}",
				},
			},
		},
		Connections: map[string][]string{
			"start":   {"fetch"},
			"fetch":   {"extract"},
			"extract": {"notify"},
		},
		Triggers: []string{"start"},
	}

	graph := mustGraph(t, wf, reg)

	ec := NewEngine(nil).Run(context.Background(), graph, "")

	assert.False(t, ec.Failed())

	// The trigger originates the run but is not part of it.
	assert.Equal(t, []string{"fetch", "extract", "notify"}, ec.History)

	extracted, ok := ec.Get("extract")
	require.True(t, ok)
	assert.Equal(t, "delectus aut autem", extracted)

	fetch, ok := ec.Get("fetch")
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, fetch.(map[string]any)["status"])

	sent := mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Todo: delectus aut autem", sent[0].Subject)
	assert.Equal(t, "Fetched status 200", sent[0].Body)
}

func TestEngine_Run_FailurePrunesBranchOnly(t *testing.T) {
	reg := testRegistry(t)

	// The trigger payload is a mapping, so uppercase fails while the
	// extract branch keeps going.
	wf := &models.Workflow{
		ID:   "wf-branch",
		Name: "two branches",
		Nodes: []*models.Node{
			manualTriggerNode("start"),
			{
				Name:       "shout",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "uppercase"},
			},
			{
				Name:       "shout-again",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "uppercase"},
			},
			{
				Name:       "pick",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "extract_field", "field": "trigger_type"},
			},
		},
		Connections: map[string][]string{
			"start": {"shout", "pick"},
			"shout": {"shout-again"},
		},
		Triggers: []string{"start"},
	}

	graph := mustGraph(t, wf, reg)

	ec := NewEngine(nil).Run(context.Background(), graph, "")

	assert.True(t, ec.Failed())
	require.Len(t, ec.Errors, 1)
	assert.Contains(t, ec.Errors[0], "Error in node shout:")
	assert.Contains(t, ec.Errors[0], "input must be a string")

	// shout-again was pruned, pick still ran.
	assert.Equal(t, []string{"pick"}, ec.History)

	_, ran := ec.Get("shout-again")
	assert.False(t, ran)

	picked, ok := ec.Get("pick")
	require.True(t, ok)
	assert.Equal(t, "manual", picked)
}

func TestEngine_Run_HTTPErrorStatusFailsRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	reg := testRegistry(t)

	wf := &models.Workflow{
		ID:   "wf-http",
		Name: "flaky upstream",
		Nodes: []*models.Node{
			manualTriggerNode("start"),
			{
				Name:       "fetch",
				Kind:       models.NodeKindHTTPRequest,
				Parameters: map[string]any{"url": server.URL},
			},
			{
				Name:       "shout",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "uppercase"},
			},
		},
		Connections: map[string][]string{
			"start": {"fetch"},
			"fetch": {"shout"},
		},
		Triggers: []string{"start"},
	}

	graph := mustGraph(t, wf, reg)

	ec := NewEngine(nil).Run(context.Background(), graph, "")

	assert.True(t, ec.Failed())
	require.Len(t, ec.Errors, 1)
	assert.Contains(t, ec.Errors[0], "Error in node fetch: HTTP request failed: status 500")
	assert.Empty(t, ec.History)
}

func TestEngine_Run_ConvergingPathsRunNodeOnce(t *testing.T) {
	reg := testRegistry(t)

	wf := &models.Workflow{
		ID:   "wf-diamond",
		Name: "diamond",
		Nodes: []*models.Node{
			manualTriggerNode("start"),
			{
				Name:       "left",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "extract_field", "field": "trigger_type"},
			},
			{
				Name:       "right",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "uppercase"},
			},
			{
				Name:       "join",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "uppercase"},
			},
		},
		Connections: map[string][]string{
			"start": {"left", "right"},
			"left":  {"join"},
			"right": {"join"},
		},
		Triggers: []string{"start"},
	}

	graph := mustGraph(t, wf, reg)

	ec := NewEngine(nil).Run(context.Background(), graph, "")

	assert.False(t, ec.Failed())

	// join appears once even though two paths converge on it.
	assert.Equal(t, []string{"left", "right", "join"}, ec.History)

	// The seed chains through breadth-first order: left extracts "manual",
	// right uppercases it, join sees right's output.
	joined, ok := ec.Get("join")
	require.True(t, ok)
	assert.Equal(t, "MANUAL", joined)
}

func TestEngine_Run_NamedTriggerFiresAlone(t *testing.T) {
	reg := testRegistry(t)

	wf := &models.Workflow{
		ID:   "wf-two-triggers",
		Name: "two triggers",
		Nodes: []*models.Node{
			manualTriggerNode("manual-start"),
			{
				Name:        "tick",
				Kind:        models.NodeKindTrigger,
				TriggerKind: models.TriggerKindScheduleInterval,
				Parameters:  map[string]any{"interval_minutes": 5},
			},
			{
				Name:       "pick",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "extract_field", "field": "trigger_type"},
			},
		},
		Connections: map[string][]string{
			"manual-start": {"pick"},
			"tick":         {"pick"},
		},
		Triggers: []string{"manual-start", "tick"},
	}

	graph := mustGraph(t, wf, reg)

	ec := NewEngine(nil).Run(context.Background(), graph, "tick")

	assert.False(t, ec.Failed())
	assert.Equal(t, []string{"pick"}, ec.History)

	picked, ok := ec.Get("pick")
	require.True(t, ok)
	assert.Equal(t, "schedule", picked)

	_, manualRan := ec.Get("manual-start")
	assert.False(t, manualRan)
}

func TestEngine_Run_EmptyTriggerFiresOnlyManualTriggers(t *testing.T) {
	reg := testRegistry(t)

	wf := &models.Workflow{
		ID:   "wf-two-triggers",
		Name: "two triggers",
		Nodes: []*models.Node{
			manualTriggerNode("manual-start"),
			{
				Name:        "tick",
				Kind:        models.NodeKindTrigger,
				TriggerKind: models.TriggerKindScheduleInterval,
				Parameters:  map[string]any{"interval_minutes": 5},
			},
		},
		Triggers: []string{"manual-start", "tick"},
	}

	graph := mustGraph(t, wf, reg)

	ec := NewEngine(nil).Run(context.Background(), graph, "")

	assert.False(t, ec.Failed())
	assert.Empty(t, ec.History)

	_, manualFired := ec.Get("manual-start")
	assert.True(t, manualFired)

	_, scheduleFired := ec.Get("tick")
	assert.False(t, scheduleFired)
}

func TestEngine_Run_NoManualTrigger(t *testing.T) {
	reg := testRegistry(t)

	wf := &models.Workflow{
		ID:   "wf-schedule-only",
		Name: "schedule only",
		Nodes: []*models.Node{
			{
				Name:        "tick",
				Kind:        models.NodeKindTrigger,
				TriggerKind: models.TriggerKindScheduleCron,
				Parameters:  map[string]any{"cron_expression": "0 * * * *"},
			},
		},
		Triggers: []string{"tick"},
	}

	graph := mustGraph(t, wf, reg)

	ec := NewEngine(nil).Run(context.Background(), graph, "")

	assert.True(t, ec.Failed())
	require.Len(t, ec.Errors, 1)
	assert.Contains(t, ec.Errors[0], "has no manual trigger")
	assert.Empty(t, ec.History)
}

func TestEngine_Run_UnknownTriggerName(t *testing.T) {
	reg := testRegistry(t)

	wf := &models.Workflow{
		ID:       "wf-1",
		Name:     "simple",
		Nodes:    []*models.Node{manualTriggerNode("start")},
		Triggers: []string{"start"},
	}

	graph := mustGraph(t, wf, reg)

	ec := NewEngine(nil).Run(context.Background(), graph, "missing")

	assert.True(t, ec.Failed())
	require.Len(t, ec.Errors, 1)
	assert.Contains(t, ec.Errors[0], "trigger node 'missing' not found")
}

func TestEngine_Run_TriggerSeedsContextWithoutEnteringHistory(t *testing.T) {
	reg := testRegistry(t)

	wf := &models.Workflow{
		ID:   "wf-seed",
		Name: "seed",
		Nodes: []*models.Node{
			manualTriggerNode("start"),
			{
				Name:       "pick",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "extract_field", "field": "trigger_type"},
			},
		},
		Connections: map[string][]string{"start": {"pick"}},
		Triggers:    []string{"start"},
	}

	graph := mustGraph(t, wf, reg)

	ec := NewEngine(nil).Run(context.Background(), graph, "")

	assert.False(t, ec.Failed())
	assert.Equal(t, []string{"pick"}, ec.History)

	// The payload is stored under the trigger's name and seeded downstream,
	// even though the trigger itself never entered the history.
	payload, ok := ec.Get("start")
	require.True(t, ok)
	assert.Equal(t, "manual", payload.(map[string]any)["trigger_type"])

	picked, ok := ec.Get("pick")
	require.True(t, ok)
	assert.Equal(t, "manual", picked)
}

type silentTriggerFactory struct{}

func (silentTriggerFactory) Create(string, map[string]any) (protocol.Node, error) {
	return silentTriggerNode{}, nil
}
func (silentTriggerFactory) Kind() string           { return "trigger:manual" }
func (silentTriggerFactory) Schema() map[string]any { return nil }

type silentTriggerNode struct{}

func (silentTriggerNode) Validate() error { return nil }

func (silentTriggerNode) Execute(context.Context, *models.ExecutionContext) (*nodes.Result, error) {
	return nil, nil
}

func TestEngine_Run_EmptyTriggerResultSkipsSuccessors(t *testing.T) {
	reg := testRegistry(t)
	reg.RegisterNode(silentTriggerFactory{})

	wf := &models.Workflow{
		ID:   "wf-silent",
		Name: "silent",
		Nodes: []*models.Node{
			manualTriggerNode("start"),
			{
				Name:       "pick",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "extract_field", "field": "trigger_type"},
			},
		},
		Connections: map[string][]string{"start": {"pick"}},
		Triggers:    []string{"start"},
	}

	graph := mustGraph(t, wf, reg)

	ec := NewEngine(nil).Run(context.Background(), graph, "")

	// A trigger without a payload opens nothing; the run is still clean.
	assert.False(t, ec.Failed())
	assert.Empty(t, ec.History)

	_, ran := ec.Get("pick")
	assert.False(t, ran)
	assert.Nil(t, ec.Current())
}

type panicFactory struct{}

func (panicFactory) Create(string, map[string]any) (protocol.Node, error) { return panicNode{}, nil }
func (panicFactory) Kind() string                                         { return "panic" }
func (panicFactory) Schema() map[string]any                               { return nil }

type panicNode struct{}

func (panicNode) Validate() error { return nil }

func (panicNode) Execute(context.Context, *models.ExecutionContext) (*nodes.Result, error) {
	panic("boom")
}

func TestEngine_Run_PanickingNodeIsContained(t *testing.T) {
	reg := testRegistry(t)
	reg.RegisterNode(panicFactory{})

	wf := &models.Workflow{
		ID:   "wf-panic",
		Name: "panic pipeline",
		Nodes: []*models.Node{
			manualTriggerNode("start"),
			{Name: "blow-up", Kind: models.NodeKind("panic")},
			{
				Name:       "pick",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "extract_field", "field": "trigger_type"},
			},
		},
		Connections: map[string][]string{
			"start": {"blow-up", "pick"},
		},
		Triggers: []string{"start"},
	}

	graph := mustGraph(t, wf, reg)

	ec := NewEngine(nil).Run(context.Background(), graph, "")

	assert.True(t, ec.Failed())
	require.Len(t, ec.Errors, 1)
	assert.Contains(t, ec.Errors[0], "Unexpected error in node blow-up: panic: boom")
	assert.Equal(t, []string{"pick"}, ec.History)
}
