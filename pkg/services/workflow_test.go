package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/persistence"
	"github.com/fluxo-hq/fluxo/pkg/persistence/file"
	"github.com/fluxo-hq/fluxo/pkg/protocol"
	"github.com/fluxo-hq/fluxo/pkg/registry"
	"github.com/fluxo-hq/fluxo/pkg/workflow"
)

type nullMailer struct{}

func (nullMailer) Send(context.Context, protocol.MailMessage) error { return nil }

type fakeSchedules struct {
	registered   map[string]int
	deregistered []string
	failWith     error
}

func newFakeSchedules() *fakeSchedules {
	return &fakeSchedules{registered: make(map[string]int)}
}

func (f *fakeSchedules) Register(graph *workflow.Graph) error {
	if f.failWith != nil {
		return f.failWith
	}

	f.registered[graph.Workflow.ID]++

	return nil
}

func (f *fakeSchedules) Deregister(workflowID string) {
	f.deregistered = append(f.deregistered, workflowID)
}

type serviceFixture struct {
	service     *Workflow
	persistence persistence.Persistence
	schedules   *fakeSchedules
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	p := file.NewPersistence(t.TempDir())

	reg := registry.NewRegistry(nil)
	reg.RegisterDefaultNodes(nullMailer{})

	schedules := newFakeSchedules()
	runner := workflow.NewRunner(workflow.NewEngine(nil), nil, nil, nil)

	return &serviceFixture{
		service:     NewWorkflow(p, reg, runner, schedules, nil),
		persistence: p,
		schedules:   schedules,
	}
}

func manualDefinition(active bool) *models.Workflow {
	return &models.Workflow{
		Name: "pick pipeline",
		Nodes: []*models.Node{
			{Name: "start", Kind: models.NodeKindTrigger, TriggerKind: models.TriggerKindManual},
			{
				Name:       "pick",
				Kind:       models.NodeKindTransform,
				Parameters: map[string]any{"operation": "extract_field", "field": "trigger_type"},
			},
		},
		Connections: map[string][]string{"start": {"pick"}},
		Triggers:    []string{"start"},
		Active:      active,
	}
}

func scheduledDefinition() *models.Workflow {
	wf := manualDefinition(true)
	wf.Name = "digest pipeline"
	wf.Nodes = append(wf.Nodes, &models.Node{
		Name:        "every-morning",
		Kind:        models.NodeKindTrigger,
		TriggerKind: models.TriggerKindScheduleCron,
		Parameters:  map[string]any{"cron_expression": "0 9 * * *"},
	})
	wf.Triggers = append(wf.Triggers, "every-morning")

	return wf
}

func TestWorkflowService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, scheduledDefinition())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	stored, err := f.persistence.WorkflowByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "digest pipeline", stored.Name)

	assert.Equal(t, 1, f.schedules.registered[created.ID])
}

func TestWorkflowService_Create_InactiveSkipsSchedules(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.Create(context.Background(), manualDefinition(false))
	require.NoError(t, err)

	assert.Zero(t, f.schedules.registered[created.ID])
}

func TestWorkflowService_Create_InvalidDefinition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Struct validation: a workflow needs a name and at least one node.
	_, err := f.service.Create(ctx, &models.Workflow{Name: "x"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	// Graph validation: parameters must satisfy the node schema.
	bad := manualDefinition(true)
	bad.Nodes[1].Parameters = map[string]any{"operation": "reverse"}

	_, err = f.service.Create(ctx, bad)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	all, err := f.persistence.Workflows(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWorkflowService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, scheduledDefinition())
	require.NoError(t, err)

	replacement := manualDefinition(true)
	replacement.Name = "renamed pipeline"

	updated, err := f.service.Update(ctx, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	assert.Contains(t, f.schedules.deregistered, created.ID)
	assert.Equal(t, 2, f.schedules.registered[created.ID])

	stored, err := f.persistence.WorkflowByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed pipeline", stored.Name)
}

func TestWorkflowService_Update_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Update(context.Background(), "missing", manualDefinition(true))
	assert.True(t, IsNotFoundError(err))
}

func TestWorkflowService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, manualDefinition(true))
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, created.ID))
	assert.Contains(t, f.schedules.deregistered, created.ID)

	_, err = f.service.FetchByID(ctx, created.ID)
	assert.True(t, IsNotFoundError(err))

	assert.True(t, IsNotFoundError(f.service.Delete(ctx, created.ID)))
}

func TestWorkflowService_Run(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, manualDefinition(true))
	require.NoError(t, err)

	result, err := f.service.Run(ctx, created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, result.Status)
	assert.Equal(t, created.ID, result.WorkflowID)
	assert.Equal(t, []string{"pick"}, result.History)
	assert.Empty(t, result.Errors)
}

func TestWorkflowService_Run_InactiveWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, manualDefinition(false))
	require.NoError(t, err)

	_, err = f.service.Run(ctx, created.ID, "")
	require.ErrorIs(t, err, ErrWorkflowInactive)
	assert.True(t, IsConflictError(err))
}

func TestWorkflowService_Run_RejectsScheduleTrigger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, scheduledDefinition())
	require.NoError(t, err)

	_, err = f.service.Run(ctx, created.ID, "every-morning")
	require.ErrorIs(t, err, ErrTriggerNotManual)

	_, err = f.service.Run(ctx, created.ID, "nonexistent")
	require.ErrorIs(t, err, ErrTriggerNotManual)

	// The named manual trigger still works.
	execution, err := f.service.Run(ctx, created.ID, "start")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
}

func TestWorkflowService_Run_MaterializesFromStorage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Stored directly, so the service has no cached graph for it.
	wf := manualDefinition(true)
	wf.ID = "stored-wf"
	require.NoError(t, f.persistence.SaveWorkflow(ctx, wf))

	execution, err := f.service.Run(ctx, "stored-wf", "")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
}

func TestWorkflowService_RestoreSchedules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active := scheduledDefinition()
	active.ID = "wf-active"
	require.NoError(t, f.persistence.SaveWorkflow(ctx, active))

	inactive := manualDefinition(false)
	inactive.ID = "wf-inactive"
	require.NoError(t, f.persistence.SaveWorkflow(ctx, inactive))

	broken := manualDefinition(true)
	broken.ID = "wf-broken"
	broken.Nodes[1].Parameters = map[string]any{"operation": "reverse"}
	require.NoError(t, f.persistence.SaveWorkflow(ctx, broken))

	require.NoError(t, f.service.RestoreSchedules(ctx))

	assert.Equal(t, 1, f.schedules.registered["wf-active"])
	assert.Zero(t, f.schedules.registered["wf-inactive"])
	assert.Zero(t, f.schedules.registered["wf-broken"])
}

func TestWorkflowService_Executions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, manualDefinition(true))
	require.NoError(t, err)

	execution := models.NewExecution(created.ID)
	execution.Finish(models.ExecutionStatusCompleted, "")
	require.NoError(t, f.persistence.SaveExecution(ctx, execution))

	all, err := f.service.Executions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	byWorkflow, err := f.service.ExecutionsByWorkflowID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, byWorkflow, 1)
	assert.Equal(t, execution.ID, byWorkflow[0].ID)

	_, err = f.service.ExecutionsByWorkflowID(ctx, "missing")
	assert.True(t, IsNotFoundError(err))

	loaded, err := f.service.ExecutionByID(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, loaded.Status)
}

func TestWorkflowService_HealthCheck(t *testing.T) {
	f := newFixture(t)

	message, healthy := f.service.HealthCheck(context.Background())
	assert.True(t, healthy)
	assert.Contains(t, message, "healthy")
}
