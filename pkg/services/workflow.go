package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/persistence"
	"github.com/fluxo-hq/fluxo/pkg/registry"
	"github.com/fluxo-hq/fluxo/pkg/workflow"
)

// GraphRunner runs one workflow graph from a named trigger.
type GraphRunner interface {
	Run(ctx context.Context, graph *workflow.Graph, triggerName string) (*models.Execution, *models.ExecutionContext)
}

// ScheduleManager owns the schedule trigger jobs of registered workflows.
type ScheduleManager interface {
	Register(graph *workflow.Graph) error
	Deregister(workflowID string)
}

// Workflow is the workflow lifecycle service. Definitions are validated and
// materialized into graphs on write, so a stored workflow is always runnable,
// and its schedule triggers track its active flag.
type Workflow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	runner      GraphRunner
	schedules   ScheduleManager
	validate    *validator.Validate
	logger      *slog.Logger

	mu     sync.Mutex
	graphs map[string]*workflow.Graph
}

func NewWorkflow(
	persistence persistence.Persistence,
	reg *registry.Registry,
	runner GraphRunner,
	schedules ScheduleManager,
	logger *slog.Logger,
) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}

	return &Workflow{
		persistence: persistence,
		registry:    reg,
		runner:      runner,
		schedules:   schedules,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
		graphs:      make(map[string]*workflow.Graph),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns all stored workflows.
func (s *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := s.persistence.Workflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (s *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return s.persistence.WorkflowByID(ctx, id)
}

// Create validates, materializes and stores a new workflow. Schedule triggers
// of an active workflow are registered before Create returns.
func (s *Workflow) Create(ctx context.Context, wf *models.Workflow) (*models.Workflow, error) {
	wf.ID = uuid.NewString()

	graph, err := s.buildGraph(wf)
	if err != nil {
		return nil, err
	}

	if err := s.persistence.SaveWorkflow(ctx, wf); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	if err := s.installGraph(graph); err != nil {
		return nil, err
	}

	return wf, nil
}

// Update replaces the definition of an existing workflow. The old schedule
// jobs are removed before the new graph's jobs are registered.
func (s *Workflow) Update(ctx context.Context, id string, wf *models.Workflow) (*models.Workflow, error) {
	existing, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	wf.ID = id
	wf.CreatedAt = existing.CreatedAt
	if wf.Owner == "" {
		wf.Owner = existing.Owner
	}

	graph, err := s.buildGraph(wf)
	if err != nil {
		return nil, err
	}

	s.schedules.Deregister(id)

	if err := s.persistence.SaveWorkflow(ctx, wf); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	if err := s.installGraph(graph); err != nil {
		return nil, err
	}

	return wf, nil
}

// Delete removes a workflow and its schedule jobs.
func (s *Workflow) Delete(ctx context.Context, id string) error {
	if _, err := s.persistence.WorkflowByID(ctx, id); err != nil {
		return err
	}

	s.schedules.Deregister(id)

	s.mu.Lock()
	delete(s.graphs, id)
	s.mu.Unlock()

	if err := s.persistence.DeleteWorkflow(ctx, id); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// RunResult summarizes one finished run.
type RunResult struct {
	ExecutionID string                 `json:"execution_id"`
	WorkflowID  string                 `json:"workflow_id"`
	Status      models.ExecutionStatus `json:"status"`
	History     []string               `json:"history"`
	Errors      []string               `json:"errors"`
}

// Run fires a workflow through the API. Only manual triggers may be named;
// an empty trigger name fires every manual trigger in the workflow.
func (s *Workflow) Run(ctx context.Context, id, triggerName string) (*RunResult, error) {
	graph, err := s.graph(ctx, id)
	if err != nil {
		return nil, err
	}

	if !graph.Workflow.Active {
		return nil, ErrWorkflowInactive
	}

	if triggerName != "" {
		node := graph.Workflow.NodeByName(triggerName)
		if node == nil || !node.IsTrigger() || node.TriggerKind != models.TriggerKindManual {
			return nil, fmt.Errorf("%w: %s", ErrTriggerNotManual, triggerName)
		}
	}

	execution, ec := s.runner.Run(ctx, graph, triggerName)

	return &RunResult{
		ExecutionID: execution.ID,
		WorkflowID:  execution.WorkflowID,
		Status:      execution.Status,
		History:     ec.History,
		Errors:      ec.Errors,
	}, nil
}

// Executions returns all execution records.
func (s *Workflow) Executions(ctx context.Context) ([]*models.Execution, error) {
	executions, err := s.persistence.Executions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	return executions, nil
}

// ExecutionsByWorkflowID returns the execution records of one workflow.
func (s *Workflow) ExecutionsByWorkflowID(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	if _, err := s.persistence.WorkflowByID(ctx, workflowID); err != nil {
		return nil, err
	}

	executions, err := s.persistence.ExecutionsByWorkflowID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	return executions, nil
}

// ExecutionByID retrieves one execution record.
func (s *Workflow) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	return s.persistence.ExecutionByID(ctx, id)
}

// RestoreSchedules rebuilds the schedule jobs of every stored active workflow.
// Called once at startup; a workflow that no longer materializes is logged
// and skipped rather than blocking boot.
func (s *Workflow) RestoreSchedules(ctx context.Context) error {
	workflows, err := s.persistence.Workflows(ctx)
	if err != nil {
		return fmt.Errorf("failed to load workflows: %w", err)
	}

	for _, wf := range workflows {
		if !wf.Active {
			continue
		}

		graph, err := s.buildGraph(wf)
		if err != nil {
			s.logger.Error("Skipping workflow with invalid definition", "workflow_id", wf.ID, "error", err)

			continue
		}

		if err := s.installGraph(graph); err != nil {
			s.logger.Error("Failed to restore schedule jobs", "workflow_id", wf.ID, "error", err)
		}
	}

	return nil
}

// buildGraph validates the definition and materializes its nodes. All
// failures here are the caller's fault.
func (s *Workflow) buildGraph(wf *models.Workflow) (*workflow.Graph, error) {
	if err := s.validate.Struct(wf); err != nil {
		return nil, newValidationError(ErrInvalidDefinition, err)
	}

	graph, err := workflow.NewGraph(wf, s.registry)
	if err != nil {
		return nil, newValidationError(ErrInvalidDefinition, err)
	}

	return graph, nil
}

// installGraph caches the graph and registers its schedule jobs when the
// workflow is active.
func (s *Workflow) installGraph(graph *workflow.Graph) error {
	wf := graph.Workflow

	s.mu.Lock()
	s.graphs[wf.ID] = graph
	s.mu.Unlock()

	if !wf.Active {
		return nil
	}

	if err := s.schedules.Register(graph); err != nil {
		return fmt.Errorf("failed to register schedule jobs for workflow %s: %w", wf.ID, err)
	}

	return nil
}

// graph returns the cached graph, materializing it from storage on a miss.
func (s *Workflow) graph(ctx context.Context, id string) (*workflow.Graph, error) {
	s.mu.Lock()
	cached, ok := s.graphs[id]
	s.mu.Unlock()

	if ok {
		return cached, nil
	}

	wf, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	graph, err := s.buildGraph(wf)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.graphs[id] = graph
	s.mu.Unlock()

	return graph, nil
}
