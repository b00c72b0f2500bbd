package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fluxo-hq/fluxo/pkg/eventbus"
	"github.com/fluxo-hq/fluxo/pkg/events"
	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/persistence"
)

// ExecutionRecorder persists execution records from the lifecycle events the
// runner publishes, keeping storage concerns out of the run path.
type ExecutionRecorder struct {
	executions persistence.ExecutionRepository
	logger     *slog.Logger
}

func NewExecutionRecorder(executions persistence.ExecutionRepository, logger *slog.Logger) *ExecutionRecorder {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExecutionRecorder{executions: executions, logger: logger}
}

// Attach registers the recorder's handlers and starts consuming.
func (r *ExecutionRecorder) Attach(ctx context.Context, bus eventbus.EventBus) error {
	if err := bus.Handle(events.ExecutionStartedEvent, r.handleStarted); err != nil {
		return err
	}

	if err := bus.Handle(events.ExecutionCompletedEvent, r.handleCompleted); err != nil {
		return err
	}

	if err := bus.Handle(events.ExecutionFailedEvent, r.handleFailed); err != nil {
		return err
	}

	return bus.Subscribe(ctx)
}

func (r *ExecutionRecorder) handleStarted(ctx context.Context, event any) error {
	started, ok := event.(*events.ExecutionStarted)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	// The bus does not order events across handlers, so the terminal event
	// may land first. Its record already carries everything this one would
	// write; saving here would regress the status to IN_PROGRESS.
	if _, err := r.executions.ExecutionByID(ctx, started.ExecutionID); err == nil {
		return nil
	} else if !persistence.IsExecutionNotFound(err) {
		return err
	}

	execution := &models.Execution{
		ID:         started.ExecutionID,
		WorkflowID: started.WorkflowID,
		Status:     models.ExecutionStatusInProgress,
		StartedAt:  started.Timestamp,
	}

	return r.executions.SaveExecution(ctx, execution)
}

func (r *ExecutionRecorder) handleCompleted(ctx context.Context, event any) error {
	completed, ok := event.(*events.ExecutionCompleted)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	execution, err := r.lookup(ctx, completed.ExecutionID, completed.WorkflowID, completed.Timestamp)
	if err != nil {
		return err
	}

	execution.Status = models.ExecutionStatusCompleted
	execution.CompletedAt = &completed.Timestamp

	return r.executions.SaveExecution(ctx, execution)
}

func (r *ExecutionRecorder) handleFailed(ctx context.Context, event any) error {
	failed, ok := event.(*events.ExecutionFailed)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	execution, err := r.lookup(ctx, failed.ExecutionID, failed.WorkflowID, failed.Timestamp)
	if err != nil {
		return err
	}

	execution.Status = models.ExecutionStatusFailed
	execution.CompletedAt = &failed.Timestamp
	execution.Log = strings.Join(failed.Errors, "\n")

	return r.executions.SaveExecution(ctx, execution)
}

// lookup fetches the record created by the started handler. If the started
// event was lost the terminal event still yields a usable record.
func (r *ExecutionRecorder) lookup(ctx context.Context, executionID, workflowID string, timestamp time.Time) (*models.Execution, error) {
	execution, err := r.executions.ExecutionByID(ctx, executionID)
	if err != nil {
		if !persistence.IsExecutionNotFound(err) {
			return nil, err
		}

		execution = &models.Execution{
			ID:         executionID,
			WorkflowID: workflowID,
			StartedAt:  timestamp,
		}
	}

	return execution, nil
}
