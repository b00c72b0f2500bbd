package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/fluxo-hq/fluxo/pkg/eventbus"
	"github.com/fluxo-hq/fluxo/pkg/events"
	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/otelhelper"
)

// Runner drives one workflow run end to end: it creates the execution
// record, runs the engine, derives the terminal status from the returned
// context, and publishes the lifecycle events observers persist from.
type Runner struct {
	engine *Engine
	bus    eventbus.EventPublisher
	tracer trace.Tracer
	logger *slog.Logger
}

func NewRunner(engine *Engine, bus eventbus.EventPublisher, tracer trace.Tracer, logger *slog.Logger) *Runner {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("workflow-runner")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		engine: engine,
		bus:    bus,
		tracer: tracer,
		logger: logger,
	}
}

// Run executes the graph and returns the finished execution record together
// with the execution context. The record's status is COMPLETED exactly when
// no node failed.
func (r *Runner) Run(ctx context.Context, graph *Graph, triggerName string) (*models.Execution, *models.ExecutionContext) {
	wf := graph.Workflow

	execution := models.NewExecution(wf.ID)

	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "workflow.run",
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.WorkflowNameKey, wf.Name),
		attribute.String(otelhelper.ExecutionIDKey, execution.ID),
		attribute.String(otelhelper.TriggerNameKey, triggerName),
	)
	defer span.End()

	execution.Status = models.ExecutionStatusInProgress
	r.publish(ctx, events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, wf.ID),
		ExecutionID: execution.ID,
	})

	ec := r.engine.Run(ctx, graph, triggerName)

	if ec.Failed() {
		execution.Finish(models.ExecutionStatusFailed, strings.Join(ec.Errors, "\n"))
		otelhelper.SetError(span, errors.New(execution.Log))
		r.publish(ctx, events.ExecutionFailed{
			BaseEvent:   events.NewBaseEvent(events.ExecutionFailedEvent, wf.ID),
			ExecutionID: execution.ID,
			History:     ec.History,
			Errors:      ec.Errors,
		})
	} else {
		execution.Finish(models.ExecutionStatusCompleted, "")
		r.publish(ctx, events.ExecutionCompleted{
			BaseEvent:   events.NewBaseEvent(events.ExecutionCompletedEvent, wf.ID),
			ExecutionID: execution.ID,
			History:     ec.History,
		})
	}

	return execution, ec
}

// publish failures are logged, never surfaced: a run's outcome does not
// depend on its observers.
func (r *Runner) publish(ctx context.Context, event eventbus.Event) {
	if r.bus == nil {
		return
	}

	if err := r.bus.Publish(ctx, string(event.GetType()), event); err != nil {
		r.logger.Error("Failed to publish execution event", "event_type", event.GetType(), "error", err)
	}
}
