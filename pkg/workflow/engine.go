package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/nodes"
	"github.com/fluxo-hq/fluxo/pkg/protocol"
)

// Engine walks a graph breadth-first from its fired triggers. Node failures
// are contained: the failing node's error is recorded on the context, its
// successors are pruned, and the traversal carries on through the rest of
// the graph. A node is attempted at most once per run, even when several
// paths converge on it.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{logger: logger}
}

// Run executes the graph and always returns the execution context, however
// far the run got. An empty triggerName fires every manual trigger; a named
// trigger fires alone. Triggers originate the run but are not part of it:
// their payload seeds the context and their name never enters the history.
func (e *Engine) Run(ctx context.Context, graph *Graph, triggerName string) *models.ExecutionContext {
	wf := graph.Workflow
	ec := models.NewExecutionContext(wf.ID, e.logger)

	logger := e.logger.With("execution_id", ec.ID, "workflow_id", wf.ID, "workflow_name", wf.Name)
	logger.Info("Starting workflow run", "trigger", triggerName)

	attempted := make(map[string]bool, len(wf.Nodes))

	queue := e.fireTriggers(ctx, graph, triggerName, ec, attempted, logger)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if attempted[name] {
			continue
		}

		attempted[name] = true

		if e.runNode(ctx, graph, name, ec, logger) {
			queue = append(queue, wf.Successors(name)...)
		}
	}

	logger.Info("Workflow run finished", "failed", ec.Failed(), "nodes_completed", len(ec.History))

	return ec
}

// fireTriggers executes the originating trigger nodes and returns the
// initial traversal queue.
func (e *Engine) fireTriggers(ctx context.Context, graph *Graph, triggerName string, ec *models.ExecutionContext, attempted map[string]bool, logger *slog.Logger) []string {
	wf := graph.Workflow

	var triggers []*models.Node

	if triggerName == "" {
		triggers = wf.ManualTriggers()
		if len(triggers) == 0 {
			ec.AddError("workflow '%s' has no manual trigger", wf.Name)

			return nil
		}
	} else {
		definition := wf.NodeByName(triggerName)
		if definition == nil || !definition.IsTrigger() {
			ec.AddError("trigger node '%s' not found in workflow '%s'", triggerName, wf.Name)

			return nil
		}

		triggers = []*models.Node{definition}
	}

	var queue []string

	for _, definition := range triggers {
		attempted[definition.Name] = true
		queue = append(queue, e.fireTrigger(ctx, graph, definition.Name, ec, logger)...)
	}

	return queue
}

// fireTrigger executes one trigger node and returns the successors it opens.
// The trigger's payload seeds the data bag but the trigger itself is not part
// of the run, so it never enters the history; a trigger that produces nothing
// keeps its successors closed.
func (e *Engine) fireTrigger(ctx context.Context, graph *Graph, name string, ec *models.ExecutionContext, logger *slog.Logger) []string {
	logger.Info("Firing trigger", "node", name)

	result, err := e.execute(ctx, graph.Node(name), ec)
	if err != nil {
		e.recordError(ec, name, err)

		return nil
	}

	if result.Empty() {
		logger.Info("Trigger produced no payload, successors skipped", "node", name)

		return nil
	}

	ec.Set(name, result.Output)
	ec.SetCurrent(result.ForwardValue())

	return graph.Workflow.Successors(name)
}

// runNode executes one node, stores its result, and reports whether the
// traversal may continue past it.
func (e *Engine) runNode(ctx context.Context, graph *Graph, name string, ec *models.ExecutionContext, logger *slog.Logger) bool {
	node := graph.Node(name)

	logger.Info("Executing node", "node", name)

	result, err := e.execute(ctx, node, ec)
	if err != nil {
		e.recordError(ec, name, err)

		return false
	}

	if result == nil {
		result = nodes.NewResult(nil)
	}

	ec.Set(name, result.Output)
	ec.SetCurrent(result.ForwardValue())
	ec.AddHistory(name)

	return true
}

func (e *Engine) recordError(ec *models.ExecutionContext, name string, err error) {
	if nodes.IsExecutionError(err) {
		ec.AddError("Error in node %s: %v", name, err)
	} else {
		ec.AddError("Unexpected error in node %s: %v", name, err)
	}
}

// execute calls the node with panic containment. A panicking node fails its
// own branch, never the whole run.
func (e *Engine) execute(ctx context.Context, node protocol.Node, ec *models.ExecutionContext) (result *nodes.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return node.Execute(ctx, ec)
}
