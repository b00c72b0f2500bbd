// Package scheduler fires schedule triggers on their cron or interval
// schedules and hands the resulting runs to the workflow runner.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/workflow"
)

const defaultMaxConcurrent = 10

var ErrDuplicateJob = errors.New("schedule job already registered")

// GraphRunner runs one workflow graph from a named trigger.
type GraphRunner interface {
	Run(ctx context.Context, graph *workflow.Graph, triggerName string) (*models.Execution, *models.ExecutionContext)
}

// Scheduler owns the cron runtime. Each schedule trigger node of a
// registered workflow becomes one job, identified by "{workflow}-{node}".
// Jobs for the same trigger coalesce rather than overlap, and a semaphore
// bounds how many scheduled runs execute at once across all workflows.
type Scheduler struct {
	cron      *cron.Cron
	runner    GraphRunner
	logger    *slog.Logger
	semaphore chan struct{}

	// intervalUnit is the duration one interval_minutes unit stands for.
	// Tests compress it to drive real firings quickly.
	intervalUnit time.Duration

	mu         sync.Mutex
	entries    map[string]cron.EntryID
	byWorkflow map[string][]string
}

func NewScheduler(runner GraphRunner, maxConcurrent int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	return &Scheduler{
		cron:         cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		runner:       runner,
		logger:       logger,
		semaphore:    make(chan struct{}, maxConcurrent),
		intervalUnit: time.Minute,
		entries:      make(map[string]cron.EntryID),
		byWorkflow:   make(map[string][]string),
	}
}

// Register adds one job per schedule trigger in the graph. Registration is
// all or nothing: a bad trigger rolls back the jobs added before it.
func (s *Scheduler) Register(graph *workflow.Graph) error {
	wf := graph.Workflow

	s.mu.Lock()
	defer s.mu.Unlock()

	var added []string

	for _, node := range wf.ScheduleTriggers() {
		jobID := fmt.Sprintf("%s-%s", wf.Name, node.Name)

		if _, exists := s.entries[jobID]; exists {
			s.removeLocked(wf.ID, added)

			return fmt.Errorf("%w: %s", ErrDuplicateJob, jobID)
		}

		entryID, err := s.schedule(graph, node, jobID)
		if err != nil {
			s.removeLocked(wf.ID, added)

			return fmt.Errorf("failed to schedule job %s: %w", jobID, err)
		}

		s.entries[jobID] = entryID
		added = append(added, jobID)

		s.logger.Info("Registered schedule job", "job_id", jobID, "workflow_id", wf.ID)
	}

	// Jobs from earlier registrations of the same workflow stay attached.
	s.byWorkflow[wf.ID] = append(s.byWorkflow[wf.ID], added...)

	return nil
}

// Deregister removes every job belonging to the workflow.
func (s *Scheduler) Deregister(workflowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(workflowID, s.byWorkflow[workflowID])
	delete(s.byWorkflow, workflowID)
}

// removeLocked detaches the named jobs from the cron runtime. It leaves the
// byWorkflow index alone so a failed registration cannot orphan jobs an
// earlier registration installed.
func (s *Scheduler) removeLocked(workflowID string, jobIDs []string) {
	for _, jobID := range jobIDs {
		if entryID, ok := s.entries[jobID]; ok {
			s.cron.Remove(entryID)
			delete(s.entries, jobID)

			s.logger.Info("Removed schedule job", "job_id", jobID, "workflow_id", workflowID)
		}
	}
}

// Jobs returns the registered job identifiers in no particular order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.entries))
	for jobID := range s.entries {
		out = append(out, jobID)
	}

	return out
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Shutdown stops firing new jobs and waits for running ones, bounded by ctx.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.logger.Info("Stopping scheduler")

	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) schedule(graph *workflow.Graph, node *models.Node, jobID string) (cron.EntryID, error) {
	job := coalesce(s.newRunJob(graph, node.Name, jobID))

	if node.TriggerKind == models.TriggerKindScheduleCron {
		return s.cron.AddJob(cronSpec(node), job)
	}

	minutes, ok := positiveMinutes(node.Parameters["interval_minutes"])
	if !ok {
		return 0, errors.New("interval_minutes must be a positive integer")
	}

	return s.cron.Schedule(cron.Every(time.Duration(minutes)*s.intervalUnit), job), nil
}

// newRunJob builds the job body: acquire a concurrency slot, run the graph
// from the trigger, release.
func (s *Scheduler) newRunJob(graph *workflow.Graph, triggerName, jobID string) cron.FuncJob {
	return func() {
		s.semaphore <- struct{}{}
		defer func() { <-s.semaphore }()

		s.logger.Info("Schedule fired", "job_id", jobID)

		execution, _ := s.runner.Run(context.Background(), graph, triggerName)

		s.logger.Info("Scheduled run finished",
			"job_id", jobID,
			"execution_id", execution.ID,
			"status", execution.Status,
		)
	}
}

// cronSpec renders the node's cron expression, carrying its timezone via the
// CRON_TZ prefix the standard parser understands.
func cronSpec(node *models.Node) string {
	expr, _ := node.Parameters["cron_expression"].(string)

	if tz, ok := node.Parameters["timezone"].(string); ok && tz != "" && tz != "UTC" {
		return fmt.Sprintf("CRON_TZ=%s %s", tz, expr)
	}

	return expr
}

func positiveMinutes(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, typed > 0
	case int64:
		return int(typed), typed > 0
	case float64:
		if typed != float64(int(typed)) {
			return 0, false
		}

		return int(typed), typed > 0
	default:
		return 0, false
	}
}
