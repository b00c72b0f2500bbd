package models

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// InputKey is the pseudo-key under which the current data seed lives: the
// most recent trigger payload at run start, then each successful node's
// forward value as the traversal progresses.
const InputKey = "$input"

// ExecutionContext is the per-run scratchpad. It is owned by exactly one run
// and is not safe for concurrent use; the engine executes nodes sequentially
// against it.
type ExecutionContext struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	Data       map[string]any `json:"data"`
	History    []string       `json:"history"`
	Errors     []string       `json:"errors"`

	logger *slog.Logger
}

func NewExecutionContext(workflowID string, logger *slog.Logger) *ExecutionContext {
	if logger == nil {
		logger = slog.Default()
	}

	id := "exec-" + uuid.New().String()[:8]

	return &ExecutionContext{
		ID:         id,
		WorkflowID: workflowID,
		Data:       make(map[string]any),
		History:    []string{},
		Errors:     []string{},
		logger:     logger.With("execution_id", id, "workflow_id", workflowID),
	}
}

// Set stores a value under key, overwriting any prior value.
func (c *ExecutionContext) Set(key string, value any) {
	c.Data[key] = value
}

// Get looks a value up; the second return reports presence.
func (c *ExecutionContext) Get(key string) (any, bool) {
	value, ok := c.Data[key]

	return value, ok
}

// Current returns the data seed for the next node, or nil.
func (c *ExecutionContext) Current() any {
	return c.Data[InputKey]
}

// SetCurrent replaces the data seed.
func (c *ExecutionContext) SetCurrent(value any) {
	c.Data[InputKey] = value
}

// AddHistory appends a completed node name.
func (c *ExecutionContext) AddHistory(name string) {
	c.History = append(c.History, name)
}

// AddError appends an error description and emits it at error severity.
func (c *ExecutionContext) AddError(format string, args ...any) {
	description := fmt.Sprintf(format, args...)
	c.Errors = append(c.Errors, description)
	c.logger.Error(description)
}

// Failed reports whether any node failed during the run.
func (c *ExecutionContext) Failed() bool {
	return len(c.Errors) > 0
}
