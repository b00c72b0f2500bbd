package models

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus is the lifecycle state of one workflow run.
type ExecutionStatus string

const (
	ExecutionStatusPending    ExecutionStatus = "PENDING"
	ExecutionStatusInProgress ExecutionStatus = "IN_PROGRESS"
	ExecutionStatusCompleted  ExecutionStatus = "COMPLETED"
	ExecutionStatusFailed     ExecutionStatus = "FAILED"
)

// Execution records one run of a workflow. The status is derived from the
// returned context: COMPLETED when no node failed, FAILED otherwise.
type Execution struct {
	ID          string          `json:"id"`
	WorkflowID  string          `json:"workflow_id"`
	Status      ExecutionStatus `json:"status"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Log         string          `json:"log,omitempty"`
}

func NewExecution(workflowID string) *Execution {
	return &Execution{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		Status:     ExecutionStatusPending,
		StartedAt:  time.Now().UTC(),
	}
}

// Finish stamps the terminal status, completion time and log.
func (e *Execution) Finish(status ExecutionStatus, log string) {
	now := time.Now().UTC()
	e.Status = status
	e.CompletedAt = &now
	e.Log = log
}
