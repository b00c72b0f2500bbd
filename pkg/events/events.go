// Package events defines the execution lifecycle notifications published on
// the event bus.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const Topic = "fluxo.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// ExecutionStarted marks the transition of a run into IN_PROGRESS.
type ExecutionStarted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

// ExecutionCompleted marks a run that finished with no node errors.
type ExecutionCompleted struct {
	BaseEvent

	ExecutionID string   `json:"execution_id"`
	History     []string `json:"history"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

// ExecutionFailed marks a run in which at least one node failed.
type ExecutionFailed struct {
	BaseEvent

	ExecutionID string   `json:"execution_id"`
	History     []string `json:"history"`
	Errors      []string `json:"errors"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}
