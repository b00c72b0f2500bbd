// Package persistence provides the storage abstraction for users, workflows
// and execution records.
package persistence

import (
	"context"

	"github.com/fluxo-hq/fluxo/pkg/models"
)

type UserRepository interface {
	Users(ctx context.Context) ([]*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

type WorkflowRepository interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
}

type ExecutionRepository interface {
	Executions(ctx context.Context) ([]*models.Execution, error)
	SaveExecution(ctx context.Context, execution *models.Execution) error
	ExecutionByID(ctx context.Context, id string) (*models.Execution, error)
	ExecutionsByWorkflowID(ctx context.Context, workflowID string) ([]*models.Execution, error)
}

type Persistence interface {
	UserRepository
	WorkflowRepository
	ExecutionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
