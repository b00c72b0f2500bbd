// Package web provides the HTTP API: token issuing, user registration,
// workflow management and run dispatch.
package web

import "github.com/fluxo-hq/fluxo/pkg/models"

// WorkflowRequest is the request body for creating or replacing a workflow.
// The definition is validated and materialized before it is stored, so a
// request that returns 2xx always names a runnable workflow.
type WorkflowRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Nodes       []*models.Node      `json:"nodes"`
	Connections map[string][]string `json:"connections"`
	Triggers    []string            `json:"triggers"`
	Active      bool                `json:"active"`
}

func (r *WorkflowRequest) toModel() *models.Workflow {
	return &models.Workflow{
		Name:        r.Name,
		Description: r.Description,
		Nodes:       r.Nodes,
		Connections: r.Connections,
		Triggers:    r.Triggers,
		Active:      r.Active,
	}
}

// RunWorkflowRequest selects which manual trigger to fire. An empty trigger
// name fires every manual trigger in the workflow.
type RunWorkflowRequest struct {
	TriggerName string `json:"trigger_name,omitempty"`
}

// TokenRequest is the request body for issuing a bearer token.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterUserRequest is the request body for creating an account.
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NodeKindResponse describes one registered node kind and its parameter
// schema.
type NodeKindResponse struct {
	Kind   string         `json:"kind"`
	Schema map[string]any `json:"schema,omitempty"`
}
