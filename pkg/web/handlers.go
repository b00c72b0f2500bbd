package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/fluxo-hq/fluxo/pkg/auth"
	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/registry"
	"github.com/fluxo-hq/fluxo/pkg/services"
)

type APIHandlers struct {
	workflowService *services.Workflow
	userService     *services.User
	authService     *auth.Service
	registry        *registry.Registry
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	userService *services.User,
	authService *auth.Service,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		userService:     userService,
		authService:     authService,
		registry:        registry,
	}
}

// RequireAuth verifies the bearer token and stores the resolved user in the
// request locals.
func (h *APIHandlers) RequireAuth(c fiber.Ctx) error {
	header := c.Get("Authorization")

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return unauthorized(c, "Missing bearer token")
	}

	user, err := h.authService.CurrentUser(c.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrInactiveUser) {
			return unauthorized(c, err.Error())
		}

		return internalError(c, err)
	}

	c.Locals("user", user)

	return c.Next()
}

func (h *APIHandlers) CreateToken(c fiber.Ctx) error {
	var req TokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	user, err := h.authService.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrInactiveUser) {
			return unauthorized(c, err.Error())
		}

		return internalError(c, err)
	}

	token, err := h.authService.CreateToken(user)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *APIHandlers) RegisterUser(c fiber.Ctx) error {
	var req RegisterUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	user, err := h.userService.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// CurrentUser returns the account behind the bearer token.
func (h *APIHandlers) CurrentUser(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return unauthorized(c, "Missing bearer token")
	}

	return c.JSON(user)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.workflowService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req WorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	workflow := req.toModel()
	workflow.Owner = currentUsername(c)

	created, err := h.workflowService.Create(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var req WorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	updated, err := h.workflowService.Update(c.Context(), c.Params("id"), req.toModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.workflowService.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	var req RunWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	execution, err := h.workflowService.Run(c.Context(), c.Params("id"), req.TriggerName)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(execution)
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	if workflowID := c.Query("workflow_id"); workflowID != "" {
		executions, err := h.workflowService.ExecutionsByWorkflowID(c.Context(), workflowID)
		if err != nil {
			return handleServiceError(c, err)
		}

		return c.JSON(executions)
	}

	executions, err := h.workflowService.Executions(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(executions)
}

func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	executions, err := h.workflowService.ExecutionsByWorkflowID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(executions)
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	execution, err := h.workflowService.ExecutionByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

// GetNodeKinds lists the registered node kinds with their parameter schemas.
func (h *APIHandlers) GetNodeKinds(c fiber.Ctx) error {
	kinds := h.registry.Kinds()

	out := make([]NodeKindResponse, 0, len(kinds))

	for _, kind := range kinds {
		schema, _ := h.registry.Schema(kind)
		out = append(out, NodeKindResponse{Kind: kind, Schema: schema})
	}

	return c.JSON(out)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func currentUsername(c fiber.Ctx) string {
	if user, ok := c.Locals("user").(*models.User); ok {
		return user.Username
	}

	return ""
}
