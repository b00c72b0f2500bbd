package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/persistence"
)

// ExecutionRepository stores execution records as one JSON file per run.
type ExecutionRepository struct {
	root string
}

func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

// Executions returns every stored record, oldest first.
func (er *ExecutionRepository) Executions(ctx context.Context) ([]*models.Execution, error) {
	dir := path.Join(er.root, "executions")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*models.Execution{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list execution files: %w", err)
	}

	executions := make([]*models.Execution, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		executionID := file[:len(file)-5]

		execution, err := er.ExecutionByID(ctx, executionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load execution %s: %w", executionID, err)
		}

		executions = append(executions, execution)
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.Before(executions[j].StartedAt)
	})

	return executions, nil
}

func (er *ExecutionRepository) SaveExecution(_ context.Context, execution *models.Execution) error {
	err := os.MkdirAll(path.Join(er.root, "executions"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	data, err := json.MarshalIndent(execution, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution %s: %w", execution.ID, err)
	}

	filePath := path.Join(er.root, "executions", execution.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

func (er *ExecutionRepository) ExecutionByID(_ context.Context, id string) (*models.Execution, error) {
	filePath := filepath.Clean(path.Join(er.root, "executions", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to fetch execution %s: %w", id, err)
	}

	var execution models.Execution

	err = json.Unmarshal(body, &execution)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution %s: %w", id, err)
	}

	return &execution, nil
}

func (er *ExecutionRepository) ExecutionsByWorkflowID(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	executions, err := er.Executions(ctx)
	if err != nil {
		return nil, err
	}

	matching := make([]*models.Execution, 0, len(executions))

	for _, execution := range executions {
		if execution.WorkflowID == workflowID {
			matching = append(matching, execution)
		}
	}

	return matching, nil
}
