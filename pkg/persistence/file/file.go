// Package file provides file-based persistence for local development and
// tests. Each entity collection is a directory of JSON documents.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/fluxo-hq/fluxo/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the
// file system.
type Persistence struct {
	*UserRepository
	*WorkflowRepository
	*ExecutionRepository

	root string
}

// NewPersistence creates a file persistence rooted at the given directory.
// The root may carry a file:// scheme prefix.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		UserRepository:      NewUserRepository(cleanRoot),
		WorkflowRepository:  NewWorkflowRepository(cleanRoot),
		ExecutionRepository: NewExecutionRepository(cleanRoot),
		root:                cleanRoot,
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}
