// Package cmd provides common initialization for the command-line entrypoint.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fluxo-hq/fluxo/pkg/persistence"
	"github.com/fluxo-hq/fluxo/pkg/persistence/file"
	"github.com/fluxo-hq/fluxo/pkg/persistence/postgresql"
)

// NewPersistence selects the storage backend from the database URL scheme.
// postgres:// URLs get PostgreSQL, everything else is treated as a file path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	}

	return file.NewPersistence(databaseURL), nil
}
