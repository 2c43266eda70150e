package storage

import (
	"context"
	"errors"

	"github.com/rohankatakam/scriptusage/internal/models"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
)

// Store persists classifier runs
type Store interface {
	// Run operations
	SaveRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, runID string) (*models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*models.Run, error)

	// Close connection
	Close() error
}
