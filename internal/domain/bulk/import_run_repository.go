package bulk

import (
	"context"

	"github.com/google/uuid"
)

// ImportRunFilter defines the filters for querying import runs
type ImportRunFilter struct {
	Shop   string     // Filter by shop, empty for all shops
	Status *RunStatus // Filter by status
	Limit  int        // Maximum number of runs

	// SortBy and SortOrder order the result; unknown values fall back to
	// newest first
	SortBy    string
	SortOrder string
}

// ImportRunRepository defines the interface for import run persistence
type ImportRunRepository interface {
	// FindByID finds an import run with its items
	FindByID(ctx context.Context, id uuid.UUID) (*ImportRun, error)

	// FindRecent returns runs newest first, without items
	FindRecent(ctx context.Context, filter ImportRunFilter) ([]*ImportRun, error)

	// Save saves an import run and its items (create or update)
	Save(ctx context.Context, run *ImportRun) error
}
