package importapp

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/lpcheniris/shopify-demo/internal/domain/bulk"
	"github.com/lpcheniris/shopify-demo/internal/domain/shared"
)

// DefaultRunListLimit bounds ListRuns when the caller gives no limit
const DefaultRunListLimit = 20

// ErrNoFailedItems is returned when a run has no failures to export
var ErrNoFailedItems = shared.NewDomainError("NO_FAILED_ITEMS", "Run has no failed items")

// RunHistoryService reads past import runs
type RunHistoryService struct {
	runRepo bulk.ImportRunRepository
}

// NewRunHistoryService creates a new RunHistoryService. A nil repository
// makes every call return ErrHistoryDisabled.
func NewRunHistoryService(runRepo bulk.ImportRunRepository) *RunHistoryService {
	return &RunHistoryService{runRepo: runRepo}
}

// GetRun retrieves a run of the shop with its items
func (s *RunHistoryService) GetRun(ctx context.Context, shop string, runID uuid.UUID) (*RunDetail, error) {
	run, err := s.find(ctx, shop, runID)
	if err != nil {
		return nil, err
	}
	return ToRunDetail(run), nil
}

// ListRunsFilter defines the filter options for listing runs
type ListRunsFilter struct {
	Status    string // Filter by status, ignored when unknown
	Limit     int
	SortBy    string
	SortOrder string
}

// ListRuns returns the shop's runs, newest first
func (s *RunHistoryService) ListRuns(ctx context.Context, shop string, filter ListRunsFilter) ([]RunSummary, error) {
	if s.runRepo == nil {
		return nil, ErrHistoryDisabled
	}

	repoFilter := bulk.ImportRunFilter{
		Shop:      shop,
		Limit:     filter.Limit,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
	}
	if repoFilter.Limit <= 0 {
		repoFilter.Limit = DefaultRunListLimit
	}
	if filter.Status != "" {
		status := bulk.RunStatus(filter.Status)
		if status.IsValid() {
			repoFilter.Status = &status
		}
	}

	runs, err := s.runRepo.FindRecent(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	out := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		out = append(out, ToRunSummary(run))
	}
	return out, nil
}

// FailedItemsCSV renders the failed items of a run as CSV for download.
// It returns the content and a suggested file name.
func (s *RunHistoryService) FailedItemsCSV(ctx context.Context, shop string, runID uuid.UUID) ([]byte, string, error) {
	run, err := s.find(ctx, shop, runID)
	if err != nil {
		return nil, "", err
	}

	failed := run.FailedItems()
	if len(failed) == 0 {
		return nil, "", ErrNoFailedItems
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Position", "Handle", "Error Code", "Error Message", "Attempts"})
	for _, item := range failed {
		_ = w.Write([]string{
			strconv.Itoa(item.Position + 1),
			item.Handle,
			item.ErrorCode,
			item.ErrorMessage,
			strconv.Itoa(item.Attempts),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to write csv: %w", err)
	}

	return buf.Bytes(), fmt.Sprintf("import_failures_%s.csv", run.ID.String()[:8]), nil
}

func (s *RunHistoryService) find(ctx context.Context, shop string, runID uuid.UUID) (*bulk.ImportRun, error) {
	if s.runRepo == nil {
		return nil, ErrHistoryDisabled
	}
	run, err := s.runRepo.FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	// Runs of other shops are reported as missing.
	if shop != "" && run.Shop != shop {
		return nil, shared.ErrNotFound
	}
	return run, nil
}
