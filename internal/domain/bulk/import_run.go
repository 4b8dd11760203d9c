package bulk

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lpcheniris/shopify-demo/internal/domain/catalog"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/domain/shared"
)

// RunStatus represents the status of an import run
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusPartial    RunStatus = "partial"
	RunStatusFailed     RunStatus = "failed"
)

// IsValid checks if the status is valid
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusPending, RunStatusProcessing, RunStatusCompleted,
		RunStatusPartial, RunStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusPartial || s == RunStatusFailed
}

// IsRetryable returns true if failed items of the run can be published again
func (s RunStatus) IsRetryable() bool {
	return s == RunStatusPartial || s == RunStatusFailed
}

// ItemStatus represents the publish state of one item of a run
type ItemStatus string

const (
	ItemStatusPending ItemStatus = "pending"
	ItemStatusCreated ItemStatus = "created"
	ItemStatusFailed  ItemStatus = "failed"
	ItemStatusSkipped ItemStatus = "skipped"
)

// ImportItem is one catalog item of a run with its publish outcome
type ImportItem struct {
	ID           uuid.UUID
	Position     int
	Handle       string
	Status       ItemStatus
	RemoteID     int64
	ErrorCode    string
	ErrorMessage string
	Attempts     int
	Snapshot     catalog.ItemSnapshot
	UpdatedAt    time.Time
}

// Item rebuilds the catalog item the row was recorded from
func (i ImportItem) Item() catalog.Item {
	return catalog.FromSnapshot(i.Snapshot)
}

// ImportRun tracks one invocation of the import pipeline and the outcome of
// every item it tried to publish
type ImportRun struct {
	shared.BaseAggregateRoot
	Shop         string
	SourceFile   string
	FileSize     int64
	TotalRows    int
	SkippedRows  int
	Status       RunStatus
	CreatedCount int
	FailedCount  int
	SkippedCount int
	RetryCount   int
	ErrorCode    string
	ErrorMessage string
	Items        []ImportItem
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// NewImportRun creates a pending import run
func NewImportRun(shop, sourceFile string, fileSize int64) (*ImportRun, error) {
	if strings.TrimSpace(shop) == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop cannot be empty")
	}
	if strings.TrimSpace(sourceFile) == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "Source file cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}

	return &ImportRun{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Shop:              shop,
		SourceFile:        sourceFile,
		FileSize:          fileSize,
		Status:            RunStatusPending,
		Items:             make([]ImportItem, 0),
	}, nil
}

// StartProcessing records the aggregated catalog and moves the run to processing
func (r *ImportRun) StartProcessing(totalRows, skippedRows int, items []catalog.Item) error {
	if r.Status != RunStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing from state: %s", r.Status))
	}
	if totalRows < 0 || skippedRows < 0 {
		return shared.NewDomainError("INVALID_TOTAL_ROWS", "Row counts cannot be negative")
	}

	now := r.Touch()
	r.Items = make([]ImportItem, 0, len(items))
	for i, it := range items {
		r.Items = append(r.Items, ImportItem{
			ID:        uuid.New(),
			Position:  i,
			Handle:    it.Handle(),
			Status:    ItemStatusPending,
			Snapshot:  it.Snapshot(),
			UpdatedAt: now,
		})
	}
	r.Status = RunStatusProcessing
	r.TotalRows = totalRows
	r.SkippedRows = skippedRows
	r.StartedAt = &now
	r.IncrementVersion()

	return nil
}

// RecordReport applies a publish report to the run's items and finishes the run
func (r *ImportRun) RecordReport(report *integration.PublishReport) error {
	if r.Status != RunStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record results in state: %s", r.Status))
	}

	now := r.Touch()
	index := make(map[string]int, len(r.Items))
	for i, item := range r.Items {
		index[item.Handle] = i
	}

	for _, c := range report.Created {
		if i, ok := index[c.Handle]; ok {
			item := &r.Items[i]
			item.Status = ItemStatusCreated
			item.RemoteID = c.RemoteID
			item.ErrorCode, item.ErrorMessage = "", ""
			item.Attempts++
			item.UpdatedAt = now
		}
	}
	for _, f := range report.Failed {
		if i, ok := index[f.Handle]; ok {
			item := &r.Items[i]
			item.Status = ItemStatusFailed
			item.ErrorCode = f.ErrorCode
			item.ErrorMessage = f.ErrorMessage
			item.Attempts++
			item.UpdatedAt = now
		}
	}
	for _, handle := range report.Skipped {
		if i, ok := index[handle]; ok {
			r.Items[i].Status = ItemStatusSkipped
			r.Items[i].UpdatedAt = now
		}
	}

	r.finish(now)
	return nil
}

// Fail marks the whole run as failed before any item was published
func (r *ImportRun) Fail(code, message string) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", r.Status))
	}

	now := r.Touch()
	r.Status = RunStatusFailed
	r.ErrorCode = code
	r.ErrorMessage = message
	r.CompletedAt = &now
	r.IncrementVersion()

	return nil
}

// BeginRetry reopens a partial or failed run and returns the items to publish again
func (r *ImportRun) BeginRetry() ([]catalog.Item, error) {
	if !r.Status.IsRetryable() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot retry run in state: %s", r.Status))
	}

	failed := r.FailedItems()
	if len(failed) == 0 {
		return nil, shared.NewDomainError("NOTHING_TO_RETRY", "Run has no failed items")
	}

	items := make([]catalog.Item, 0, len(failed))
	for _, f := range failed {
		items = append(items, f.Item())
	}

	now := r.Touch()
	r.Status = RunStatusProcessing
	r.RetryCount++
	r.ErrorCode, r.ErrorMessage = "", ""
	r.CompletedAt = nil
	if r.StartedAt == nil {
		r.StartedAt = &now
	}
	r.IncrementVersion()

	return items, nil
}

// FailedItems returns the items whose last publish attempt failed
func (r *ImportRun) FailedItems() []ImportItem {
	out := make([]ImportItem, 0)
	for _, item := range r.Items {
		if item.Status == ItemStatusFailed {
			out = append(out, item)
		}
	}
	return out
}

// Duration returns how long the run took, or has taken so far
func (r *ImportRun) Duration() time.Duration {
	if r.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if r.CompletedAt != nil {
		end = *r.CompletedAt
	}
	return end.Sub(*r.StartedAt)
}

func (r *ImportRun) finish(now time.Time) {
	r.CreatedCount, r.FailedCount, r.SkippedCount = 0, 0, 0
	for _, item := range r.Items {
		switch item.Status {
		case ItemStatusCreated:
			r.CreatedCount++
		case ItemStatusFailed:
			r.FailedCount++
		case ItemStatusSkipped:
			r.SkippedCount++
		}
	}

	switch integration.DeriveStatus(r.CreatedCount, r.FailedCount, r.SkippedCount) {
	case integration.PublishStatusSuccess, integration.PublishStatusEmpty:
		r.Status = RunStatusCompleted
	case integration.PublishStatusFailed:
		r.Status = RunStatusFailed
		r.ErrorCode = integration.ErrCodeRemoteCreateFailed
		r.ErrorMessage = "No item could be created"
	default:
		r.Status = RunStatusPartial
	}
	r.CompletedAt = &now
	r.IncrementVersion()
}
