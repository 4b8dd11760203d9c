package importapp

import (
	"time"

	"github.com/google/uuid"

	"github.com/lpcheniris/shopify-demo/internal/domain/bulk"
	"github.com/lpcheniris/shopify-demo/internal/domain/catalog"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/sheet"
)

// SheetSummary describes what was read from a workbook
type SheetSummary struct {
	Source        string             `json:"source"`
	TotalRows     int                `json:"total_rows"`
	SkippedRows   int                `json:"skipped_rows"`
	Stats         catalog.Stats      `json:"stats"`
	Warnings      []sheet.RowWarning `json:"warnings,omitempty"`
	TotalWarnings int                `json:"total_warnings,omitempty"`
}

// PreviewResult is the aggregated catalog of a sheet, without publishing
type PreviewResult struct {
	SheetSummary
	Items []catalog.ItemSnapshot `json:"items"`
}

// ImportResult is the outcome of one publish pass
type ImportResult struct {
	SheetSummary
	RunID      *uuid.UUID                  `json:"run_id,omitempty"`
	Status     integration.PublishStatus   `json:"status"`
	Created    []integration.PublishedItem `json:"created"`
	Failed     []integration.FailedItem    `json:"failed"`
	Skipped    []string                    `json:"skipped"`
	DurationMS int64                       `json:"duration_ms"`
}

func newImportResult(summary SheetSummary, runID *uuid.UUID, report *integration.PublishReport, elapsed time.Duration) *ImportResult {
	return &ImportResult{
		SheetSummary: summary,
		RunID:        runID,
		Status:       report.Status(),
		Created:      report.Created,
		Failed:       report.Failed,
		Skipped:      report.Skipped,
		DurationMS:   elapsed.Milliseconds(),
	}
}

// RunSummary is an import run without its items
type RunSummary struct {
	ID           uuid.UUID      `json:"id"`
	Shop         string         `json:"shop"`
	SourceFile   string         `json:"source_file"`
	FileSize     int64          `json:"file_size"`
	Status       bulk.RunStatus `json:"status"`
	TotalRows    int            `json:"total_rows"`
	SkippedRows  int            `json:"skipped_rows"`
	CreatedCount int            `json:"created_count"`
	FailedCount  int            `json:"failed_count"`
	SkippedCount int            `json:"skipped_count"`
	RetryCount   int            `json:"retry_count"`
	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// RunItem is the publish state of one item of a run
type RunItem struct {
	Position     int             `json:"position"`
	Handle       string          `json:"handle"`
	Status       bulk.ItemStatus `json:"status"`
	RemoteID     int64           `json:"remote_id,omitempty"`
	ErrorCode    string          `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Attempts     int             `json:"attempts"`
}

// RunDetail is an import run with its items
type RunDetail struct {
	RunSummary
	Items []RunItem `json:"items"`
}

// ToRunSummary converts a domain run to its summary view
func ToRunSummary(run *bulk.ImportRun) RunSummary {
	return RunSummary{
		ID:           run.ID,
		Shop:         run.Shop,
		SourceFile:   run.SourceFile,
		FileSize:     run.FileSize,
		Status:       run.Status,
		TotalRows:    run.TotalRows,
		SkippedRows:  run.SkippedRows,
		CreatedCount: run.CreatedCount,
		FailedCount:  run.FailedCount,
		SkippedCount: run.SkippedCount,
		RetryCount:   run.RetryCount,
		ErrorCode:    run.ErrorCode,
		ErrorMessage: run.ErrorMessage,
		StartedAt:    run.StartedAt,
		CompletedAt:  run.CompletedAt,
		CreatedAt:    run.CreatedAt,
	}
}

// ToRunDetail converts a domain run and its items
func ToRunDetail(run *bulk.ImportRun) *RunDetail {
	detail := &RunDetail{
		RunSummary: ToRunSummary(run),
		Items:      make([]RunItem, 0, len(run.Items)),
	}
	for _, item := range run.Items {
		detail.Items = append(detail.Items, RunItem{
			Position:     item.Position,
			Handle:       item.Handle,
			Status:       item.Status,
			RemoteID:     item.RemoteID,
			ErrorCode:    item.ErrorCode,
			ErrorMessage: item.ErrorMessage,
			Attempts:     item.Attempts,
		})
	}
	return detail
}
