package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lpcheniris/shopify-demo/internal/domain/bulk"
	"github.com/lpcheniris/shopify-demo/internal/domain/catalog"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/domain/shared"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/logger"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/sheet"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/telemetry"
)

// Service errors
var (
	ErrHistoryDisabled  = shared.NewDomainError("HISTORY_DISABLED", "Import history is not configured")
	ErrImportInProgress = shared.NewDomainError("IMPORT_IN_PROGRESS", "An import is already running for this shop")
)

// MetricsRecorder receives row and publish counts of every import
type MetricsRecorder interface {
	RecordRows(ctx context.Context, shop string, read, skipped int)
	RecordPublish(ctx context.Context, shop string, report *integration.PublishReport, elapsed time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordRows(context.Context, string, int, int) {}
func (nopMetrics) RecordPublish(context.Context, string, *integration.PublishReport, time.Duration) {
}

// CatalogImportService runs the sheet → catalog → publish pipeline
type CatalogImportService struct {
	reader       *sheet.Reader
	publisher    *Publisher
	platform     integration.CatalogPlatform
	runRepo      bulk.ImportRunRepository
	metrics      MetricsRecorder
	logger       *zap.Logger
	dedupeImages bool
	defaultPath  string

	mu      sync.Mutex
	running map[string]struct{}
}

// ServiceOption configures a CatalogImportService
type ServiceOption func(*CatalogImportService)

// WithRunRepository persists every import run. Without it Retry, GetRun and
// ListRuns return ErrHistoryDisabled.
func WithRunRepository(repo bulk.ImportRunRepository) ServiceOption {
	return func(s *CatalogImportService) {
		s.runRepo = repo
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m MetricsRecorder) ServiceOption {
	return func(s *CatalogImportService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithServiceLogger sets the logger used when ctx carries none
func WithServiceLogger(l *zap.Logger) ServiceOption {
	return func(s *CatalogImportService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDedupeImages controls whether repeated image urls of a handle collapse
func WithDedupeImages(dedupe bool) ServiceOption {
	return func(s *CatalogImportService) {
		s.dedupeImages = dedupe
	}
}

// WithDefaultPath sets the workbook ImportDefault reads
func WithDefaultPath(path string) ServiceOption {
	return func(s *CatalogImportService) {
		s.defaultPath = path
	}
}

// NewCatalogImportService creates a new CatalogImportService
func NewCatalogImportService(
	reader *sheet.Reader,
	publisher *Publisher,
	platform integration.CatalogPlatform,
	opts ...ServiceOption,
) *CatalogImportService {
	s := &CatalogImportService{
		reader:       reader,
		publisher:    publisher,
		platform:     platform,
		metrics:      nopMetrics{},
		logger:       zap.NewNop(),
		dedupeImages: true,
		running:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPath returns the workbook ImportDefault reads
func (s *CatalogImportService) DefaultPath() string {
	return s.defaultPath
}

// ---------------------------------------------------------------------------
// Preview
// ---------------------------------------------------------------------------

// Preview reads and aggregates the workbook at path without publishing. An
// empty path previews the default workbook.
func (s *CatalogImportService) Preview(ctx context.Context, path string) (*PreviewResult, error) {
	if path == "" {
		path = s.defaultPath
	}
	result, err := s.reader.ReadAll(path)
	if err != nil {
		return nil, err
	}
	return s.preview(ctx, filepath.Base(path), result), nil
}

// PreviewUpload reads and aggregates an uploaded workbook without publishing
func (s *CatalogImportService) PreviewUpload(ctx context.Context, src io.Reader, fileName string) (*PreviewResult, error) {
	result, err := s.reader.ReadAllFrom(src, fileName)
	if err != nil {
		return nil, err
	}
	return s.preview(ctx, fileName, result), nil
}

func (s *CatalogImportService) preview(ctx context.Context, source string, result *sheet.Result) *PreviewResult {
	summary, cat := s.aggregate(source, result)
	items := cat.Items()
	out := &PreviewResult{
		SheetSummary: summary,
		Items:        make([]catalog.ItemSnapshot, 0, len(items)),
	}
	for _, it := range items {
		out.Items = append(out.Items, it.Snapshot())
	}
	logger.FromContextOr(ctx, s.logger).Debug("Sheet previewed",
		zap.String("source", source),
		zap.Int("items", summary.Stats.Items))
	return out
}

// ---------------------------------------------------------------------------
// Import
// ---------------------------------------------------------------------------

// ImportDefault imports the configured default workbook
func (s *CatalogImportService) ImportDefault(ctx context.Context, session integration.Session) (*ImportResult, error) {
	return s.ImportFile(ctx, session, s.defaultPath)
}

// ImportFile reads, aggregates and publishes the workbook at path. A sheet
// that cannot be read makes no remote calls and returns the sheet error.
// Per-item publish failures are part of the result, not the error.
func (s *CatalogImportService) ImportFile(ctx context.Context, session integration.Session, path string) (*ImportResult, error) {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	return s.runImport(ctx, session, filepath.Base(path), size, func() (*sheet.Result, error) {
		return s.reader.ReadAll(path)
	})
}

// ImportUpload imports an uploaded workbook
func (s *CatalogImportService) ImportUpload(ctx context.Context, session integration.Session, src io.Reader, fileName string, size int64) (*ImportResult, error) {
	return s.runImport(ctx, session, fileName, size, func() (*sheet.Result, error) {
		return s.reader.ReadAllFrom(src, fileName)
	})
}

func (s *CatalogImportService) runImport(
	ctx context.Context,
	session integration.Session,
	source string,
	size int64,
	read func() (*sheet.Result, error),
) (*ImportResult, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	release, err := s.acquire(session.Shop)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, span := telemetry.StartSpan(ctx, "import.run",
		telemetry.WithAttribute("shopify.shop", session.Shop),
		telemetry.WithAttribute("import.source", source))
	defer span.End()

	ctx, log := logger.WithShop(ctx, logger.FromContextOr(ctx, s.logger), session.Shop)

	run, err := s.newRun(ctx, session.Shop, source, size)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	var runID *uuid.UUID
	if run != nil {
		id := run.ID
		runID = &id
		ctx, log = logger.WithRunID(ctx, log, id.String())
	}

	result, err := read()
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Sheet could not be read", zap.String("source", source), zap.Error(err))
		s.failRun(ctx, run, err)
		return nil, err
	}

	summary, cat := s.aggregate(source, result)
	s.metrics.RecordRows(ctx, session.Shop, summary.TotalRows, summary.SkippedRows)
	items := cat.Items()

	if run != nil {
		if err := run.StartProcessing(summary.TotalRows, summary.SkippedRows, items); err != nil {
			return nil, err
		}
		if err := s.runRepo.Save(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to save import run: %w", err)
		}
	}

	log.Info("Publishing catalog",
		zap.String("source", source),
		zap.Int("rows", summary.TotalRows),
		zap.Int("items", len(items)))

	start := time.Now()
	report := s.publisher.Publish(ctx, session, items)
	elapsed := time.Since(start)
	s.metrics.RecordPublish(ctx, session.Shop, report, elapsed)

	if err := s.recordReport(ctx, run, report); err != nil {
		return nil, err
	}

	telemetry.AddEvent(span, "publish_finished",
		"created", len(report.Created),
		"failed", len(report.Failed),
		"skipped", len(report.Skipped))
	return newImportResult(summary, runID, report, elapsed), nil
}

// aggregate folds sheet rows into a catalog. TotalRows counts data rows only.
func (s *CatalogImportService) aggregate(source string, result *sheet.Result) (SheetSummary, *catalog.Catalog) {
	opts := s.reader.Schema().FoldOptions(s.dedupeImages)
	b := catalog.NewBuilder(opts)
	total := 0
	for _, row := range result.Rows {
		if row.Index <= opts.HeaderRows {
			continue
		}
		total++
		b.Add(row)
	}
	cat := b.Catalog()
	return SheetSummary{
		Source:        source,
		TotalRows:     total,
		SkippedRows:   b.Skipped(),
		Stats:         cat.Stats(),
		Warnings:      result.Warnings,
		TotalWarnings: result.TotalWarnings,
	}, cat
}

// ---------------------------------------------------------------------------
// Retry
// ---------------------------------------------------------------------------

// Retry publishes the failed items of a run again. Items that were created
// before are never sent twice.
func (s *CatalogImportService) Retry(ctx context.Context, session integration.Session, runID uuid.UUID) (*ImportResult, error) {
	if s.runRepo == nil {
		return nil, ErrHistoryDisabled
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	release, err := s.acquire(session.Shop)
	if err != nil {
		return nil, err
	}
	defer release()

	run, err := s.runRepo.FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Shop != session.Shop {
		return nil, shared.ErrNotFound
	}

	ctx, span := telemetry.StartSpan(ctx, "import.retry",
		telemetry.WithAttribute("shopify.shop", session.Shop),
		telemetry.WithAttribute("import.run_id", runID.String()))
	defer span.End()
	ctx, log := logger.WithRunID(ctx, logger.FromContextOr(ctx, s.logger), runID.String())

	items, err := run.BeginRetry()
	if err != nil {
		return nil, err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save import run: %w", err)
	}

	log.Info("Retrying failed catalog items", zap.Int("items", len(items)), zap.Int("retry", run.RetryCount))

	start := time.Now()
	report := s.publisher.Publish(ctx, session, items)
	elapsed := time.Since(start)
	s.metrics.RecordPublish(ctx, session.Shop, report, elapsed)

	if err := s.recordReport(ctx, run, report); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	summary := SheetSummary{
		Source:      run.SourceFile,
		TotalRows:   run.TotalRows,
		SkippedRows: run.SkippedRows,
		Stats:       retryStats(items),
	}
	id := run.ID
	return newImportResult(summary, &id, report, elapsed), nil
}

func retryStats(items []catalog.Item) catalog.Stats {
	return catalog.NewCatalog(items...).Stats()
}

// ---------------------------------------------------------------------------
// Remote queries
// ---------------------------------------------------------------------------

// CountProducts returns the number of products in the shop
func (s *CatalogImportService) CountProducts(ctx context.Context, session integration.Session) (int, error) {
	if err := session.Validate(); err != nil {
		return 0, err
	}
	return s.platform.CountProducts(ctx, session)
}

// ---------------------------------------------------------------------------
// Run bookkeeping
// ---------------------------------------------------------------------------

// acquire serializes imports per shop so two publish passes never interleave
func (s *CatalogImportService) acquire(shop string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.running[shop]; busy {
		return nil, ErrImportInProgress
	}
	s.running[shop] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.running, shop)
		s.mu.Unlock()
	}, nil
}

func (s *CatalogImportService) newRun(ctx context.Context, shop, source string, size int64) (*bulk.ImportRun, error) {
	if s.runRepo == nil {
		return nil, nil
	}
	run, err := bulk.NewImportRun(shop, source, size)
	if err != nil {
		return nil, err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save import run: %w", err)
	}
	return run, nil
}

// failRun records a sheet failure on the run. The original error is what the
// caller sees, so persistence problems are only logged.
func (s *CatalogImportService) failRun(ctx context.Context, run *bulk.ImportRun, cause error) {
	if run == nil {
		return
	}
	code := sheet.CodeOf(cause)
	if code == "" {
		code = sheet.ErrCodeMalformedSheet
	}
	if err := run.Fail(code, cause.Error()); err != nil {
		return
	}
	if err := s.runRepo.Save(context.WithoutCancel(ctx), run); err != nil {
		logger.FromContextOr(ctx, s.logger).Error("Failed to save failed import run", zap.Error(err))
	}
}

// recordReport stores the publish outcome. It saves even when ctx was
// cancelled mid-publish so created items are not forgotten.
func (s *CatalogImportService) recordReport(ctx context.Context, run *bulk.ImportRun, report *integration.PublishReport) error {
	if run == nil {
		return nil
	}
	if err := run.RecordReport(report); err != nil {
		return err
	}
	if err := s.runRepo.Save(context.WithoutCancel(ctx), run); err != nil {
		return fmt.Errorf("failed to save import run: %w", err)
	}
	return nil
}

// IsClientError reports whether err was caused by the request rather than the
// platform or the server
func IsClientError(err error) bool {
	return errors.Is(err, integration.ErrSessionInvalid) ||
		errors.Is(err, sheet.ErrResourceNotFound) ||
		errors.Is(err, sheet.ErrMalformedSheet) ||
		errors.Is(err, sheet.ErrTooManyRows)
}
