package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	importapp "github.com/lpcheniris/shopify-demo/internal/application/import"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/sheet"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/dto"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/middleware"
)

// DefaultMaxUploadSize bounds uploaded workbooks (10MB)
const DefaultMaxUploadSize = 10 * 1024 * 1024

// ImportService runs catalog imports
type ImportService interface {
	Preview(ctx context.Context, path string) (*importapp.PreviewResult, error)
	PreviewUpload(ctx context.Context, src io.Reader, fileName string) (*importapp.PreviewResult, error)
	ImportDefault(ctx context.Context, session integration.Session) (*importapp.ImportResult, error)
	ImportUpload(ctx context.Context, session integration.Session, src io.Reader, fileName string, size int64) (*importapp.ImportResult, error)
	Retry(ctx context.Context, session integration.Session, runID uuid.UUID) (*importapp.ImportResult, error)
}

// RunHistory reads recorded import runs
type RunHistory interface {
	GetRun(ctx context.Context, shop string, runID uuid.UUID) (*importapp.RunDetail, error)
	ListRuns(ctx context.Context, shop string, filter importapp.ListRunsFilter) ([]importapp.RunSummary, error)
	FailedItemsCSV(ctx context.Context, shop string, runID uuid.UUID) ([]byte, string, error)
}

// ImportHandler serves the catalog import endpoints
type ImportHandler struct {
	BaseHandler
	imports       ImportService
	history       RunHistory
	maxUploadSize int64
}

// ImportHandlerOption configures an ImportHandler
type ImportHandlerOption func(*ImportHandler)

// WithMaxUploadSize overrides DefaultMaxUploadSize
func WithMaxUploadSize(size int64) ImportHandlerOption {
	return func(h *ImportHandler) {
		if size > 0 {
			h.maxUploadSize = size
		}
	}
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(imports ImportService, history RunHistory, opts ...ImportHandlerOption) *ImportHandler {
	h := &ImportHandler{
		imports:       imports,
		history:       history,
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MaxUploadSize returns the largest accepted workbook in bytes
func (h *ImportHandler) MaxUploadSize() int64 {
	return h.maxUploadSize
}

// ImportDefault godoc
// @ID           importDefaultSheet
// @Summary      Import the bundled product sheet
// @Description  Reads the configured workbook, groups its rows by handle and creates one product per handle. Items are created in sheet order and a failed item does not stop the run.
// @Tags         import
// @Produce      json
// @Param        X-Shopify-Shop-Domain   header  string  false  "Shop domain"
// @Param        X-Shopify-Access-Token  header  string  false  "Admin API access token"
// @Success      200 {object} APIResponse[importapp.ImportResult]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} APIResponse[importapp.ImportResult]
// @Router       /api/newproducts [get]
func (h *ImportHandler) ImportDefault(c *gin.Context) {
	session, ok := h.requireSession(c)
	if !ok {
		return
	}

	result, err := h.imports.ImportDefault(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondImport(c, http.StatusOK, result)
}

// Upload godoc
// @ID           uploadImport
// @Summary      Import an uploaded product sheet
// @Description  Imports the products of an uploaded .xlsx workbook and records the run
// @Tags         import
// @Accept       multipart/form-data
// @Produce      json
// @Param        X-Shopify-Shop-Domain   header    string  false  "Shop domain"
// @Param        X-Shopify-Access-Token  header    string  false  "Admin API access token"
// @Param        file                    formData  file    true   "Workbook (.xlsx)"
// @Success      201 {object} APIResponse[importapp.ImportResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} APIResponse[importapp.ImportResult]
// @Router       /api/v1/imports [post]
func (h *ImportHandler) Upload(c *gin.Context) {
	session, ok := h.requireSession(c)
	if !ok {
		return
	}

	file, header, ok := h.formWorkbook(c)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.imports.ImportUpload(c.Request.Context(), session, file, header.Filename, header.Size)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondImport(c, http.StatusCreated, result)
}

// Preview godoc
// @ID           previewImport
// @Summary      Preview a product sheet
// @Description  Groups the rows of an uploaded workbook, or of the bundled sheet when no file is sent, without creating anything
// @Tags         import
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  false  "Workbook (.xlsx)"
// @Success      200 {object} APIResponse[importapp.PreviewResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /api/v1/imports/preview [post]
func (h *ImportHandler) Preview(c *gin.Context) {
	ctx := c.Request.Context()

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		result, err := h.imports.Preview(ctx, "")
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
		return
	}

	file, header, ok := h.formWorkbook(c)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.imports.PreviewUpload(ctx, file, header.Filename)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List godoc
// @ID           listImports
// @Summary      List import runs
// @Description  Returns the shop's recorded import runs, newest first unless sort_by and order say otherwise
// @Tags         import
// @Produce      json
// @Param        X-Shopify-Shop-Domain  header  string  false  "Shop domain"
// @Param        status  query  string  false  "Run status"  Enums(pending, processing, completed, partial, failed)
// @Param        limit   query  int     false  "Maximum runs (default 20, max 100)"
// @Param        sort_by query  string  false  "Sort field"  Enums(created_at, updated_at, completed_at, source_file, status, total_rows, created_count, failed_count)
// @Param        order   query  string  false  "Sort order"  Enums(asc, desc)
// @Success      200 {object} APIResponse[[]importapp.RunSummary]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      501 {object} ErrorResponse
// @Router       /api/v1/imports [get]
func (h *ImportHandler) List(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	var req dto.ListImportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	runs, err := h.history.ListRuns(c.Request.Context(), shop, importapp.ListRunsFilter{
		Status:    req.Status,
		Limit:     req.Limit,
		SortBy:    req.SortBy,
		SortOrder: req.Order,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, runs)
}

// Get godoc
// @ID           getImport
// @Summary      Get an import run
// @Description  Returns an import run with the publish state of every item
// @Tags         import
// @Produce      json
// @Param        X-Shopify-Shop-Domain  header  string  false  "Shop domain"
// @Param        id  path  string  true  "Run ID (UUID)"
// @Success      200 {object} APIResponse[importapp.RunDetail]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      501 {object} ErrorResponse
// @Router       /api/v1/imports/{id} [get]
func (h *ImportHandler) Get(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	runID, ok := h.bindRunID(c)
	if !ok {
		return
	}

	run, err := h.history.GetRun(c.Request.Context(), shop, runID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, run)
}

// FailedItems godoc
// @ID           exportImportFailures
// @Summary      Export failed items
// @Description  Downloads the failed items of an import run as CSV
// @Tags         import
// @Produce      text/csv
// @Param        X-Shopify-Shop-Domain  header  string  false  "Shop domain"
// @Param        id  path  string  true  "Run ID (UUID)"
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/imports/{id}/failures.csv [get]
func (h *ImportHandler) FailedItems(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	runID, ok := h.bindRunID(c)
	if !ok {
		return
	}

	data, fileName, err := h.history.FailedItemsCSV(c.Request.Context(), shop, runID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Retry godoc
// @ID           retryImport
// @Summary      Retry failed items
// @Description  Creates the failed items of a partial or failed run again. Created items are not touched.
// @Tags         import
// @Produce      json
// @Param        X-Shopify-Shop-Domain   header  string  false  "Shop domain"
// @Param        X-Shopify-Access-Token  header  string  false  "Admin API access token"
// @Param        id  path  string  true  "Run ID (UUID)"
// @Success      200 {object} APIResponse[importapp.ImportResult]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} APIResponse[importapp.ImportResult]
// @Router       /api/v1/imports/{id}/retry [post]
func (h *ImportHandler) Retry(c *gin.Context) {
	session, ok := h.requireSession(c)
	if !ok {
		return
	}
	runID, ok := h.bindRunID(c)
	if !ok {
		return
	}

	result, err := h.imports.Retry(c.Request.Context(), session, runID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondImport(c, http.StatusOK, result)
}

// RegisterRoutes registers the versioned import routes
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/imports")
	imports.POST("", middleware.BodyLimit(h.maxUploadSize+multipartOverhead), h.Upload)
	imports.POST("/preview", middleware.BodyLimit(h.maxUploadSize+multipartOverhead), h.Preview)
	imports.GET("", h.List)
	imports.GET("/:id", h.Get)
	imports.GET("/:id/failures.csv", h.FailedItems)
	imports.POST("/:id/retry", h.Retry)
}

// multipartOverhead leaves room for the form envelope around the file
const multipartOverhead = 64 * 1024

// respondImport writes an import result. A run where every attempted item
// failed is reported as 502 with the report attached.
func (h *ImportHandler) respondImport(c *gin.Context, status int, result *importapp.ImportResult) {
	if result.Status != integration.PublishStatusFailed {
		c.JSON(status, dto.NewSuccessResponse(result))
		return
	}
	resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeImportFailed,
		fmt.Sprintf("None of the %d products could be created", len(result.Failed)), getRequestID(c))
	resp.Data = result
	c.JSON(dto.GetHTTPStatus(dto.ErrCodeImportFailed), resp)
}

// formWorkbook returns the uploaded "file" field after checking its size and
// extension
func (h *ImportHandler) formWorkbook(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.ErrorWithCode(c, sheet.ErrCodeFileTooLarge, h.tooLargeMessage())
			return nil, nil, false
		}
		h.BadRequest(c, "file is required")
		return nil, nil, false
	}

	if header.Size > h.maxUploadSize {
		file.Close()
		h.ErrorWithCode(c, sheet.ErrCodeFileTooLarge, h.tooLargeMessage())
		return nil, nil, false
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		file.Close()
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "file must be an .xlsx workbook")
		return nil, nil, false
	}
	return file, header, true
}

func (h *ImportHandler) tooLargeMessage() string {
	return fmt.Sprintf("file exceeds maximum size of %dMB", h.maxUploadSize/(1024*1024))
}

// bindRunID parses the :id path parameter
func (h *ImportHandler) bindRunID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}
