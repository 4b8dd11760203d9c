package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	importapp "github.com/lpcheniris/shopify-demo/internal/application/import"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/middleware"
)

// MockImportService implements ImportService for testing
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Preview(ctx context.Context, path string) (*importapp.PreviewResult, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importapp.PreviewResult), args.Error(1)
}

func (m *MockImportService) PreviewUpload(ctx context.Context, src io.Reader, fileName string) (*importapp.PreviewResult, error) {
	args := m.Called(ctx, src, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importapp.PreviewResult), args.Error(1)
}

func (m *MockImportService) ImportDefault(ctx context.Context, session integration.Session) (*importapp.ImportResult, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importapp.ImportResult), args.Error(1)
}

func (m *MockImportService) ImportUpload(ctx context.Context, session integration.Session, src io.Reader, fileName string, size int64) (*importapp.ImportResult, error) {
	args := m.Called(ctx, session, src, fileName, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importapp.ImportResult), args.Error(1)
}

func (m *MockImportService) Retry(ctx context.Context, session integration.Session, runID uuid.UUID) (*importapp.ImportResult, error) {
	args := m.Called(ctx, session, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importapp.ImportResult), args.Error(1)
}

// MockRunHistory implements RunHistory for testing
type MockRunHistory struct {
	mock.Mock
}

func (m *MockRunHistory) GetRun(ctx context.Context, shop string, runID uuid.UUID) (*importapp.RunDetail, error) {
	args := m.Called(ctx, shop, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importapp.RunDetail), args.Error(1)
}

func (m *MockRunHistory) ListRuns(ctx context.Context, shop string, filter importapp.ListRunsFilter) ([]importapp.RunSummary, error) {
	args := m.Called(ctx, shop, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]importapp.RunSummary), args.Error(1)
}

func (m *MockRunHistory) FailedItemsCSV(ctx context.Context, shop string, runID uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, shop, runID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

// MockProductCounter implements ProductCounter for testing
type MockProductCounter struct {
	mock.Mock
}

func (m *MockProductCounter) CountProducts(ctx context.Context, session integration.Session) (int, error) {
	args := m.Called(ctx, session)
	return args.Int(0), args.Error(1)
}

var testSession = integration.Session{Shop: "jewelery.myshopify.com", AccessToken: "shpat_test"}

// newTestRouter mounts the session middleware the way the server does, with
// testSession as the configured session
func newTestRouter(register func(r *gin.Engine)) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Session(testSession))
	register(r)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// uploadRequest builds a multipart request carrying content as field "file"
func uploadRequest(t *testing.T, target, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
