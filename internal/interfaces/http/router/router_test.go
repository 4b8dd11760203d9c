package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	importapp "github.com/lpcheniris/shopify-demo/internal/application/import"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/handler"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRegistrar struct{ path string }

func (p pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(p.path, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetHeader("X-Seen"))
	})
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.Prefix())

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.Prefix())
}

func TestRouterSetup_ScopesMiddleware(t *testing.T) {
	engine := gin.New()
	mark := func(c *gin.Context) {
		c.Request.Header.Set("X-Seen", "marked")
		c.Next()
	}

	NewRouter(engine).
		Register(pingRegistrar{path: "/a"}, mark).
		Register(pingRegistrar{path: "/b"}).
		Setup()

	for path, want := range map[string]string{"/api/v1/a": "marked", "/api/v1/b": ""} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, want, w.Body.String(), path)
	}
}

// stubImports answers every call with an empty successful result
type stubImports struct{}

func (stubImports) Preview(context.Context, string) (*importapp.PreviewResult, error) {
	return &importapp.PreviewResult{}, nil
}

func (stubImports) PreviewUpload(context.Context, io.Reader, string) (*importapp.PreviewResult, error) {
	return &importapp.PreviewResult{}, nil
}

func (stubImports) ImportDefault(context.Context, integration.Session) (*importapp.ImportResult, error) {
	return &importapp.ImportResult{Status: integration.PublishStatusEmpty}, nil
}

func (stubImports) ImportUpload(context.Context, integration.Session, io.Reader, string, int64) (*importapp.ImportResult, error) {
	return &importapp.ImportResult{Status: integration.PublishStatusEmpty}, nil
}

func (stubImports) Retry(context.Context, integration.Session, uuid.UUID) (*importapp.ImportResult, error) {
	return &importapp.ImportResult{Status: integration.PublishStatusEmpty}, nil
}

type stubHistory struct{}

func (stubHistory) GetRun(context.Context, string, uuid.UUID) (*importapp.RunDetail, error) {
	return &importapp.RunDetail{}, nil
}

func (stubHistory) ListRuns(context.Context, string, importapp.ListRunsFilter) ([]importapp.RunSummary, error) {
	return []importapp.RunSummary{}, nil
}

func (stubHistory) FailedItemsCSV(context.Context, string, uuid.UUID) ([]byte, string, error) {
	return []byte("Position\n"), "import_failures.csv", nil
}

type stubCounter struct{}

func (stubCounter) CountProducts(context.Context, integration.Session) (int, error) {
	return 3, nil
}

func newEngine(t *testing.T, mutate func(*Options)) *gin.Engine {
	t.Helper()
	opts := Options{
		Session:     integration.Session{Shop: "jewelery.myshopify.com", AccessToken: "shpat"},
		CORS:        middleware.DefaultCORSConfig(),
		Security:    middleware.DefaultSecurityConfig(),
		MaxBodySize: 1024,
		Swagger:     middleware.SwaggerConfig{Enabled: true},
	}
	if mutate != nil {
		mutate(&opts)
	}
	engine, err := New(opts, Handlers{
		System:   handler.NewSystemHandler("shopify-demo", "test", nil),
		Products: handler.NewProductHandler(stubCounter{}),
		Imports:  handler.NewImportHandler(stubImports{}, stubHistory{}),
	})
	require.NoError(t, err)
	return engine
}

func TestNew_Routes(t *testing.T) {
	engine := newEngine(t, nil)
	runID := uuid.NewString()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/products-count", http.StatusOK},
		{http.MethodGet, "/api/newproducts", http.StatusOK},
		{http.MethodGet, "/api/v1/system/ping", http.StatusOK},
		{http.MethodGet, "/api/v1/system/info", http.StatusOK},
		{http.MethodPost, "/api/v1/imports/preview", http.StatusOK},
		{http.MethodGet, "/api/v1/imports", http.StatusOK},
		{http.MethodGet, "/api/v1/imports/" + runID, http.StatusOK},
		{http.MethodGet, "/api/v1/imports/" + runID + "/failures.csv", http.StatusOK},
		{http.MethodPost, "/api/v1/imports/" + runID + "/retry", http.StatusOK},
		{http.MethodGet, "/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestNew_SwaggerDisabled(t *testing.T) {
	engine := newEngine(t, func(o *Options) { o.Swagger.Enabled = false })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNew_RateLimit(t *testing.T) {
	engine := newEngine(t, func(o *Options) { o.RateLimiter = middleware.NewRateLimiter(1, time.Hour) })

	first := httptest.NewRecorder()
	engine.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/health", nil))
	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestNew_InvalidTrustedProxies(t *testing.T) {
	_, err := New(Options{TrustedProxies: []string{"not-an-ip"}}, Handlers{})
	require.Error(t, err)
}
