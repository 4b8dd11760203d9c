// Package router assembles the gin engine of the import API.
package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/logger"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/handler"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under the versioned API prefix
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	entries    []registration
}

type registration struct {
	registrar  RouteRegistrar
	middleware []gin.HandlerFunc
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use adds middleware applied to every registrar
func (r *Router) Use(mw ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, mw...)
	return r
}

// Register adds a registrar, with middleware applied to its routes only
func (r *Router) Register(registrar RouteRegistrar, mw ...gin.HandlerFunc) *Router {
	r.entries = append(r.entries, registration{registrar: registrar, middleware: mw})
	return r
}

// Prefix returns the versioned API prefix
func (r *Router) Prefix() string {
	return "/api/" + r.apiVersion
}

// Setup registers all routes with the engine. Each registrar gets its own
// group so per-registrar middleware does not leak.
func (r *Router) Setup() {
	for _, e := range r.entries {
		handlers := append(append([]gin.HandlerFunc{}, r.middleware...), e.middleware...)
		e.registrar.RegisterRoutes(r.engine.Group(r.Prefix(), handlers...))
	}
}

// Options configures the engine built by New
type Options struct {
	Logger *zap.Logger
	// Session is the configured shop session requests fall back to
	Session        integration.Session
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	MaxBodySize    int64
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	Tracing        middleware.TracingConfig
	Meter          metric.Meter // nil disables HTTP metrics
	Swagger        middleware.SwaggerConfig
	TrustedProxies []string
}

// Handlers are the endpoints mounted by New
type Handlers struct {
	System   *handler.SystemHandler
	Products *handler.ProductHandler
	Imports  *handler.ImportHandler
}

// New builds the gin engine with the middleware chain and every route.
//
// Middleware order: Tracing, RequestID, Recovery, Logger, Session,
// SpanErrorMarker, Metrics, Secure, CORS, RateLimit.
func New(opts Options, h Handlers) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(
		middleware.TracingWithConfig(opts.Tracing),
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Session(opts.Session),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(opts.Meter),
		middleware.SecureWithConfig(opts.Security),
		middleware.CORSWithConfig(opts.CORS),
	)
	if opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}

	limit := middleware.BodyLimit(opts.MaxBodySize)

	engine.GET("/health", h.System.Health)
	if opts.Swagger.Enabled {
		engine.GET("/swagger/*any", middleware.SwaggerProtection(opts.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Endpoints called by the embedded app
	legacy := engine.Group("/api", limit)
	legacy.GET("/products-count", h.Products.Count)
	legacy.GET("/newproducts", h.Imports.ImportDefault)

	// Uploads carry their own, larger limit
	NewRouter(engine, WithAPIVersion("v1")).
		Register(h.System, limit).
		Register(h.Imports).
		Setup()

	return engine, nil
}
