package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/lpcheniris/shopify-demo/docs"
	"github.com/lpcheniris/shopify-demo/internal/bootstrap"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/config"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/handler"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/middleware"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/router"
)

//	@title			Shopify Demo Import API
//	@version		1.0
//	@description	Creates shop products from a spreadsheet: rows are grouped by handle and each group becomes one product with its variants, options and images.

//	@contact.name	API Support
//	@contact.url	https://github.com/lpcheniris/shopify-demo

//	@license.name	MIT

//	@host		localhost:8081
//	@BasePath	/

//	@securityDefinitions.apikey	ShopToken
//	@in							header
//	@name						X-Shopify-Access-Token
//	@description				Admin API access token of the shop named by X-Shopify-Shop-Domain

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting import server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", bootstrap.Version),
	)

	app, err := bootstrap.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Close(ctx); err != nil {
			log.Error("Error releasing resources", zap.Error(err))
		}
	}()

	if err := app.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	if !cfg.Shopify.HasSession() {
		log.Warn("No default shop session configured, requests must carry shop and token headers")
	}

	engine, err := router.New(routerOptions(cfg, app), router.Handlers{
		System:   handler.NewSystemHandler(cfg.App.Name, bootstrap.Version, app.DB),
		Products: handler.NewProductHandler(app.Imports),
		Imports: handler.NewImportHandler(app.Imports, app.History,
			handler.WithMaxUploadSize(cfg.Import.MaxUploadSize)),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

func routerOptions(cfg *config.Config, app *bootstrap.App) router.Options {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.Env == "production"

	opts := router.Options{
		Logger:      app.Logger,
		Session:     app.Session(),
		CORS:        cors,
		Security:    security,
		MaxBodySize: cfg.HTTP.MaxBodySize,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Swagger: middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		},
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}
	if cfg.HTTP.RateLimitEnabled {
		opts.RateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}
	if app.Telemetry.MetricsEnabled() {
		opts.Meter = app.Telemetry.Meter("github.com/lpcheniris/shopify-demo/http")
	}
	return opts
}
