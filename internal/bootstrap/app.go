// Package bootstrap wires configuration, infrastructure and the import
// services into one App shared by the server and catalogctl.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	importapp "github.com/lpcheniris/shopify-demo/internal/application/import"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/cache"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/config"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/logger"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/migration"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/persistence"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/sheet"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/shopify"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/telemetry"
)

// Version is stamped at build time with -ldflags "-X .../bootstrap.Version=..."
var Version = "dev"

const meterName = "github.com/lpcheniris/shopify-demo"

// App holds the wired components of one process
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Telemetry *telemetry.Provider
	DB        *persistence.Database
	Ledger    integration.HandleLedger
	Platform  *shopify.Client
	Reader    *sheet.Reader
	Imports   *importapp.CatalogImportService
	History   *importapp.RunHistoryService
}

// NewLogger builds the process logger from the log section
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// SchemaFromConfig turns the configured column letters into a sheet schema
func SchemaFromConfig(cols config.ColumnsConfig) (sheet.Schema, error) {
	pairs, err := cols.OptionPairs()
	if err != nil {
		return sheet.Schema{}, err
	}
	schema := sheet.Schema{
		Handle:      cols.Handle,
		Title:       cols.Title,
		Description: cols.Description,
		Price:       cols.Price,
		Image:       cols.Image,
		HeaderRows:  cols.HeaderRows,
	}
	for _, p := range pairs {
		schema.Options = append(schema.Options, sheet.OptionColumns{Name: p[0], Value: p[1]})
	}
	return schema, nil
}

// New opens the database, the ledger and the Shopify client and builds the
// import services on top of them. Close releases everything New opened.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *App, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	app := &App{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			_ = app.Close(context.Background())
		}
	}()

	app.Telemetry, err = telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    Version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	if err = app.openDatabase(); err != nil {
		return nil, err
	}

	app.Ledger, err = cache.NewHandleLedgerFactory(cfg.Redis, cfg.Ledger, cache.WithLogger(log)).CreateLedger()
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}

	shopCfg := shopify.NewConfig()
	shopCfg.BaseURL = cfg.Shopify.BaseURL
	if cfg.Shopify.APIVersion != "" {
		shopCfg.APIVersion = cfg.Shopify.APIVersion
	}
	if cfg.Shopify.TimeoutSeconds > 0 {
		shopCfg.TimeoutSeconds = cfg.Shopify.TimeoutSeconds
	}
	if cfg.Shopify.RequestsPerSecond > 0 {
		shopCfg.RequestsPerSecond = cfg.Shopify.RequestsPerSecond
	}
	if cfg.Shopify.Burst > 0 {
		shopCfg.Burst = cfg.Shopify.Burst
	}
	shopCfg.RateLimitRetries = cfg.Shopify.RateLimitRetries
	if app.Platform, err = shopify.NewClient(shopCfg, log.Named("shopify")); err != nil {
		return nil, fmt.Errorf("shopify: %w", err)
	}

	schema, err := SchemaFromConfig(cfg.Import.Columns)
	if err != nil {
		return nil, err
	}
	app.Reader, err = sheet.NewReader(
		sheet.WithSchema(schema),
		sheet.WithSheet(cfg.Import.Sheet),
		sheet.WithMaxRows(cfg.Import.MaxRows),
		sheet.WithMaxWarnings(cfg.Import.MaxWarnings),
	)
	if err != nil {
		return nil, err
	}

	metrics, err := telemetry.NewImportMetrics(app.Telemetry.Meter(meterName))
	if err != nil {
		return nil, err
	}

	publisherOpts := []importapp.PublisherOption{importapp.WithPublisherLogger(log.Named("publisher"))}
	if app.Ledger != nil {
		publisherOpts = append(publisherOpts, importapp.WithLedger(app.Ledger))
	}
	runs := persistence.NewGormImportRunRepository(app.DB.DB)

	app.Imports = importapp.NewCatalogImportService(
		app.Reader,
		importapp.NewPublisher(app.Platform, publisherOpts...),
		app.Platform,
		importapp.WithRunRepository(runs),
		importapp.WithMetrics(metrics),
		importapp.WithServiceLogger(log.Named("import")),
		importapp.WithDedupeImages(cfg.Import.DedupeImages),
		importapp.WithDefaultPath(cfg.Import.DefaultPath),
	)
	app.History = importapp.NewRunHistoryService(runs)
	return app, nil
}

func (a *App) openDatabase() error {
	cfg := a.Config
	gormLog := logger.NewGormLogger(a.Logger.Named("gorm"), logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.SlowQueryThreshold))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	a.DB = db

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	return telemetry.InstrumentDatabase(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing,
		LogFullSQL:      cfg.App.Env == "development",
		SlowQueryThresh: cfg.Telemetry.SlowQueryThreshold,
		DBSystem:        dbSystem,
	}, a.Logger)
}

// Session returns the configured fallback session, empty when none is set
func (a *App) Session() integration.Session {
	return integration.Session{Shop: a.Config.Shopify.Shop, AccessToken: a.Config.Shopify.AccessToken}
}

// Migrate brings the import tables up to date. PostgreSQL runs the SQL
// migrations, SQLite is created from the gorm models.
func (a *App) Migrate() error {
	if a.Config.Database.Driver == "sqlite" {
		return a.DB.AutoMigrate()
	}
	m, err := a.Migrator()
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}

// Migrator opens a migrator on its own connection to the configured
// database. The caller closes it.
func (a *App) Migrator() (*migration.Migrator, error) {
	return NewMigrator(a.Config, a.Logger)
}

// NewMigrator opens a migrator without building an App
func NewMigrator(cfg *config.Config, log *zap.Logger) (*migration.Migrator, error) {
	if cfg.Database.Driver == "sqlite" {
		return nil, errors.New("sql migrations need the postgres driver")
	}
	return migration.NewFromURL(cfg.Database.DSN(), cfg.Database.MigrationsPath, log.Named("migrate"))
}

// Close shuts down telemetry and closes the ledger and the database
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if c, ok := a.Ledger.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Telemetry != nil {
		errs = append(errs, a.Telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
