package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // Include query variables in spans (dev only)
	SlowQueryThresh time.Duration // Default: 200ms
	DBSystem        string        // "postgresql" or "sqlite"
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

type startTimeKey struct{}

// InstrumentDatabase registers the otelgorm plugin and a slow query callback
// on db. It does nothing when tracing is disabled.
func InstrumentDatabase(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, startTimeKey{}, time.Now())
		}
	}
	after := slowQueryCallback(cfg.SlowQueryThresh, logger)

	cb := db.Callback()
	registrations := []struct {
		name string
		err  error
	}{
		{"create", errors.Join(
			cb.Create().Before("gorm:create").Register("import_timing:before_create", before),
			cb.Create().After("gorm:create").Register("import_slow_query:create", after))},
		{"query", errors.Join(
			cb.Query().Before("gorm:query").Register("import_timing:before_query", before),
			cb.Query().After("gorm:query").Register("import_slow_query:query", after))},
		{"update", errors.Join(
			cb.Update().Before("gorm:update").Register("import_timing:before_update", before),
			cb.Update().After("gorm:update").Register("import_slow_query:update", after))},
		{"delete", errors.Join(
			cb.Delete().Before("gorm:delete").Register("import_timing:before_delete", before),
			cb.Delete().After("gorm:delete").Register("import_slow_query:delete", after))},
		{"raw", errors.Join(
			cb.Raw().Before("gorm:raw").Register("import_timing:before_raw", before),
			cb.Raw().After("gorm:raw").Register("import_slow_query:raw", after))},
	}
	for _, r := range registrations {
		if r.err != nil {
			return r.err
		}
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}

func slowQueryCallback(threshold time.Duration, logger *zap.Logger) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			return
		}
		startTime, ok := ctx.Value(startTimeKey{}).(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(startTime)
		if elapsed <= threshold {
			return
		}

		logger.Warn("Slow database query",
			zap.String("table", tx.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", threshold),
		)

		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
