package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
)

// ImportMetrics records sheet and publish counters for import runs
type ImportMetrics struct {
	rowsRead        metric.Int64Counter
	rowsSkipped     metric.Int64Counter
	items           metric.Int64Counter
	runs            metric.Int64Counter
	publishDuration metric.Float64Histogram
}

// NewImportMetrics registers the import instruments on meter
func NewImportMetrics(meter metric.Meter) (*ImportMetrics, error) {
	m := &ImportMetrics{}
	var err error

	if m.rowsRead, err = meter.Int64Counter("import.rows.read",
		metric.WithDescription("Sheet rows read, header rows excluded"),
		metric.WithUnit("{row}")); err != nil {
		return nil, &MetricsError{Metric: "import.rows.read", Err: err}
	}
	if m.rowsSkipped, err = meter.Int64Counter("import.rows.skipped",
		metric.WithDescription("Sheet rows dropped before aggregation"),
		metric.WithUnit("{row}")); err != nil {
		return nil, &MetricsError{Metric: "import.rows.skipped", Err: err}
	}
	if m.items, err = meter.Int64Counter("import.items",
		metric.WithDescription("Catalog items by publish outcome"),
		metric.WithUnit("{item}")); err != nil {
		return nil, &MetricsError{Metric: "import.items", Err: err}
	}
	if m.runs, err = meter.Int64Counter("import.runs",
		metric.WithDescription("Import runs by final status"),
		metric.WithUnit("{run}")); err != nil {
		return nil, &MetricsError{Metric: "import.runs", Err: err}
	}
	if m.publishDuration, err = meter.Float64Histogram("import.publish.duration",
		metric.WithDescription("Wall time of one publish pass"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600)); err != nil {
		return nil, &MetricsError{Metric: "import.publish.duration", Err: err}
	}
	return m, nil
}

// RecordRows counts the rows a sheet produced
func (m *ImportMetrics) RecordRows(ctx context.Context, shop string, read, skipped int) {
	attrs := metric.WithAttributes(attribute.String("shop", shop))
	m.rowsRead.Add(ctx, int64(read), attrs)
	if skipped > 0 {
		m.rowsSkipped.Add(ctx, int64(skipped), attrs)
	}
}

// RecordPublish counts the outcome of every item in report
func (m *ImportMetrics) RecordPublish(ctx context.Context, shop string, report *integration.PublishReport, elapsed time.Duration) {
	shopAttr := attribute.String("shop", shop)
	add := func(n int, outcome string) {
		if n == 0 {
			return
		}
		m.items.Add(ctx, int64(n), metric.WithAttributes(shopAttr, attribute.String("outcome", outcome)))
	}
	add(len(report.Created), "created")
	add(len(report.Failed), "failed")
	add(len(report.Skipped), "skipped")

	status := attribute.String("status", report.Status().String())
	m.runs.Add(ctx, 1, metric.WithAttributes(shopAttr, status))
	m.publishDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(status))
}

// MetricsError reports an instrument that could not be registered
type MetricsError struct {
	Metric string
	Err    error
}

func (e *MetricsError) Error() string {
	return "failed to create metric " + e.Metric + ": " + e.Err.Error()
}

func (e *MetricsError) Unwrap() error {
	return e.Err
}
