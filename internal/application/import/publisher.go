package importapp

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lpcheniris/shopify-demo/internal/domain/catalog"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/logger"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/telemetry"
)

// Publisher creates catalog items on the remote platform one at a time, in
// catalog order, and records the outcome of every item.
type Publisher struct {
	platform integration.CatalogPlatform
	ledger   integration.HandleLedger
	logger   *zap.Logger
	now      func() time.Time
}

// PublisherOption configures a Publisher
type PublisherOption func(*Publisher)

// WithLedger skips handles the ledger already knows and records created ones
func WithLedger(ledger integration.HandleLedger) PublisherOption {
	return func(p *Publisher) {
		p.ledger = ledger
	}
}

// WithPublisherLogger sets the fallback logger used when ctx carries none
func WithPublisherLogger(l *zap.Logger) PublisherOption {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPublisher creates a new Publisher
func NewPublisher(platform integration.CatalogPlatform, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		platform: platform,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish issues one create call per item. A failed item never stops the
// items after it. Once ctx is done no further calls are made and the
// remaining items are reported failed with ERR_IMPORT_CANCELLED.
func (p *Publisher) Publish(ctx context.Context, session integration.Session, items []catalog.Item) *integration.PublishReport {
	report := &integration.PublishReport{
		Created: make([]integration.PublishedItem, 0, len(items)),
		Failed:  make([]integration.FailedItem, 0),
		Skipped: make([]string, 0),
	}
	log := p.log(ctx)

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			report.Failed = append(report.Failed, failure(item.Handle(), integration.ErrCodeCancelled, err))
			continue
		}

		if err := item.Validate(); err != nil {
			log.Warn("Catalog item rejected before publish",
				zap.String("handle", item.Handle()), zap.Error(err))
			report.Failed = append(report.Failed, failure(item.Handle(), integration.ErrCodeInvalidItem, err))
			continue
		}

		if p.alreadyImported(ctx, log, session, item.Handle()) {
			report.Skipped = append(report.Skipped, item.Handle())
			continue
		}

		remote, err := p.publishOne(ctx, session, item)
		if err != nil {
			log.Warn("Catalog item publish failed",
				zap.String("handle", item.Handle()), zap.Error(err))
			report.Failed = append(report.Failed, failure(item.Handle(), integration.ErrorCode(err), err))
			continue
		}

		report.Created = append(report.Created, integration.PublishedItem{
			Handle:    item.Handle(),
			RemoteID:  remote.ID,
			CreatedAt: p.now(),
		})
		p.markImported(ctx, log, session, item.Handle(), remote.ID)
	}

	log.Info("Catalog publish finished",
		zap.Int("items", len(items)),
		zap.Int("created", len(report.Created)),
		zap.Int("failed", len(report.Failed)),
		zap.Int("skipped", len(report.Skipped)),
		zap.String("status", report.Status().String()),
	)
	return report
}

func (p *Publisher) publishOne(ctx context.Context, session integration.Session, item catalog.Item) (*integration.RemoteProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "import.publish_item",
		telemetry.WithAttribute("catalog.handle", item.Handle()),
		telemetry.WithAttribute("catalog.variants", len(item.Variants())),
		telemetry.WithAttribute("catalog.images", len(item.Images())),
		telemetry.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	remote, err := p.platform.CreateProduct(ctx, session, item)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return remote, nil
}

// alreadyImported consults the ledger. A ledger outage is logged and the item
// is published anyway.
func (p *Publisher) alreadyImported(ctx context.Context, log *zap.Logger, session integration.Session, handle string) bool {
	if p.ledger == nil {
		return false
	}
	seen, err := p.ledger.IsImported(ctx, session.Shop, handle)
	if err != nil {
		log.Warn("Handle ledger lookup failed", zap.String("handle", handle), zap.Error(err))
		return false
	}
	if seen {
		log.Debug("Skipping handle already imported", zap.String("handle", handle))
	}
	return seen
}

func (p *Publisher) markImported(ctx context.Context, log *zap.Logger, session integration.Session, handle string, remoteID int64) {
	if p.ledger == nil {
		return
	}
	if _, err := p.ledger.MarkImported(context.WithoutCancel(ctx), session.Shop, handle, remoteID); err != nil {
		log.Warn("Handle ledger update failed", zap.String("handle", handle), zap.Error(err))
	}
}

func (p *Publisher) log(ctx context.Context) *zap.Logger {
	return logger.WithTraceContext(ctx, logger.FromContextOr(ctx, p.logger))
}

func failure(handle, code string, err error) integration.FailedItem {
	return integration.FailedItem{
		Handle:       handle,
		ErrorCode:    code,
		ErrorMessage: err.Error(),
	}
}
