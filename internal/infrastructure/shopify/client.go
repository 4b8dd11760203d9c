package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lpcheniris/shopify-demo/internal/domain/catalog"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from the Admin API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const tracerName = "github.com/lpcheniris/shopify-demo/internal/infrastructure/shopify"

// Client implements integration.CatalogPlatform on the Shopify Admin REST API.
// All calls share one rate limiter.
type Client struct {
	config     *Config
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
	logger     *zap.Logger
}

var _ integration.CatalogPlatform = (*Client)(nil)

// NewClient creates a new Admin API client with the given configuration
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if config == nil {
		return nil, integration.ErrPlatformNotConfigured
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		tracer:  otel.Tracer(tracerName),
		logger:  logger,
	}, nil
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// CreateProduct creates one product from a catalog item
func (c *Client) CreateProduct(ctx context.Context, session integration.Session, item catalog.Item) (*integration.RemoteProduct, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "shopify.CreateProduct",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("shopify.shop", session.ShopName()),
			attribute.String("catalog.handle", item.Handle()),
			attribute.Int("catalog.variants", len(item.Variants())),
		))
	defer span.End()

	var resp ProductEnvelope
	err := c.doRequest(ctx, session, http.MethodPost, "products.json",
		ProductEnvelope{Product: productFromItem(item)}, &resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s: %w", integration.ErrRemoteCreateFailed, item.Handle(), err)
	}
	if resp.Product.ID == 0 {
		err := fmt.Errorf("%w: product id missing", integration.ErrPlatformInvalidResponse)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s: %w", integration.ErrRemoteCreateFailed, item.Handle(), err)
	}

	remote := &integration.RemoteProduct{
		ID:         resp.Product.ID,
		Handle:     resp.Product.Handle,
		VariantIDs: make([]int64, 0, len(resp.Product.Variants)),
	}
	for _, v := range resp.Product.Variants {
		remote.VariantIDs = append(remote.VariantIDs, v.ID)
	}
	span.SetAttributes(attribute.Int64("shopify.product_id", remote.ID))
	return remote, nil
}

// CountProducts returns the number of products in the shop
func (c *Client) CountProducts(ctx context.Context, session integration.Session) (int, error) {
	if err := session.Validate(); err != nil {
		return 0, err
	}

	ctx, span := c.tracer.Start(ctx, "shopify.CountProducts",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("shopify.shop", session.ShopName())))
	defer span.End()

	var resp CountResponse
	if err := c.doRequest(ctx, session, http.MethodGet, "products/count.json", nil, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return resp.Count, nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// endpoint builds the Admin API url for a resource path
func (c *Client) endpoint(session integration.Session, path string) string {
	base := c.config.BaseURL
	if base == "" {
		base = "https://" + session.ShopName() + ".myshopify.com"
	}
	return fmt.Sprintf("%s/admin/api/%s/%s", base, c.config.APIVersion, path)
}

// doRequest performs a rate limited call, retrying 429 responses up to the
// configured count.
func (c *Client) doRequest(ctx context.Context, session integration.Session, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("shopify: failed to encode request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		wait, err := c.send(ctx, session, method, path, payload, out)
		if err == nil || !errors.Is(err, integration.ErrPlatformRateLimited) || attempt >= c.config.RateLimitRetries {
			return err
		}

		c.logger.Debug("shopify rate limited, retrying",
			zap.String("path", path),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// send performs one HTTP exchange. On 429 it returns the wait suggested by
// the Retry-After header.
func (c *Client) send(ctx context.Context, session integration.Session, method, path string, payload []byte, out any) (time.Duration, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(session, path), body)
	if err != nil {
		return 0, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", session.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: %v", integration.ErrPlatformRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return c.retryAfter(resp.Header.Get("Retry-After")),
			fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return 0, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformAuthFailed, resp.StatusCode)
	case resp.StatusCode >= 400:
		var apiErr ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message() != "" {
			return 0, fmt.Errorf("%w: HTTP %d: %s", integration.ErrPlatformRequestFailed, resp.StatusCode, apiErr.Message())
		}
		return 0, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return 0, fmt.Errorf("%w: failed to parse response: %v", integration.ErrPlatformInvalidResponse, err)
		}
	}
	return 0, nil
}

func (c *Client) retryAfter(header string) time.Duration {
	limit := time.Duration(c.config.MaxRetryWaitSeconds) * time.Second
	secs, err := strconv.ParseFloat(header, 64)
	if err != nil || secs < 0 {
		return time.Second
	}
	wait := time.Duration(secs * float64(time.Second))
	if wait > limit {
		return limit
	}
	return wait
}
