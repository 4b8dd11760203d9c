package integration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lpcheniris/shopify-demo/internal/domain/catalog"
)

// ---------------------------------------------------------------------------
// CatalogPlatform Errors
// ---------------------------------------------------------------------------

var (
	// Platform errors
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")

	// Session errors
	ErrSessionInvalid = errors.New("integration: session missing shop or access token")

	// Publish errors
	ErrRemoteCreateFailed = errors.New("integration: remote create failed")
)

// Stable error codes reported per failed item
const (
	ErrCodeRemoteCreateFailed = "ERR_IMPORT_REMOTE_CREATE_FAILED"
	ErrCodeRateLimited        = "ERR_IMPORT_RATE_LIMITED"
	ErrCodeInvalidItem        = "ERR_IMPORT_INVALID_ITEM"
	ErrCodeCancelled          = "ERR_IMPORT_CANCELLED"
)

// ErrorCode maps a publish error to its stable code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeCancelled
	case errors.Is(err, ErrPlatformRateLimited):
		return ErrCodeRateLimited
	default:
		return ErrCodeRemoteCreateFailed
	}
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

// Session is the authenticated shop session the platform calls run under.
// The importer never authenticates; it receives the session from its caller.
type Session struct {
	// Shop is the shop domain, e.g. "jewelery.myshopify.com"
	Shop string
	// AccessToken is the Admin API access token
	AccessToken string
}

// Validate checks that the session can authenticate a platform call
func (s Session) Validate() error {
	if strings.TrimSpace(s.Shop) == "" || strings.TrimSpace(s.AccessToken) == "" {
		return ErrSessionInvalid
	}
	return nil
}

// ShopName returns the shop subdomain without the platform suffix
func (s Session) ShopName() string {
	name := strings.TrimSpace(s.Shop)
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimSuffix(name, "/")
	return strings.TrimSuffix(name, ".myshopify.com")
}

// ---------------------------------------------------------------------------
// PublishStatus represents the outcome of a publish run
// ---------------------------------------------------------------------------

// PublishStatus represents the outcome of a publish run
type PublishStatus string

const (
	// PublishStatusEmpty indicates there was nothing to publish
	PublishStatusEmpty PublishStatus = "EMPTY"
	// PublishStatusSuccess indicates every item was created or skipped
	PublishStatusSuccess PublishStatus = "SUCCESS"
	// PublishStatusPartial indicates some items failed
	PublishStatusPartial PublishStatus = "PARTIAL"
	// PublishStatusFailed indicates items failed and none was created or skipped
	PublishStatusFailed PublishStatus = "FAILED"
)

// String returns the string representation of PublishStatus
func (s PublishStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// RemoteProduct is the platform's view of a created product
type RemoteProduct struct {
	// ID is the platform product id
	ID int64
	// Handle is the handle the platform assigned
	Handle string
	// VariantIDs are the ids of the created variants
	VariantIDs []int64
}

// PublishedItem is an item created on the platform
type PublishedItem struct {
	Handle    string    `json:"handle"`
	RemoteID  int64     `json:"remote_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FailedItem is an item whose create call failed
type FailedItem struct {
	Handle       string `json:"handle"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// PublishReport is the per-item result of publishing a catalog.
// Items appear in the order they were attempted.
type PublishReport struct {
	Created []PublishedItem
	Failed  []FailedItem
	Skipped []string
}

// Attempted returns the number of items a create call was issued or refused for
func (r *PublishReport) Attempted() int {
	return len(r.Created) + len(r.Failed)
}

// FailedHandles returns the handles of failed items in attempt order
func (r *PublishReport) FailedHandles() []string {
	handles := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		handles = append(handles, f.Handle)
	}
	return handles
}

// Status derives the overall status of the run
func (r *PublishReport) Status() PublishStatus {
	return DeriveStatus(len(r.Created), len(r.Failed), len(r.Skipped))
}

// DeriveStatus classifies item counts. A skipped item already exists on the
// shop and counts as done, so a pass is FAILED only when nothing was created
// or skipped.
func DeriveStatus(created, failed, skipped int) PublishStatus {
	switch {
	case created+failed+skipped == 0:
		return PublishStatusEmpty
	case failed == 0:
		return PublishStatusSuccess
	case created == 0 && skipped == 0:
		return PublishStatusFailed
	default:
		return PublishStatusPartial
	}
}

// ---------------------------------------------------------------------------
// CatalogPlatform Port Interface
// ---------------------------------------------------------------------------

// CatalogPlatform defines the port interface for the remote commerce platform.
// Concrete adapters live in the infrastructure layer.
type CatalogPlatform interface {
	// CreateProduct creates one product from a catalog item.
	// Failures wrap ErrRemoteCreateFailed.
	CreateProduct(ctx context.Context, session Session, item catalog.Item) (*RemoteProduct, error)

	// CountProducts returns the number of products in the shop
	CountProducts(ctx context.Context, session Session) (int, error)
}
