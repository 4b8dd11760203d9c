package shopify

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// Config holds configuration for the Shopify Admin REST API
type Config struct {
	// APIVersion is the Admin API version, e.g. "2024-01"
	APIVersion string
	// BaseURL overrides https://{shop}.myshopify.com, used for proxies and tests
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// RequestsPerSecond is the client-side call rate limit
	RequestsPerSecond float64
	// Burst is the number of calls allowed above the rate
	Burst int
	// RateLimitRetries is how many times a 429 response is retried after Retry-After
	RateLimitRetries int
	// MaxRetryWaitSeconds caps the wait taken from a Retry-After header
	MaxRetryWaitSeconds int
}

const (
	// DefaultAPIVersion is the Admin API version used when none is configured
	DefaultAPIVersion = "2024-01"
	// DefaultRequestsPerSecond matches the REST Admin API leaky bucket refill rate
	DefaultRequestsPerSecond = 2
)

// Errors for Shopify configuration
var (
	ErrConfigInvalidAPIVersion = errors.New("shopify: api version must look like YYYY-MM")
	ErrConfigInvalidBaseURL    = errors.New("shopify: base url must be an absolute http(s) url")
	ErrConfigInvalidRate       = errors.New("shopify: requests per second cannot be negative")
)

var apiVersionPattern = regexp.MustCompile(`^\d{4}-\d{2}$|^unstable$`)

// NewConfig creates a configuration with defaults
func NewConfig() *Config {
	return &Config{
		APIVersion:          DefaultAPIVersion,
		TimeoutSeconds:      30,
		RequestsPerSecond:   DefaultRequestsPerSecond,
		Burst:               1,
		RateLimitRetries:    1,
		MaxRetryWaitSeconds: 10,
	}
}

// Validate validates the configuration and fills defaults
func (c *Config) Validate() error {
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if !apiVersionPattern.MatchString(c.APIVersion) {
		return ErrConfigInvalidAPIVersion
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrConfigInvalidBaseURL
		}
		c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	}
	if c.RequestsPerSecond < 0 {
		return ErrConfigInvalidRate
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.RateLimitRetries < 0 {
		c.RateLimitRetries = 0
	}
	if c.MaxRetryWaitSeconds <= 0 {
		c.MaxRetryWaitSeconds = 10
	}
	return nil
}
