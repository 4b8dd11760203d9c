package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpcheniris/shopify-demo/internal/domain/catalog"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{
			name:   "defaults filled",
			config: &Config{},
		},
		{
			name:   "base url override",
			config: &Config{BaseURL: "http://127.0.0.1:8080/"},
		},
		{
			name:    "bad api version",
			config:  &Config{APIVersion: "v1"},
			wantErr: ErrConfigInvalidAPIVersion,
		},
		{
			name:    "relative base url",
			config:  &Config{BaseURL: "/admin"},
			wantErr: ErrConfigInvalidBaseURL,
		},
		{
			name:    "negative rate",
			config:  &Config{RequestsPerSecond: -1},
			wantErr: ErrConfigInvalidRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultAPIVersion, tt.config.APIVersion)
			assert.Equal(t, float64(DefaultRequestsPerSecond), tt.config.RequestsPerSecond)
			assert.Equal(t, 1, tt.config.Burst)
			assert.NotContains(t, tt.config.BaseURL, "8080/")
		})
	}
}

// ---------------------------------------------------------------------------
// Client Tests
// ---------------------------------------------------------------------------

var testSession = integration.Session{Shop: "jewelery.myshopify.com", AccessToken: "shpat_test"}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		BaseURL:           server.URL,
		RequestsPerSecond: 1000,
		Burst:             10,
		RateLimitRetries:  1,
	}, nil)
	require.NoError(t, err)
	return client
}

func ringItem() catalog.Item {
	return catalog.FromSnapshot(catalog.ItemSnapshot{
		Handle:   "ring",
		Title:    "Ring",
		BodyHTML: "<p>Gold</p>",
		Images:   []catalog.Image{{Src: "http://img/1"}},
		Options:  []catalog.OptionGroup{{Name: "Size", Values: []string{"6", "7"}}},
		Variants: []catalog.Variant{
			{Option1: "6", Price: decimal.RequireFromString("10")},
			{Option1: "7", Price: decimal.RequireFromString("12.5")},
		},
	})
}

func TestClient_CreateProduct(t *testing.T) {
	var got ProductEnvelope
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-01/products.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ProductEnvelope{Product: Product{
			ID:       632910392,
			Handle:   "ring",
			Variants: []Variant{{ID: 1}, {ID: 2}},
		}})
	})

	remote, err := client.CreateProduct(context.Background(), testSession, ringItem())
	require.NoError(t, err)

	assert.Equal(t, int64(632910392), remote.ID)
	assert.Equal(t, "ring", remote.Handle)
	assert.Equal(t, []int64{1, 2}, remote.VariantIDs)

	assert.Equal(t, "Ring", got.Product.Title)
	assert.Equal(t, "<p>Gold</p>", got.Product.BodyHTML)
	assert.Equal(t, []ProductOption{{Name: "Size", Values: []string{"6", "7"}}}, got.Product.Options)
	require.Len(t, got.Product.Variants, 2)
	assert.Equal(t, "10.00", got.Product.Variants[0].Price)
	assert.Equal(t, "12.50", got.Product.Variants[1].Price)
	assert.Equal(t, []Image{{Src: "http://img/1"}}, got.Product.Images)
}

func TestClient_CreateProduct_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		message string
	}{
		{"validation error", http.StatusUnprocessableEntity, `{"errors":{"title":["can't be blank"]}}`, integration.ErrPlatformRequestFailed, "title can't be blank"},
		{"string error", http.StatusBadRequest, `{"errors":"bad request"}`, integration.ErrPlatformRequestFailed, "bad request"},
		{"unauthorized", http.StatusUnauthorized, `{"errors":"[API] Invalid API key"}`, integration.ErrPlatformAuthFailed, "HTTP 401"},
		{"server error", http.StatusInternalServerError, ``, integration.ErrPlatformRequestFailed, "HTTP 500"},
		{"missing id", http.StatusCreated, `{"product":{"handle":"ring"}}`, integration.ErrPlatformInvalidResponse, "product id missing"},
		{"garbage body", http.StatusCreated, `not json`, integration.ErrPlatformInvalidResponse, "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.CreateProduct(context.Background(), testSession, ringItem())

			require.Error(t, err)
			assert.ErrorIs(t, err, integration.ErrRemoteCreateFailed)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, integration.ErrCodeRemoteCreateFailed, integration.ErrorCode(err))
		})
	}
}

func TestClient_RetriesRateLimited(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0.01")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"product":{"id":7,"handle":"ring"}}`))
	})

	remote, err := client.CreateProduct(context.Background(), testSession, ringItem())

	require.NoError(t, err)
	assert.Equal(t, int64(7), remote.ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_RateLimitExhausted(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.CreateProduct(context.Background(), testSession, ringItem())

	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrPlatformRateLimited)
	assert.Equal(t, integration.ErrCodeRateLimited, integration.ErrorCode(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CountProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/admin/api/2024-01/products/count.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"count":42}`))
	})

	count, err := client.CountProducts(context.Background(), testSession)

	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestClient_InvalidSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.CreateProduct(context.Background(), integration.Session{Shop: "demo"}, ringItem())
	assert.ErrorIs(t, err, integration.ErrSessionInvalid)

	_, err = client.CountProducts(context.Background(), integration.Session{AccessToken: "x"})
	assert.ErrorIs(t, err, integration.ErrSessionInvalid)
}

func TestClient_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreateProduct(ctx, testSession, ringItem())

	require.Error(t, err)
	assert.Equal(t, integration.ErrCodeCancelled, integration.ErrorCode(err))
}

func TestClient_Endpoint(t *testing.T) {
	client, err := NewClient(NewConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t,
		"https://jewelery.myshopify.com/admin/api/2024-01/products.json",
		client.endpoint(testSession, "products.json"))
}

func TestErrorResponse_Message(t *testing.T) {
	r := ErrorResponse{Errors: json.RawMessage(`{"title":["can't be blank"],"handle":["taken"]}`)}
	assert.Equal(t, "handle taken; title can't be blank", r.Message())

	assert.Empty(t, ErrorResponse{}.Message())
}
