package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/redis/go-redis/v9"
)

const defaultLedgerPrefix = "import:handle:"

// RedisHandleLedger implements HandleLedger using Redis.
// Keys are prefix + shop + ":" + handle and hold the remote product id.
type RedisHandleLedger struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisHandleLedger connects to Redis and creates a ledger.
// A zero ttl keeps entries forever.
func NewRedisHandleLedger(cfg RedisConfig, keyPrefix string, ttl time.Duration) (*RedisHandleLedger, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisHandleLedgerWithClient(client, keyPrefix, ttl), nil
}

// NewRedisHandleLedgerWithClient creates a ledger with an existing Redis client
func NewRedisHandleLedgerWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisHandleLedger {
	if keyPrefix == "" {
		keyPrefix = defaultLedgerPrefix
	}
	return &RedisHandleLedger{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (l *RedisHandleLedger) key(shop, handle string) string {
	return l.keyPrefix + shop + ":" + handle
}

// MarkImported records the handle with SETNX so concurrent imports agree on one winner
func (l *RedisHandleLedger) MarkImported(ctx context.Context, shop, handle string, remoteID int64) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(shop, handle), strconv.FormatInt(remoteID, 10), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark handle as imported: %w", err)
	}
	return ok, nil
}

// IsImported checks if a handle has been recorded
func (l *RedisHandleLedger) IsImported(ctx context.Context, shop, handle string) (bool, error) {
	exists, err := l.client.Exists(ctx, l.key(shop, handle)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check imported handle: %w", err)
	}
	return exists > 0, nil
}

// Forget deletes a recorded handle
func (l *RedisHandleLedger) Forget(ctx context.Context, shop, handle string) error {
	if err := l.client.Del(ctx, l.key(shop, handle)).Err(); err != nil {
		return fmt.Errorf("failed to forget handle: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisHandleLedger) Close() error {
	return l.client.Close()
}

var _ integration.HandleLedger = (*RedisHandleLedger)(nil)
