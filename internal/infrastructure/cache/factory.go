package cache

import (
	"fmt"

	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/config"
	"go.uber.org/zap"
)

// HandleLedgerFactory creates handle ledgers based on configuration
type HandleLedgerFactory struct {
	redisConfig  config.RedisConfig
	ledgerConfig config.LedgerConfig
	logger       *zap.Logger
}

// HandleLedgerFactoryOption is a functional option for configuring the factory
type HandleLedgerFactoryOption func(*HandleLedgerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) HandleLedgerFactoryOption {
	return func(f *HandleLedgerFactory) {
		f.logger = logger
	}
}

// NewHandleLedgerFactory creates a new factory
func NewHandleLedgerFactory(redisCfg config.RedisConfig, ledgerCfg config.LedgerConfig, opts ...HandleLedgerFactoryOption) *HandleLedgerFactory {
	f := &HandleLedgerFactory{
		redisConfig:  redisCfg,
		ledgerConfig: ledgerCfg,
		logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisLedger creates a Redis-based ledger
func (f *HandleLedgerFactory) CreateRedisLedger() (*RedisHandleLedger, error) {
	ledger, err := NewRedisHandleLedger(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.ledgerConfig.KeyPrefix, f.ledgerConfig.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis handle ledger: %w", err)
	}
	return ledger, nil
}

// CreateInMemoryLedger creates an in-memory ledger.
// It does not share state across process instances.
func (f *HandleLedgerFactory) CreateInMemoryLedger() *InMemoryHandleLedger {
	return NewInMemoryHandleLedger(f.ledgerConfig.TTL)
}

// CreateLedger creates the configured ledger. It returns nil when the ledger
// is disabled. A Redis ledger falls back to memory when Redis is unavailable
// and fallback is allowed.
func (f *HandleLedgerFactory) CreateLedger() (integration.HandleLedger, error) {
	if !f.ledgerConfig.Enabled {
		f.logger.Info("handle ledger disabled, repeated imports may create duplicates")
		return nil, nil
	}

	if f.ledgerConfig.Backend == "memory" {
		f.logger.Info("using in-memory handle ledger")
		return f.CreateInMemoryLedger(), nil
	}

	ledger, err := f.CreateRedisLedger()
	if err == nil {
		f.logger.Info("using Redis handle ledger")
		return ledger, nil
	}

	if !f.ledgerConfig.AllowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for handle ledger but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory handle ledger. "+
		"Imports from other instances will not see its entries.",
		zap.Error(err),
	)
	return f.CreateInMemoryLedger(), nil
}
