package cache

import (
	"context"
	"testing"
	"time"

	"github.com/lpcheniris/shopify-demo/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryHandleLedger_MarkImported(t *testing.T) {
	ledger := NewInMemoryHandleLedger(0)
	defer ledger.Close()

	ctx := context.Background()

	t.Run("marks new handle", func(t *testing.T) {
		isNew, err := ledger.MarkImported(ctx, "shop-a", "ring", 101)
		require.NoError(t, err)
		assert.True(t, isNew)

		imported, err := ledger.IsImported(ctx, "shop-a", "ring")
		require.NoError(t, err)
		assert.True(t, imported)

		id, ok := ledger.RemoteID("shop-a", "ring")
		assert.True(t, ok)
		assert.Equal(t, int64(101), id)
	})

	t.Run("returns false for recorded handle", func(t *testing.T) {
		_, err := ledger.MarkImported(ctx, "shop-a", "necklace", 1)
		require.NoError(t, err)

		isNew, err := ledger.MarkImported(ctx, "shop-a", "necklace", 2)
		require.NoError(t, err)
		assert.False(t, isNew)

		id, _ := ledger.RemoteID("shop-a", "necklace")
		assert.Equal(t, int64(1), id, "first id is kept")
	})

	t.Run("shops are isolated", func(t *testing.T) {
		_, err := ledger.MarkImported(ctx, "shop-a", "bracelet", 1)
		require.NoError(t, err)

		imported, err := ledger.IsImported(ctx, "shop-b", "bracelet")
		require.NoError(t, err)
		assert.False(t, imported)
	})

	t.Run("forget allows import again", func(t *testing.T) {
		_, err := ledger.MarkImported(ctx, "shop-a", "earring", 1)
		require.NoError(t, err)
		require.NoError(t, ledger.Forget(ctx, "shop-a", "earring"))

		isNew, err := ledger.MarkImported(ctx, "shop-a", "earring", 2)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryHandleLedger_Expiry(t *testing.T) {
	ledger := NewInMemoryHandleLedger(10 * time.Millisecond)
	defer ledger.Close()

	ctx := context.Background()
	_, err := ledger.MarkImported(ctx, "shop", "ring", 1)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	imported, err := ledger.IsImported(ctx, "shop", "ring")
	require.NoError(t, err)
	assert.False(t, imported)

	ledger.cleanup()
	assert.Equal(t, 0, ledger.Size())

	isNew, err := ledger.MarkImported(ctx, "shop", "ring", 2)
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestInMemoryHandleLedger_CloseIsIdempotent(t *testing.T) {
	ledger := NewInMemoryHandleLedger(time.Hour)

	assert.NoError(t, ledger.Close())
	assert.NoError(t, ledger.Close())
}

func TestHandleLedgerFactory_CreateLedger(t *testing.T) {
	t.Run("disabled returns nil", func(t *testing.T) {
		f := NewHandleLedgerFactory(config.RedisConfig{}, config.LedgerConfig{})

		ledger, err := f.CreateLedger()
		require.NoError(t, err)
		assert.Nil(t, ledger)
	})

	t.Run("memory backend", func(t *testing.T) {
		f := NewHandleLedgerFactory(config.RedisConfig{}, config.LedgerConfig{Enabled: true, Backend: "memory"})

		ledger, err := f.CreateLedger()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryHandleLedger{}, ledger)
	})

	t.Run("falls back when redis unreachable", func(t *testing.T) {
		f := NewHandleLedgerFactory(
			config.RedisConfig{Host: "127.0.0.1", Port: 1},
			config.LedgerConfig{Enabled: true, Backend: "redis", AllowInMemoryFallback: true},
		)

		ledger, err := f.CreateLedger()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryHandleLedger{}, ledger)
	})

	t.Run("errors when fallback not allowed", func(t *testing.T) {
		f := NewHandleLedgerFactory(
			config.RedisConfig{Host: "127.0.0.1", Port: 1},
			config.LedgerConfig{Enabled: true, Backend: "redis"},
		)

		_, err := f.CreateLedger()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Redis required")
	})
}
