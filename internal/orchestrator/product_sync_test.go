package orchestrator

import (
	"context"
	"testing"

	"github.com/example/inventory-core/internal/domain/product"
	"github.com/example/inventory-core/internal/events"
	"github.com/example/inventory-core/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductSync_CreatedUpsertsReplica(t *testing.T) {
	db := mocks.NewMockStore()
	cache := newMemCache()
	h := NewProductSyncHandler(db.Products(), cache)
	ctx := context.Background()

	msg := envelope(t, events.EventProductCreated, events.ProductEvent{
		ID: "prod-1", Name: "Widget", SKU: "W-1", IsActive: true,
	})
	require.NoError(t, h.HandleEvent(ctx, []byte("prod-1"), msg))

	p, err := db.Products().Get(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
	assert.True(t, p.IsActive)
	assert.Contains(t, cache.invalidated, "prod-1")
}

func TestProductSync_UpdatedReplacesAndInvalidates(t *testing.T) {
	db := mocks.NewMockStore()
	cache := newMemCache()
	h := NewProductSyncHandler(db.Products(), cache)
	ctx := context.Background()

	db.SeedProduct(&product.Product{ID: "prod-1", Name: "Widget", SKU: "W-1", IsActive: true})
	cache.entries["prod-1"] = &product.Product{ID: "prod-1", Name: "Widget", IsActive: true}

	msg := envelope(t, events.EventProductUpdated, events.ProductEvent{
		ID: "prod-1", Name: "Widget v2", SKU: "W-1", IsActive: false,
	})
	require.NoError(t, h.HandleEvent(ctx, []byte("prod-1"), msg))

	p, err := db.Products().Get(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", p.Name)
	assert.False(t, p.IsActive)
	// The stale cache entry is gone; the next lookup refills from the store.
	assert.NotContains(t, cache.entries, "prod-1")
}

func TestProductSync_DeletedRemovesReplica(t *testing.T) {
	db := mocks.NewMockStore()
	cache := newMemCache()
	h := NewProductSyncHandler(db.Products(), cache)
	ctx := context.Background()

	db.SeedProduct(&product.Product{ID: "prod-1", Name: "Widget", SKU: "W-1", IsActive: true})

	msg := envelope(t, events.EventProductDeleted, events.ProductEvent{ID: "prod-1"})
	require.NoError(t, h.HandleEvent(ctx, []byte("prod-1"), msg))

	_, err := db.Products().Get(ctx, "prod-1")
	assert.ErrorIs(t, err, product.ErrNotFound)
	assert.Contains(t, cache.invalidated, "prod-1")
}

func TestProductSync_NilCache(t *testing.T) {
	db := mocks.NewMockStore()
	h := NewProductSyncHandler(db.Products(), nil)

	msg := envelope(t, events.EventProductCreated, events.ProductEvent{
		ID: "prod-1", Name: "Widget", SKU: "W-1", IsActive: true,
	})

	assert.NoError(t, h.HandleEvent(context.Background(), []byte("prod-1"), msg))
}
