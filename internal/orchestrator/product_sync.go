package orchestrator

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/example/inventory-core/internal/domain/product"
	"github.com/example/inventory-core/internal/events"
)

// ProductSyncHandler replicates catalog changes into the local products
// table and keeps the cache honest. Pure replication: no domain logic runs
// here.
type ProductSyncHandler struct {
	products product.Store
	cache    product.Cache
}

func NewProductSyncHandler(products product.Store, cache product.Cache) *ProductSyncHandler {
	return &ProductSyncHandler{products: products, cache: cache}
}

// HandleEvent processes one message from the products topic.
func (h *ProductSyncHandler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Printf("[ProductSync] Failed to unmarshal event: %v", err)
		return err
	}

	switch env.Type {
	case events.EventProductCreated, events.EventProductUpdated:
		var e events.ProductEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			log.Printf("[ProductSync] Failed to unmarshal %s: %v", env.Type, err)
			return err
		}
		p := &product.Product{
			ID:        e.ID,
			Name:      e.Name,
			SKU:       e.SKU,
			IsActive:  e.IsActive,
			UpdatedAt: time.Now(),
		}
		if err := h.products.Upsert(ctx, p); err != nil {
			log.Printf("[ProductSync] Failed to upsert product %s: %v", e.ID, err)
			return err
		}
		if h.cache != nil {
			h.cache.Invalidate(ctx, e.ID)
		}
	case events.EventProductDeleted:
		var e events.ProductEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			log.Printf("[ProductSync] Failed to unmarshal ProductDeleted: %v", err)
			return err
		}
		if err := h.products.Delete(ctx, e.ID); err != nil {
			log.Printf("[ProductSync] Failed to delete product %s: %v", e.ID, err)
			return err
		}
		if h.cache != nil {
			h.cache.Invalidate(ctx, e.ID)
		}
	}

	return nil
}
