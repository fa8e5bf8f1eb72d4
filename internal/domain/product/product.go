package product

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("product not found")

// Product is a replica of the catalog entry owned by the product service,
// maintained from ProductCreated/Updated/Deleted events. The orchestrator
// consults it before reserving stock for an order item.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	IsActive  bool      `json:"isActive"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store interface {
	Upsert(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	Delete(ctx context.Context, id string) error
}

// Cache fronts the replica for hot lookups. Misses fall through to the
// store; the product-sync consumer invalidates entries on change.
type Cache interface {
	Get(ctx context.Context, id string) (*Product, bool)
	Set(ctx context.Context, p *Product)
	Invalidate(ctx context.Context, id string)
}
