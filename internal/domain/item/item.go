package item

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusReserved  Status = "RESERVED"
	StatusSold      Status = "SOLD"
	StatusDamaged   Status = "DAMAGED"
	StatusReturned  Status = "RETURNED"
)

var (
	ErrNotFound          = errors.New("inventory item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrWarehouseNotFound = errors.New("warehouse not found")
	ErrWarehouseInactive = errors.New("warehouse is not active")
)

// Item is the current stock position for a product, optionally tied to a
// warehouse. ReservedQuantity is the portion of Quantity held by active
// reservations; 0 <= ReservedQuantity <= Quantity holds for every persisted
// row.
type Item struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"productId"`
	WarehouseID      string    `json:"warehouseId,omitempty"`
	Quantity         int       `json:"quantity"`
	ReservedQuantity int       `json:"reservedQuantity"`
	Status           Status    `json:"status"`
	ReorderPoint     *int      `json:"reorderPoint,omitempty"`
	ReorderQuantity  *int      `json:"reorderQuantity,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Available is the stock not currently held by any active reservation.
func (i *Item) Available() int {
	return i.Quantity - i.ReservedQuantity
}

// LowStock reports whether the item has dropped to or below its reorder
// point. Items without a reorder point never report low stock.
func (i *Item) LowStock() bool {
	return i.ReorderPoint != nil && i.Available() <= *i.ReorderPoint
}

type Warehouse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the persistence contract for inventory items. AdjustQuantity and
// AdjustReserved must be implemented as single atomic UPDATE statements, not
// application-side read-modify-write.
type Store interface {
	Insert(ctx context.Context, it *Item) error
	Get(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context) ([]*Item, error)
	ListByProduct(ctx context.Context, productID string) ([]*Item, error)
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id string) error
	AdjustQuantity(ctx context.Context, id string, delta int) (*Item, error)
	AdjustReserved(ctx context.Context, id string, delta int) error
}

// WarehouseStore is the persistence contract for the warehouse rows the
// accessor validates against.
type WarehouseStore interface {
	InsertWarehouse(ctx context.Context, w *Warehouse) error
	GetWarehouse(ctx context.Context, id string) (*Warehouse, error)
	DeactivateWarehouse(ctx context.Context, id string) error
}
