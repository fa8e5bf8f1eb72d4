package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/example/inventory-core/internal/domain/item"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusFulfilled Status = "FULFILLED"
	StatusCancelled Status = "CANCELLED"
)

var (
	ErrNotFound                   = errors.New("reservation not found")
	ErrInvalidState               = errors.New("reservation is not active")
	ErrExpired                    = errors.New("reservation has expired")
	ErrInvalidQuantity            = errors.New("quantity must be positive")
	ErrInsufficientAvailableStock = errors.New("insufficient available stock")
)

// Reservation is a time-bounded hold against an inventory item's available
// quantity. ACTIVE transitions to FULFILLED or CANCELLED; both are terminal.
type Reservation struct {
	ID              string     `json:"id"`
	InventoryItemID string     `json:"inventoryItemId"`
	Quantity        int        `json:"quantity"`
	OrderID         string     `json:"orderId"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Expired reports whether the reservation is past its expiry. EXPIRED is a
// derived label; the persisted status stays ACTIVE until the sweep cancels
// it.
func (r *Reservation) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// Store is the persistence contract for reservations. The composite
// operations couple the reservation write and the inventory counter write in
// one database transaction: a reservation row must never exist without its
// matching hold, and a terminal status flip must never be observable without
// the counter change.
type Store interface {
	Get(ctx context.Context, id string) (*Reservation, error)
	ListByOrder(ctx context.Context, orderID string) ([]*Reservation, error)
	ListExpired(ctx context.Context, now time.Time) ([]*Reservation, error)

	// CreateWithHold inserts the reservation and increments the item's
	// reserved_quantity, re-checking availability under a row lock.
	CreateWithHold(ctx context.Context, r *Reservation) error

	// AdjustHold applies a quantity change to an ACTIVE reservation and
	// shifts the item's hold by delta, re-checking availability when delta
	// is positive.
	AdjustHold(ctx context.Context, r *Reservation, delta int) error

	// Fulfill marks the reservation FULFILLED and deducts its quantity from
	// both the item's quantity and reserved_quantity. Returns the updated
	// item.
	Fulfill(ctx context.Context, r *Reservation) (*item.Item, error)

	// Cancel marks the reservation CANCELLED and releases its hold. Returns
	// the updated item.
	Cancel(ctx context.Context, r *Reservation) (*item.Item, error)

	// Delete removes the reservation row, releasing the hold when the
	// reservation is still ACTIVE.
	Delete(ctx context.Context, r *Reservation) error
}
