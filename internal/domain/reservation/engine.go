package reservation

import (
	"context"
	"log"
	"time"

	"github.com/example/inventory-core/internal/domain/item"
	"github.com/example/inventory-core/internal/events"
	"github.com/google/uuid"
)

const expiredReason = "Reservation expired"

// Engine drives the reservation state machine. Every state change publishes
// a domain event after the database transaction commits; a failed publish is
// logged and surfaced to the caller without rolling back committed state.
type Engine struct {
	store     Store
	items     item.Store
	publisher events.Publisher
}

func NewEngine(store Store, items item.Store, publisher events.Publisher) *Engine {
	return &Engine{
		store:     store,
		items:     items,
		publisher: publisher,
	}
}

type CreateReservation struct {
	InventoryItemID string     `json:"inventoryItemId"`
	Quantity        int        `json:"quantity"`
	OrderID         string     `json:"orderId"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
}

// Create places a hold of cmd.Quantity against the inventory item. The
// availability check is repeated under a row lock inside the store
// transaction, so two concurrent creates cannot both over-reserve the same
// item.
func (e *Engine) Create(ctx context.Context, cmd CreateReservation) (*Reservation, error) {
	if cmd.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	it, err := e.items.Get(ctx, cmd.InventoryItemID)
	if err != nil {
		return nil, err
	}
	if it.Available() < cmd.Quantity {
		return nil, ErrInsufficientAvailableStock
	}

	now := time.Now()
	r := &Reservation{
		ID:              uuid.New().String(),
		InventoryItemID: cmd.InventoryItemID,
		Quantity:        cmd.Quantity,
		OrderID:         cmd.OrderID,
		ExpiresAt:       cmd.ExpiresAt,
		Status:          StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := e.store.CreateWithHold(ctx, r); err != nil {
		return nil, err
	}

	reserved := events.InventoryReserved{
		ReservationID:   r.ID,
		InventoryItemID: r.InventoryItemID,
		OrderID:         r.OrderID,
		ProductID:       it.ProductID,
		Quantity:        r.Quantity,
		ExpiresAt:       r.ExpiresAt,
	}
	if err := e.publisher.Publish(ctx, r.InventoryItemID, events.EventInventoryReserved, reserved); err != nil {
		log.Printf("[Reservations] Failed to publish reserved event for %s: %v", r.ID, err)
		return r, err
	}

	return r, nil
}

type UpdateReservation struct {
	Quantity  *int       `json:"quantity,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Update changes the quantity or expiry of an ACTIVE reservation. A quantity
// change re-validates availability for the signed difference and shifts the
// item's hold accordingly.
func (e *Engine) Update(ctx context.Context, id string, cmd UpdateReservation) (*Reservation, error) {
	r, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusActive {
		return nil, ErrInvalidState
	}

	delta := 0
	if cmd.Quantity != nil {
		if *cmd.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		delta = *cmd.Quantity - r.Quantity
	}

	if delta > 0 {
		it, err := e.items.Get(ctx, r.InventoryItemID)
		if err != nil {
			return nil, err
		}
		if it.Available() < delta {
			return nil, ErrInsufficientAvailableStock
		}
	}

	if cmd.Quantity != nil {
		r.Quantity = *cmd.Quantity
	}
	if cmd.ExpiresAt != nil {
		r.ExpiresAt = cmd.ExpiresAt
	}
	r.UpdatedAt = time.Now()

	if err := e.store.AdjustHold(ctx, r, delta); err != nil {
		return nil, err
	}
	return r, nil
}

func (e *Engine) Get(ctx context.Context, id string) (*Reservation, error) {
	return e.store.Get(ctx, id)
}

func (e *Engine) ListByOrder(ctx context.Context, orderID string) ([]*Reservation, error) {
	return e.store.ListByOrder(ctx, orderID)
}

// Fulfill converts the hold into a stock reduction: within one transaction
// the reservation becomes FULFILLED and the item loses the reserved quantity
// from both counters. This is the only reservation path that reduces
// physical quantity.
func (e *Engine) Fulfill(ctx context.Context, id string) (*Reservation, *item.Item, error) {
	r, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if r.Status != StatusActive {
		return nil, nil, ErrInvalidState
	}
	if r.Expired(time.Now()) {
		return nil, nil, ErrExpired
	}

	r.Status = StatusFulfilled
	r.UpdatedAt = time.Now()

	it, err := e.store.Fulfill(ctx, r)
	if err != nil {
		return nil, nil, err
	}

	updated := events.InventoryUpdated{
		InventoryItemID:  it.ID,
		ProductID:        it.ProductID,
		Quantity:         it.Quantity,
		ReservedQuantity: it.ReservedQuantity,
		Status:           string(it.Status),
	}
	if err := e.publisher.Publish(ctx, it.ID, events.EventInventoryUpdated, updated); err != nil {
		log.Printf("[Reservations] Failed to publish update after fulfilling %s: %v", r.ID, err)
		return r, it, err
	}

	if it.LowStock() {
		alert := events.LowStockAlert{
			InventoryItemID: it.ID,
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			ReorderPoint:    *it.ReorderPoint,
		}
		if it.ReorderQuantity != nil {
			alert.ReorderQuantity = *it.ReorderQuantity
		}
		if err := e.publisher.Publish(ctx, it.ID, events.EventLowStockAlert, alert); err != nil {
			log.Printf("[Reservations] Failed to publish low stock alert for %s: %v", it.ID, err)
		}
	}

	return r, it, nil
}

// Cancel releases the hold without touching physical quantity.
func (e *Engine) Cancel(ctx context.Context, id, reason string) (*Reservation, error) {
	r, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusActive {
		return nil, ErrInvalidState
	}

	r.Status = StatusCancelled
	r.UpdatedAt = time.Now()

	it, err := e.store.Cancel(ctx, r)
	if err != nil {
		return nil, err
	}

	released := events.InventoryReleased{
		ReservationID:   r.ID,
		InventoryItemID: it.ID,
		OrderID:         r.OrderID,
		Quantity:        r.Quantity,
		Reason:          reason,
	}
	if err := e.publisher.Publish(ctx, it.ID, events.EventInventoryReleased, released); err != nil {
		log.Printf("[Reservations] Failed to publish released event for %s: %v", r.ID, err)
		return r, err
	}

	return r, nil
}

// ProcessExpired cancels every ACTIVE reservation past its expiry and returns
// the number cancelled. Individual failures are logged and do not abort the
// sweep.
func (e *Engine) ProcessExpired(ctx context.Context) (int, error) {
	expired, err := e.store.ListExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, r := range expired {
		if _, err := e.Cancel(ctx, r.ID, expiredReason); err != nil {
			log.Printf("[Reservations] Failed to expire reservation %s: %v", r.ID, err)
			continue
		}
		cancelled++
	}

	if cancelled > 0 {
		log.Printf("[Reservations] Expired %d reservation(s)", cancelled)
	}
	return cancelled, nil
}

// Remove hard-deletes a reservation. An ACTIVE reservation's hold is released
// as part of the same transaction so deleted holds cannot leak capacity.
func (e *Engine) Remove(ctx context.Context, id string) error {
	r, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	return e.store.Delete(ctx, r)
}
