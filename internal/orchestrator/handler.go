package orchestrator

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"github.com/example/inventory-core/internal/domain/item"
	"github.com/example/inventory-core/internal/domain/product"
	"github.com/example/inventory-core/internal/domain/reservation"
	"github.com/example/inventory-core/internal/domain/transaction"
	"github.com/example/inventory-core/internal/events"
)

// reservationTTL is how long an order's hold lives before the sweep may
// cancel it.
const reservationTTL = 24 * time.Hour

// Handler reacts to order lifecycle events and drives the reservation engine
// and the movement ledger. Every item or reservation in an event is
// processed independently: a failure is logged (and, for order items,
// reported as an InventoryReservationFailed event) without aborting the rest
// of the event.
type Handler struct {
	engine    *reservation.Engine
	recorder  *transaction.Recorder
	items     item.Store
	products  product.Store
	cache     product.Cache
	publisher events.Publisher
}

func NewHandler(engine *reservation.Engine, recorder *transaction.Recorder, items item.Store,
	products product.Store, cache product.Cache, publisher events.Publisher) *Handler {
	return &Handler{
		engine:    engine,
		recorder:  recorder,
		items:     items,
		products:  products,
		cache:     cache,
		publisher: publisher,
	}
}

// HandleEvent processes one message from the orders topic.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Printf("[Orchestrator] Failed to unmarshal event: %v", err)
		return err
	}

	switch env.Type {
	case events.EventOrderCreated:
		var e events.OrderCreated
		if err := json.Unmarshal(env.Data, &e); err != nil {
			log.Printf("[Orchestrator] Failed to unmarshal OrderCreated: %v", err)
			return err
		}
		h.handleOrderCreated(ctx, e)
	case events.EventOrderCancelled:
		var e events.OrderCancelled
		if err := json.Unmarshal(env.Data, &e); err != nil {
			log.Printf("[Orchestrator] Failed to unmarshal OrderCancelled: %v", err)
			return err
		}
		h.handleOrderCancelled(ctx, e)
	case events.EventOrderShipped:
		var e events.OrderShipped
		if err := json.Unmarshal(env.Data, &e); err != nil {
			log.Printf("[Orchestrator] Failed to unmarshal OrderShipped: %v", err)
			return err
		}
		h.handleOrderShipped(ctx, e)
	}

	return nil
}

// handleOrderCreated reserves stock for each order item. Per-item failures
// become InventoryReservationFailed events; processing always continues to
// the next item.
func (h *Handler) handleOrderCreated(ctx context.Context, e events.OrderCreated) {
	log.Printf("[Orchestrator] Processing OrderCreated for order %s (%d items)", e.ID, len(e.Items))

	for _, orderItem := range e.Items {
		if reason, ok := h.reserveItem(ctx, e.ID, orderItem); !ok {
			h.publishFailure(ctx, e.ID, orderItem.ProductID, reason)
		}
	}
}

func (h *Handler) reserveItem(ctx context.Context, orderID string, orderItem events.OrderItem) (string, bool) {
	p, err := h.lookupProduct(ctx, orderItem.ProductID)
	if err != nil {
		return "product not found", false
	}
	if !p.IsActive {
		return "product is inactive", false
	}

	candidates, err := h.items.ListByProduct(ctx, orderItem.ProductID)
	if err != nil {
		log.Printf("[Orchestrator] Failed to list items for product %s: %v", orderItem.ProductID, err)
		return "inventory lookup failed", false
	}

	var usable []*item.Item
	for _, it := range candidates {
		if it.Status == item.StatusAvailable && it.Available() >= orderItem.Quantity {
			usable = append(usable, it)
		}
	}
	if len(usable) == 0 {
		if len(candidates) == 0 {
			return "no inventory items found for product", false
		}
		return "insufficient available stock", false
	}

	// Reserve against the item with the most room.
	sort.Slice(usable, func(i, j int) bool {
		return usable[i].Available() > usable[j].Available()
	})
	target := usable[0]

	expiresAt := time.Now().Add(reservationTTL)
	_, err = h.engine.Create(ctx, reservation.CreateReservation{
		InventoryItemID: target.ID,
		Quantity:        orderItem.Quantity,
		OrderID:         orderID,
		ExpiresAt:       &expiresAt,
	})
	if err != nil {
		log.Printf("[Orchestrator] Failed to reserve %d of product %s for order %s: %v",
			orderItem.Quantity, orderItem.ProductID, orderID, err)
		return "reservation failed", false
	}

	return "", true
}

// handleOrderCancelled releases every ACTIVE hold for the order. Terminal
// reservations are skipped; individual failures are logged and the loop
// continues.
func (h *Handler) handleOrderCancelled(ctx context.Context, e events.OrderCancelled) {
	reason := e.Reason
	if reason == "" {
		reason = "Order cancelled"
	}

	reservations, err := h.engine.ListByOrder(ctx, e.ID)
	if err != nil {
		log.Printf("[Orchestrator] Failed to list reservations for order %s: %v", e.ID, err)
		return
	}

	for _, r := range reservations {
		if r.Status != reservation.StatusActive {
			continue
		}
		if _, err := h.engine.Cancel(ctx, r.ID, reason); err != nil {
			log.Printf("[Orchestrator] Failed to cancel reservation %s for order %s: %v", r.ID, e.ID, err)
		}
	}
}

// handleOrderShipped fulfills every ACTIVE hold for the order and records a
// SALE for each fulfilled reservation.
func (h *Handler) handleOrderShipped(ctx context.Context, e events.OrderShipped) {
	reservations, err := h.engine.ListByOrder(ctx, e.ID)
	if err != nil {
		log.Printf("[Orchestrator] Failed to list reservations for order %s: %v", e.ID, err)
		return
	}

	for _, r := range reservations {
		if r.Status != reservation.StatusActive {
			continue
		}

		fulfilled, _, err := h.engine.Fulfill(ctx, r.ID)
		if err != nil {
			log.Printf("[Orchestrator] Failed to fulfill reservation %s for order %s: %v", r.ID, e.ID, err)
			continue
		}

		_, err = h.recorder.Create(ctx, transaction.RecordMovement{
			InventoryItemID: fulfilled.InventoryItemID,
			Quantity:        -fulfilled.Quantity,
			Type:            transaction.TypeSale,
			ReferenceID:     e.ID,
			ReferenceType:   "ORDER",
			Notes:           "Order shipped",
		})
		if err != nil {
			log.Printf("[Orchestrator] Failed to record sale for reservation %s: %v", r.ID, err)
		}
	}
}

func (h *Handler) lookupProduct(ctx context.Context, id string) (*product.Product, error) {
	if h.cache != nil {
		if p, ok := h.cache.Get(ctx, id); ok {
			return p, nil
		}
	}

	p, err := h.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		h.cache.Set(ctx, p)
	}
	return p, nil
}

func (h *Handler) publishFailure(ctx context.Context, orderID, productID, reason string) {
	log.Printf("[Orchestrator] Reservation failed for order %s, product %s: %s", orderID, productID, reason)

	failed := events.InventoryReservationFailed{
		OrderID:   orderID,
		ProductID: productID,
		Reason:    reason,
	}
	if err := h.publisher.Publish(ctx, orderID, events.EventInventoryReservationFailed, failed); err != nil {
		log.Printf("[Orchestrator] Failed to publish reservation failure for order %s: %v", orderID, err)
	}
}
