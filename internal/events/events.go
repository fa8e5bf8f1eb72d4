package events

import (
	"encoding/json"
	"time"
)

// Outbound event types published to the inventory topic.
const (
	EventInventoryReserved          = "InventoryReserved"
	EventInventoryReleased          = "InventoryReleased"
	EventInventoryReservationFailed = "InventoryReservationFailed"
	EventInventoryUpdated           = "InventoryUpdated"
	EventLowStockAlert              = "LowStockAlert"
)

// Inbound event types consumed from the order and product topics.
const (
	EventOrderCreated   = "OrderCreated"
	EventOrderCancelled = "OrderCancelled"
	EventOrderShipped   = "OrderShipped"
	EventProductCreated = "ProductCreated"
	EventProductUpdated = "ProductUpdated"
	EventProductDeleted = "ProductDeleted"
)

// Envelope wraps every bus message with a type discriminator.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type InventoryReserved struct {
	ReservationID   string     `json:"reservationId"`
	InventoryItemID string     `json:"inventoryItemId"`
	OrderID         string     `json:"orderId"`
	ProductID       string     `json:"productId"`
	Quantity        int        `json:"quantity"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
}

type InventoryReleased struct {
	ReservationID   string `json:"reservationId"`
	InventoryItemID string `json:"inventoryItemId"`
	OrderID         string `json:"orderId"`
	Quantity        int    `json:"quantity"`
	Reason          string `json:"reason"`
}

type InventoryReservationFailed struct {
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
	Reason    string `json:"reason"`
}

type InventoryUpdated struct {
	InventoryItemID  string `json:"inventoryItemId"`
	ProductID        string `json:"productId"`
	Quantity         int    `json:"quantity"`
	ReservedQuantity int    `json:"reservedQuantity"`
	Status           string `json:"status"`
}

type LowStockAlert struct {
	InventoryItemID string `json:"inventoryItemId"`
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	ReorderPoint    int    `json:"reorderPoint"`
	ReorderQuantity int    `json:"reorderQuantity,omitempty"`
}

type OrderCreated struct {
	ID    string      `json:"id"`
	Items []OrderItem `json:"items"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type OrderCancelled struct {
	ID     string `json:"id"`
	Reason string `json:"reason,omitempty"`
}

type OrderShipped struct {
	ID string `json:"id"`
}

type ProductEvent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	IsActive bool   `json:"isActive"`
}
