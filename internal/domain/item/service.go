package item

import (
	"context"
	"log"
	"time"

	"github.com/example/inventory-core/internal/events"
	"github.com/google/uuid"
)

// Service owns reads and writes of inventory items. Reservation holds are
// adjusted through AdjustReserved only, which the store implements as a
// single atomic UPDATE so concurrent reservations on the same item cannot
// lose updates.
type Service struct {
	store      Store
	warehouses WarehouseStore
	publisher  events.Publisher
}

func NewService(store Store, warehouses WarehouseStore, publisher events.Publisher) *Service {
	return &Service{
		store:      store,
		warehouses: warehouses,
		publisher:  publisher,
	}
}

type CreateItem struct {
	ProductID       string `json:"productId"`
	WarehouseID     string `json:"warehouseId,omitempty"`
	Quantity        int    `json:"quantity"`
	Status          Status `json:"status,omitempty"`
	ReorderPoint    *int   `json:"reorderPoint,omitempty"`
	ReorderQuantity *int   `json:"reorderQuantity,omitempty"`
}

func (s *Service) Create(ctx context.Context, cmd CreateItem) (*Item, error) {
	if cmd.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if cmd.WarehouseID != "" {
		if err := s.ValidateActive(ctx, cmd.WarehouseID); err != nil {
			return nil, err
		}
	}

	status := cmd.Status
	if status == "" {
		status = StatusAvailable
	}

	now := time.Now()
	it := &Item{
		ID:              uuid.New().String(),
		ProductID:       cmd.ProductID,
		WarehouseID:     cmd.WarehouseID,
		Quantity:        cmd.Quantity,
		Status:          status,
		ReorderPoint:    cmd.ReorderPoint,
		ReorderQuantity: cmd.ReorderQuantity,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.Insert(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Item, error) {
	return s.store.List(ctx)
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]*Item, error) {
	return s.store.ListByProduct(ctx, productID)
}

type UpdateItem struct {
	Status          *Status `json:"status,omitempty"`
	ReorderPoint    *int    `json:"reorderPoint,omitempty"`
	ReorderQuantity *int    `json:"reorderQuantity,omitempty"`
}

func (s *Service) Update(ctx context.Context, id string, cmd UpdateItem) (*Item, error) {
	it, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Status != nil {
		it.Status = *cmd.Status
	}
	if cmd.ReorderPoint != nil {
		it.ReorderPoint = cmd.ReorderPoint
	}
	if cmd.ReorderQuantity != nil {
		it.ReorderQuantity = cmd.ReorderQuantity
	}
	it.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, it); err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, it)
	return it, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// AdjustQuantity changes the on-hand quantity by delta, failing with
// ErrInsufficientStock if the result would go negative. No audit record is
// written here; callers pair the adjustment with a ledger entry.
func (s *Service) AdjustQuantity(ctx context.Context, id string, delta int) (*Item, error) {
	it, err := s.store.AdjustQuantity(ctx, id, delta)
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, it)
	s.CheckLowStock(ctx, it)
	return it, nil
}

// AdjustReserved changes the reservation hold counter by delta via an
// in-database increment.
func (s *Service) AdjustReserved(ctx context.Context, id string, delta int) error {
	return s.store.AdjustReserved(ctx, id, delta)
}

// ValidateActive ensures the warehouse exists and is active. Called before
// attaching an inventory item to a warehouse.
func (s *Service) ValidateActive(ctx context.Context, warehouseID string) error {
	w, err := s.warehouses.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return err
	}
	if !w.IsActive {
		return ErrWarehouseInactive
	}
	return nil
}

func (s *Service) CreateWarehouse(ctx context.Context, name, location string) (*Warehouse, error) {
	w := &Warehouse{
		ID:        uuid.New().String(),
		Name:      name,
		Location:  location,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := s.warehouses.InsertWarehouse(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) DeactivateWarehouse(ctx context.Context, id string) error {
	return s.warehouses.DeactivateWarehouse(ctx, id)
}

// CheckLowStock publishes a LowStockAlert when the item has fallen to or
// below its reorder point. Publish failures are logged only; an alert is
// best-effort.
func (s *Service) CheckLowStock(ctx context.Context, it *Item) {
	if !it.LowStock() {
		return
	}

	alert := events.LowStockAlert{
		InventoryItemID: it.ID,
		ProductID:       it.ProductID,
		Quantity:        it.Quantity,
		ReorderPoint:    *it.ReorderPoint,
	}
	if it.ReorderQuantity != nil {
		alert.ReorderQuantity = *it.ReorderQuantity
	}

	if err := s.publisher.Publish(ctx, it.ID, events.EventLowStockAlert, alert); err != nil {
		log.Printf("[Inventory] Failed to publish low stock alert for item %s: %v", it.ID, err)
	}
}

func (s *Service) publishUpdated(ctx context.Context, it *Item) {
	updated := events.InventoryUpdated{
		InventoryItemID:  it.ID,
		ProductID:        it.ProductID,
		Quantity:         it.Quantity,
		ReservedQuantity: it.ReservedQuantity,
		Status:           string(it.Status),
	}
	if err := s.publisher.Publish(ctx, it.ID, events.EventInventoryUpdated, updated); err != nil {
		log.Printf("[Inventory] Failed to publish update for item %s: %v", it.ID, err)
	}
}
