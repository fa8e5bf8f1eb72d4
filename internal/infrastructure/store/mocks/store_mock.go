package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/inventory-core/internal/domain/item"
	"github.com/example/inventory-core/internal/domain/product"
	"github.com/example/inventory-core/internal/domain/reservation"
	"github.com/example/inventory-core/internal/domain/transaction"
)

// MockStore is a shared in-memory database for tests. The typed views
// returned by Items, Warehouses, Reservations, Transactions, and Products
// implement the corresponding store interfaces and mirror the transactional
// semantics of the Postgres stores (availability re-check on create, ACTIVE
// guard on terminal transitions, hold release on delete), so domain tests
// exercise real state changes.
type MockStore struct {
	mu           sync.Mutex
	items        map[string]*item.Item
	warehouses   map[string]*item.Warehouse
	reservations map[string]*reservation.Reservation
	transactions []*transaction.Transaction
	products     map[string]*product.Product

	// Injectable errors for failure-path tests
	GetItemErr        error
	CreateWithHoldErr error
	FulfillErr        error
	CancelErr         error
	InsertTxErr       error
}

func NewMockStore() *MockStore {
	return &MockStore{
		items:        make(map[string]*item.Item),
		warehouses:   make(map[string]*item.Warehouse),
		reservations: make(map[string]*reservation.Reservation),
		products:     make(map[string]*product.Product),
	}
}

func (m *MockStore) Items() *MockItemStore               { return &MockItemStore{m} }
func (m *MockStore) Reservations() *MockReservationStore { return &MockReservationStore{m} }
func (m *MockStore) Transactions() *MockTransactionStore { return &MockTransactionStore{m} }
func (m *MockStore) Products() *MockProductStore         { return &MockProductStore{m} }

// Seed helpers install rows directly, bypassing validation.

func (m *MockStore) SeedItem(it *item.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *it
	m.items[it.ID] = &copied
}

func (m *MockStore) SeedWarehouse(w *item.Warehouse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *w
	m.warehouses[w.ID] = &copied
}

func (m *MockStore) SeedReservation(r *reservation.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *r
	m.reservations[r.ID] = &copied
}

func (m *MockStore) SeedProduct(p *product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *p
	m.products[p.ID] = &copied
}

// Snapshot helpers.

func (m *MockStore) Item(id string) *item.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[id]; ok {
		copied := *it
		return &copied
	}
	return nil
}

func (m *MockStore) Reservation(id string) *reservation.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reservations[id]; ok {
		copied := *r
		return &copied
	}
	return nil
}

func (m *MockStore) Ledger() []*transaction.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*transaction.Transaction, len(m.transactions))
	copy(out, m.transactions)
	return out
}

// MockItemStore implements item.Store and item.WarehouseStore.
type MockItemStore struct {
	s *MockStore
}

func (m *MockItemStore) Insert(ctx context.Context, it *item.Item) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	copied := *it
	m.s.items[it.ID] = &copied
	return nil
}

func (m *MockItemStore) Get(ctx context.Context, id string) (*item.Item, error) {
	if m.s.GetItemErr != nil {
		return nil, m.s.GetItemErr
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	it, ok := m.s.items[id]
	if !ok {
		return nil, item.ErrNotFound
	}
	copied := *it
	return &copied, nil
}

func (m *MockItemStore) List(ctx context.Context) ([]*item.Item, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var items []*item.Item
	for _, it := range m.s.items {
		copied := *it
		items = append(items, &copied)
	}
	return items, nil
}

func (m *MockItemStore) ListByProduct(ctx context.Context, productID string) ([]*item.Item, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var items []*item.Item
	for _, it := range m.s.items {
		if it.ProductID == productID {
			copied := *it
			items = append(items, &copied)
		}
	}
	return items, nil
}

func (m *MockItemStore) Update(ctx context.Context, it *item.Item) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.items[it.ID]; !ok {
		return item.ErrNotFound
	}
	copied := *it
	m.s.items[it.ID] = &copied
	return nil
}

func (m *MockItemStore) Delete(ctx context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.items[id]; !ok {
		return item.ErrNotFound
	}
	delete(m.s.items, id)
	return nil
}

func (m *MockItemStore) AdjustQuantity(ctx context.Context, id string, delta int) (*item.Item, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	it, ok := m.s.items[id]
	if !ok {
		return nil, item.ErrNotFound
	}
	if it.Quantity+delta < it.ReservedQuantity {
		return nil, item.ErrInsufficientStock
	}
	it.Quantity += delta
	it.UpdatedAt = time.Now()
	copied := *it
	return &copied, nil
}

func (m *MockItemStore) AdjustReserved(ctx context.Context, id string, delta int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	it, ok := m.s.items[id]
	if !ok {
		return item.ErrNotFound
	}
	it.ReservedQuantity += delta
	it.UpdatedAt = time.Now()
	return nil
}

func (m *MockItemStore) InsertWarehouse(ctx context.Context, w *item.Warehouse) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	copied := *w
	m.s.warehouses[w.ID] = &copied
	return nil
}

func (m *MockItemStore) GetWarehouse(ctx context.Context, id string) (*item.Warehouse, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	w, ok := m.s.warehouses[id]
	if !ok {
		return nil, item.ErrWarehouseNotFound
	}
	copied := *w
	return &copied, nil
}

func (m *MockItemStore) DeactivateWarehouse(ctx context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	w, ok := m.s.warehouses[id]
	if !ok {
		return item.ErrWarehouseNotFound
	}
	w.IsActive = false
	return nil
}

// MockReservationStore implements reservation.Store.
type MockReservationStore struct {
	s *MockStore
}

func (m *MockReservationStore) Get(ctx context.Context, id string) (*reservation.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.reservations[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *MockReservationStore) ListByOrder(ctx context.Context, orderID string) ([]*reservation.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*reservation.Reservation
	for _, r := range m.s.reservations {
		if r.OrderID == orderID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockReservationStore) ListExpired(ctx context.Context, now time.Time) ([]*reservation.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*reservation.Reservation
	for _, r := range m.s.reservations {
		if r.Status == reservation.StatusActive && r.Expired(now) {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockReservationStore) CreateWithHold(ctx context.Context, r *reservation.Reservation) error {
	if m.s.CreateWithHoldErr != nil {
		return m.s.CreateWithHoldErr
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	it, ok := m.s.items[r.InventoryItemID]
	if !ok {
		return item.ErrNotFound
	}
	if it.Quantity-it.ReservedQuantity < r.Quantity {
		return reservation.ErrInsufficientAvailableStock
	}
	copied := *r
	m.s.reservations[r.ID] = &copied
	it.ReservedQuantity += r.Quantity
	return nil
}

func (m *MockReservationStore) AdjustHold(ctx context.Context, r *reservation.Reservation, delta int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.reservations[r.ID]
	if !ok {
		return reservation.ErrNotFound
	}
	if stored.Status != reservation.StatusActive {
		return reservation.ErrInvalidState
	}
	it, ok := m.s.items[r.InventoryItemID]
	if !ok {
		return item.ErrNotFound
	}
	if delta > 0 && it.Quantity-it.ReservedQuantity < delta {
		return reservation.ErrInsufficientAvailableStock
	}
	copied := *r
	m.s.reservations[r.ID] = &copied
	it.ReservedQuantity += delta
	return nil
}

func (m *MockReservationStore) Fulfill(ctx context.Context, r *reservation.Reservation) (*item.Item, error) {
	if m.s.FulfillErr != nil {
		return nil, m.s.FulfillErr
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.reservations[r.ID]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	if stored.Status != reservation.StatusActive {
		return nil, reservation.ErrInvalidState
	}
	it, ok := m.s.items[r.InventoryItemID]
	if !ok {
		return nil, item.ErrNotFound
	}
	stored.Status = reservation.StatusFulfilled
	stored.UpdatedAt = r.UpdatedAt
	it.Quantity -= r.Quantity
	it.ReservedQuantity -= r.Quantity
	it.UpdatedAt = time.Now()
	copied := *it
	return &copied, nil
}

func (m *MockReservationStore) Cancel(ctx context.Context, r *reservation.Reservation) (*item.Item, error) {
	if m.s.CancelErr != nil {
		return nil, m.s.CancelErr
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.reservations[r.ID]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	if stored.Status != reservation.StatusActive {
		return nil, reservation.ErrInvalidState
	}
	it, ok := m.s.items[r.InventoryItemID]
	if !ok {
		return nil, item.ErrNotFound
	}
	stored.Status = reservation.StatusCancelled
	stored.UpdatedAt = r.UpdatedAt
	it.ReservedQuantity -= r.Quantity
	it.UpdatedAt = time.Now()
	copied := *it
	return &copied, nil
}

func (m *MockReservationStore) Delete(ctx context.Context, r *reservation.Reservation) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.reservations[r.ID]
	if !ok {
		return reservation.ErrNotFound
	}
	if stored.Status == reservation.StatusActive {
		if it, ok := m.s.items[stored.InventoryItemID]; ok {
			it.ReservedQuantity -= stored.Quantity
		}
	}
	delete(m.s.reservations, r.ID)
	return nil
}

// MockTransactionStore implements transaction.Store.
type MockTransactionStore struct {
	s *MockStore
}

func (m *MockTransactionStore) Insert(ctx context.Context, t *transaction.Transaction) error {
	if m.s.InsertTxErr != nil {
		return m.s.InsertTxErr
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	copied := *t
	m.s.transactions = append(m.s.transactions, &copied)
	return nil
}

func (m *MockTransactionStore) ListByItem(ctx context.Context, inventoryItemID string) ([]*transaction.Transaction, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*transaction.Transaction
	for _, t := range m.s.transactions {
		if t.InventoryItemID == inventoryItemID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockTransactionStore) SumByType(ctx context.Context, inventoryItemID string) (map[transaction.Type]int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sums := make(map[transaction.Type]int)
	for _, t := range m.s.transactions {
		if t.InventoryItemID == inventoryItemID {
			sums[t.Type] += t.Quantity
		}
	}
	return sums, nil
}

// MockProductStore implements product.Store.
type MockProductStore struct {
	s *MockStore
}

func (m *MockProductStore) Upsert(ctx context.Context, p *product.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	copied := *p
	m.s.products[p.ID] = &copied
	return nil
}

func (m *MockProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *MockProductStore) Delete(ctx context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.products, id)
	return nil
}
