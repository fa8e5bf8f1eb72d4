package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/inventory-core/internal/domain/item"
	"github.com/example/inventory-core/internal/domain/reservation"
	"github.com/example/inventory-core/internal/domain/transaction"
	eventmocks "github.com/example/inventory-core/internal/events/mocks"
	"github.com/example/inventory-core/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() (http.Handler, *mocks.MockStore) {
	db := mocks.NewMockStore()
	publisher := eventmocks.NewMockPublisher()
	items := item.NewService(db.Items(), db.Items(), publisher)
	engine := reservation.NewEngine(db.Reservations(), db.Items(), publisher)
	recorder := transaction.NewRecorder(db.Transactions(), db.Items())
	return NewRouter(NewHandlers(items, engine, recorder)), db
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// ============================================
// Item Endpoint Tests
// ============================================

func TestAPI_CreateAndGetItem(t *testing.T) {
	router, _ := newTestServer()

	rec := doJSON(t, router, http.MethodPost, "/items", item.CreateItem{
		ProductID: "prod-1",
		Quantity:  25,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created item.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	rec = doJSON(t, router, http.MethodGet, "/items/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched item.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, 25, fetched.Quantity)
	assert.Equal(t, item.StatusAvailable, fetched.Status)
}

func TestAPI_GetItem_NotFound(t *testing.T) {
	router, _ := newTestServer()

	rec := doJSON(t, router, http.MethodGet, "/items/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_AdjustItem_RecordsAdjustment(t *testing.T) {
	router, db := newTestServer()
	db.SeedItem(&item.Item{ID: "item-1", ProductID: "prod-1", Quantity: 10, Status: item.StatusAvailable})

	rec := doJSON(t, router, http.MethodPost, "/items/item-1/adjust", map[string]any{
		"delta": -4,
		"notes": "stocktake correction",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, db.Item("item-1").Quantity)

	ledger := db.Ledger()
	require.Len(t, ledger, 1)
	assert.Equal(t, transaction.TypeAdjustment, ledger[0].Type)
	assert.Equal(t, -4, ledger[0].Quantity)
	assert.Equal(t, "stocktake correction", ledger[0].Notes)
}

func TestAPI_AdjustItem_InsufficientStockConflicts(t *testing.T) {
	router, db := newTestServer()
	db.SeedItem(&item.Item{ID: "item-1", ProductID: "prod-1", Quantity: 10, ReservedQuantity: 8, Status: item.StatusAvailable})

	rec := doJSON(t, router, http.MethodPost, "/items/item-1/adjust", map[string]any{"delta": -5})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 10, db.Item("item-1").Quantity)
	assert.Empty(t, db.Ledger())
}

func TestAPI_CreateItem_InactiveWarehouse(t *testing.T) {
	router, db := newTestServer()
	db.SeedWarehouse(&item.Warehouse{ID: "wh-1", Name: "Closed", IsActive: false})

	rec := doJSON(t, router, http.MethodPost, "/items", item.CreateItem{
		ProductID:   "prod-1",
		WarehouseID: "wh-1",
		Quantity:    5,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

// ============================================
// Reservation Endpoint Tests
// ============================================

func TestAPI_ReservationLifecycle(t *testing.T) {
	router, db := newTestServer()
	db.SeedItem(&item.Item{ID: "item-1", ProductID: "prod-1", Quantity: 100, Status: item.StatusAvailable})

	rec := doJSON(t, router, http.MethodPost, "/reservations", reservation.CreateReservation{
		InventoryItemID: "item-1",
		Quantity:        30,
		OrderID:         "order-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created reservation.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, reservation.StatusActive, created.Status)
	assert.Equal(t, 30, db.Item("item-1").ReservedQuantity)

	rec = doJSON(t, router, http.MethodPost, "/reservations/"+created.ID+"/fulfill", map[string]string{
		"notes": "picked and packed",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 70, db.Item("item-1").Quantity)
	assert.Equal(t, 0, db.Item("item-1").ReservedQuantity)

	ledger := db.Ledger()
	require.Len(t, ledger, 1)
	assert.Equal(t, transaction.TypeSale, ledger[0].Type)
	assert.Equal(t, -30, ledger[0].Quantity)
	assert.Equal(t, "order-1", ledger[0].ReferenceID)
	assert.Equal(t, "picked and packed", ledger[0].Notes)
}

func TestAPI_CreateReservation_InsufficientStockConflicts(t *testing.T) {
	router, db := newTestServer()
	db.SeedItem(&item.Item{ID: "item-1", ProductID: "prod-1", Quantity: 10, ReservedQuantity: 5, Status: item.StatusAvailable})

	rec := doJSON(t, router, http.MethodPost, "/reservations", reservation.CreateReservation{
		InventoryItemID: "item-1",
		Quantity:        6,
		OrderID:         "order-1",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_CreateReservation_InvalidQuantity(t *testing.T) {
	router, db := newTestServer()
	db.SeedItem(&item.Item{ID: "item-1", ProductID: "prod-1", Quantity: 10, Status: item.StatusAvailable})

	rec := doJSON(t, router, http.MethodPost, "/reservations", reservation.CreateReservation{
		InventoryItemID: "item-1",
		Quantity:        0,
		OrderID:         "order-1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_CancelReservation_DefaultReason(t *testing.T) {
	router, db := newTestServer()
	db.SeedItem(&item.Item{ID: "item-1", ProductID: "prod-1", Quantity: 10, ReservedQuantity: 5, Status: item.StatusAvailable})
	db.SeedReservation(&reservation.Reservation{
		ID: "res-1", InventoryItemID: "item-1", Quantity: 5,
		OrderID: "order-1", Status: reservation.StatusActive,
	})

	rec := doJSON(t, router, http.MethodPost, "/reservations/res-1/cancel", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reservation.StatusCancelled, db.Reservation("res-1").Status)
	assert.Equal(t, 0, db.Item("item-1").ReservedQuantity)
}

func TestAPI_FulfillTwiceConflicts(t *testing.T) {
	router, db := newTestServer()
	db.SeedItem(&item.Item{ID: "item-1", ProductID: "prod-1", Quantity: 10, ReservedQuantity: 5, Status: item.StatusAvailable})
	db.SeedReservation(&reservation.Reservation{
		ID: "res-1", InventoryItemID: "item-1", Quantity: 5,
		OrderID: "order-1", Status: reservation.StatusActive,
	})

	rec := doJSON(t, router, http.MethodPost, "/reservations/res-1/fulfill", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/reservations/res-1/fulfill", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_ProcessExpired(t *testing.T) {
	router, db := newTestServer()
	db.SeedItem(&item.Item{ID: "item-1", ProductID: "prod-1", Quantity: 10, ReservedQuantity: 5, Status: item.StatusAvailable})
	past := time.Now().Add(-time.Hour)
	db.SeedReservation(&reservation.Reservation{
		ID: "res-1", InventoryItemID: "item-1", Quantity: 5,
		OrderID: "order-1", ExpiresAt: &past, Status: reservation.StatusActive,
	})

	rec := doJSON(t, router, http.MethodPost, "/reservations/process-expired", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var result map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result["cancelled"])
	assert.Equal(t, 0, db.Item("item-1").ReservedQuantity)
}

// ============================================
// Transaction Endpoint Tests
// ============================================

func TestAPI_CreateTransaction_InvalidType(t *testing.T) {
	router, db := newTestServer()
	db.SeedItem(&item.Item{ID: "item-1", ProductID: "prod-1", Quantity: 10, Status: item.StatusAvailable})

	rec := doJSON(t, router, http.MethodPost, "/transactions", map[string]any{
		"inventoryItemId": "item-1",
		"quantity":        1,
		"type":            "DONATION",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_TransactionsRequireItemParam(t *testing.T) {
	router, _ := newTestServer()

	rec := doJSON(t, router, http.MethodGet, "/transactions", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/transactions/summary", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_TransactionSummary(t *testing.T) {
	router, db := newTestServer()
	db.SeedItem(&item.Item{ID: "item-1", ProductID: "prod-1", Quantity: 10, Status: item.StatusAvailable})

	for _, m := range []map[string]any{
		{"inventoryItemId": "item-1", "quantity": 50, "type": "PURCHASE"},
		{"inventoryItemId": "item-1", "quantity": -20, "type": "SALE"},
	} {
		rec := doJSON(t, router, http.MethodPost, "/transactions", m)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/transactions/summary?item=item-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary transaction.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 50, summary.Purchases)
	assert.Equal(t, -20, summary.Sales)
	assert.Equal(t, 0, summary.Returns)
}

// ============================================
// Router Tests
// ============================================

func TestAPI_Health(t *testing.T) {
	router, _ := newTestServer()

	rec := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	router, _ := newTestServer()

	rec := doJSON(t, router, http.MethodDelete, "/transactions", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
