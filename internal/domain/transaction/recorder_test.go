package transaction_test

import (
	"context"
	"testing"

	"github.com/example/inventory-core/internal/domain/item"
	"github.com/example/inventory-core/internal/domain/transaction"
	"github.com/example/inventory-core/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder() (*transaction.Recorder, *mocks.MockStore) {
	db := mocks.NewMockStore()
	return transaction.NewRecorder(db.Transactions(), db.Items()), db
}

func seedLedgerItem(db *mocks.MockStore, id string) {
	db.SeedItem(&item.Item{ID: id, ProductID: "prod-" + id, Quantity: 100, Status: item.StatusAvailable})
}

// ============================================
// Create Tests
// ============================================

func TestRecorder_Create_AppendsEntry(t *testing.T) {
	recorder, db := newTestRecorder()
	ctx := context.Background()
	seedLedgerItem(db, "item-1")

	tx, err := recorder.Create(ctx, transaction.RecordMovement{
		InventoryItemID: "item-1",
		Quantity:        -5,
		Type:            transaction.TypeSale,
		ReferenceID:     "order-1",
		ReferenceType:   "ORDER",
		Notes:           "Order shipped",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.False(t, tx.CreatedAt.IsZero())

	ledger := db.Ledger()
	require.Len(t, ledger, 1)
	assert.Equal(t, -5, ledger[0].Quantity)
	assert.Equal(t, transaction.TypeSale, ledger[0].Type)
	assert.Equal(t, "order-1", ledger[0].ReferenceID)
}

func TestRecorder_Create_InvalidType(t *testing.T) {
	recorder, db := newTestRecorder()
	ctx := context.Background()
	seedLedgerItem(db, "item-1")

	_, err := recorder.Create(ctx, transaction.RecordMovement{
		InventoryItemID: "item-1",
		Quantity:        1,
		Type:            transaction.Type("DONATION"),
	})

	assert.ErrorIs(t, err, transaction.ErrInvalidType)
	assert.Empty(t, db.Ledger())
}

func TestRecorder_Create_ItemNotFound(t *testing.T) {
	recorder, db := newTestRecorder()
	ctx := context.Background()

	_, err := recorder.Create(ctx, transaction.RecordMovement{
		InventoryItemID: "missing",
		Quantity:        1,
		Type:            transaction.TypePurchase,
	})

	assert.ErrorIs(t, err, item.ErrNotFound)
	assert.Empty(t, db.Ledger())
}

// ============================================
// Query Tests
// ============================================

func TestRecorder_ListByItem_FiltersOtherItems(t *testing.T) {
	recorder, db := newTestRecorder()
	ctx := context.Background()
	seedLedgerItem(db, "item-1")
	seedLedgerItem(db, "item-2")

	_, err := recorder.Create(ctx, transaction.RecordMovement{
		InventoryItemID: "item-1", Quantity: 10, Type: transaction.TypePurchase,
	})
	require.NoError(t, err)
	_, err = recorder.Create(ctx, transaction.RecordMovement{
		InventoryItemID: "item-2", Quantity: 20, Type: transaction.TypePurchase,
	})
	require.NoError(t, err)

	entries, err := recorder.ListByItem(ctx, "item-1")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "item-1", entries[0].InventoryItemID)
}

func TestRecorder_Summarize(t *testing.T) {
	recorder, db := newTestRecorder()
	ctx := context.Background()
	seedLedgerItem(db, "item-1")

	movements := []transaction.RecordMovement{
		{InventoryItemID: "item-1", Quantity: 50, Type: transaction.TypePurchase},
		{InventoryItemID: "item-1", Quantity: 30, Type: transaction.TypePurchase},
		{InventoryItemID: "item-1", Quantity: -20, Type: transaction.TypeSale},
		{InventoryItemID: "item-1", Quantity: 5, Type: transaction.TypeReturn},
		{InventoryItemID: "item-1", Quantity: -3, Type: transaction.TypeAdjustment},
	}
	for _, m := range movements {
		_, err := recorder.Create(ctx, m)
		require.NoError(t, err)
	}

	summary, err := recorder.Summarize(ctx, "item-1")

	require.NoError(t, err)
	assert.Equal(t, 80, summary.Purchases)
	assert.Equal(t, -20, summary.Sales)
	assert.Equal(t, 5, summary.Returns)
	assert.Equal(t, -3, summary.Adjustments)
	// No TRANSFER entries recorded: the total is zero, not an error.
	assert.Equal(t, 0, summary.Transfers)
}

func TestRecorder_Summarize_ItemNotFound(t *testing.T) {
	recorder, _ := newTestRecorder()
	ctx := context.Background()

	_, err := recorder.Summarize(ctx, "missing")

	assert.ErrorIs(t, err, item.ErrNotFound)
}
