package transaction

import (
	"context"
	"time"

	"github.com/example/inventory-core/internal/domain/item"
	"github.com/google/uuid"
)

// Recorder appends movement records for audit. It never mutates inventory
// quantities itself; callers apply the quantity change separately and record
// the matching entry here.
type Recorder struct {
	store Store
	items item.Store
}

func NewRecorder(store Store, items item.Store) *Recorder {
	return &Recorder{store: store, items: items}
}

type RecordMovement struct {
	InventoryItemID string `json:"inventoryItemId"`
	Quantity        int    `json:"quantity"`
	Type            Type   `json:"type"`
	ReferenceID     string `json:"referenceId,omitempty"`
	ReferenceType   string `json:"referenceType,omitempty"`
	Notes           string `json:"notes,omitempty"`
	CreatedBy       string `json:"createdBy,omitempty"`
}

func (r *Recorder) Create(ctx context.Context, cmd RecordMovement) (*Transaction, error) {
	if !validType(cmd.Type) {
		return nil, ErrInvalidType
	}

	// Reject ledger entries against items that do not exist.
	if _, err := r.items.Get(ctx, cmd.InventoryItemID); err != nil {
		return nil, err
	}

	t := &Transaction{
		ID:              uuid.New().String(),
		InventoryItemID: cmd.InventoryItemID,
		Quantity:        cmd.Quantity,
		Type:            cmd.Type,
		ReferenceID:     cmd.ReferenceID,
		ReferenceType:   cmd.ReferenceType,
		Notes:           cmd.Notes,
		CreatedBy:       cmd.CreatedBy,
		CreatedAt:       time.Now(),
	}

	if err := r.store.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Recorder) ListByItem(ctx context.Context, inventoryItemID string) ([]*Transaction, error) {
	return r.store.ListByItem(ctx, inventoryItemID)
}

// Summarize totals signed quantities per movement type for one item.
func (r *Recorder) Summarize(ctx context.Context, inventoryItemID string) (*Summary, error) {
	if _, err := r.items.Get(ctx, inventoryItemID); err != nil {
		return nil, err
	}

	sums, err := r.store.SumByType(ctx, inventoryItemID)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Purchases:   sums[TypePurchase],
		Sales:       sums[TypeSale],
		Returns:     sums[TypeReturn],
		Adjustments: sums[TypeAdjustment],
		Transfers:   sums[TypeTransfer],
	}, nil
}
