package transaction

import (
	"context"
	"errors"
	"time"
)

type Type string

const (
	TypePurchase   Type = "PURCHASE"
	TypeSale       Type = "SALE"
	TypeReturn     Type = "RETURN"
	TypeAdjustment Type = "ADJUSTMENT"
	TypeTransfer   Type = "TRANSFER"
)

var ErrInvalidType = errors.New("invalid transaction type")

// Transaction is one immutable entry in the movement ledger. Negative
// quantities reduce stock (SALE, TRANSFER), positive ones increase it
// (PURCHASE, RETURN); ADJUSTMENT carries whatever sign the caller recorded.
// Entries are never updated or deleted.
type Transaction struct {
	ID              string    `json:"id"`
	InventoryItemID string    `json:"inventoryItemId"`
	Quantity        int       `json:"quantity"`
	Type            Type      `json:"type"`
	ReferenceID     string    `json:"referenceId,omitempty"`
	ReferenceType   string    `json:"referenceType,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedBy       string    `json:"createdBy,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Summary aggregates signed quantities per movement type. Absent types are
// zero.
type Summary struct {
	Purchases   int `json:"purchases"`
	Sales       int `json:"sales"`
	Returns     int `json:"returns"`
	Adjustments int `json:"adjustments"`
	Transfers   int `json:"transfers"`
}

// Store is the persistence contract for the append-only ledger.
type Store interface {
	Insert(ctx context.Context, t *Transaction) error
	ListByItem(ctx context.Context, inventoryItemID string) ([]*Transaction, error)
	SumByType(ctx context.Context, inventoryItemID string) (map[Type]int, error)
}

func validType(t Type) bool {
	switch t {
	case TypePurchase, TypeSale, TypeReturn, TypeAdjustment, TypeTransfer:
		return true
	}
	return false
}
