package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/inventory-core/internal/domain/transaction"
)

// PostgresTransactionStore implements transaction.Store. The ledger is
// append-only; there are no update or delete statements here.
type PostgresTransactionStore struct {
	db *sql.DB
}

func NewPostgresTransactionStore(db *sql.DB) *PostgresTransactionStore {
	return &PostgresTransactionStore{db: db}
}

func (s *PostgresTransactionStore) Insert(ctx context.Context, t *transaction.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, inventory_item_id, quantity, type, reference_id, reference_type, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.InventoryItemID, t.Quantity, t.Type, nullString(t.ReferenceID),
		nullString(t.ReferenceType), nullString(t.Notes), nullString(t.CreatedBy), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (s *PostgresTransactionStore) ListByItem(ctx context.Context, inventoryItemID string) ([]*transaction.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, inventory_item_id, quantity, type, reference_id, reference_type, notes, created_by, created_at
		FROM transactions WHERE inventory_item_id = $1 ORDER BY created_at DESC
	`, inventoryItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		var t transaction.Transaction
		var refID, refType, notes, createdBy sql.NullString
		if err := rows.Scan(&t.ID, &t.InventoryItemID, &t.Quantity, &t.Type,
			&refID, &refType, &notes, &createdBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.ReferenceID = refID.String
		t.ReferenceType = refType.String
		t.Notes = notes.String
		t.CreatedBy = createdBy.String
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}

func (s *PostgresTransactionStore) SumByType(ctx context.Context, inventoryItemID string) (map[transaction.Type]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, COALESCE(SUM(quantity), 0)
		FROM transactions WHERE inventory_item_id = $1
		GROUP BY type
	`, inventoryItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize transactions: %w", err)
	}
	defer rows.Close()

	sums := make(map[transaction.Type]int)
	for rows.Next() {
		var typ transaction.Type
		var total int
		if err := rows.Scan(&typ, &total); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		sums[typ] = total
	}
	return sums, rows.Err()
}
