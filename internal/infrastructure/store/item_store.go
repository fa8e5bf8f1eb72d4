package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/inventory-core/internal/domain/item"
)

// PostgresItemStore implements item.Store and item.WarehouseStore.
type PostgresItemStore struct {
	db *sql.DB
}

func NewPostgresItemStore(db *sql.DB) *PostgresItemStore {
	return &PostgresItemStore{db: db}
}

const itemColumns = `id, product_id, warehouse_id, quantity, reserved_quantity, status, reorder_point, reorder_quantity, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*item.Item, error) {
	var it item.Item
	var warehouseID sql.NullString
	var reorderPoint, reorderQty sql.NullInt64
	err := row.Scan(&it.ID, &it.ProductID, &warehouseID, &it.Quantity, &it.ReservedQuantity,
		&it.Status, &reorderPoint, &reorderQty, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.WarehouseID = warehouseID.String
	if reorderPoint.Valid {
		v := int(reorderPoint.Int64)
		it.ReorderPoint = &v
	}
	if reorderQty.Valid {
		v := int(reorderQty.Int64)
		it.ReorderQuantity = &v
	}
	return &it, nil
}

func (s *PostgresItemStore) Insert(ctx context.Context, it *item.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, it.ID, it.ProductID, nullString(it.WarehouseID), it.Quantity, it.ReservedQuantity,
		it.Status, nullInt(it.ReorderPoint), nullInt(it.ReorderQuantity), it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert inventory item: %w", err)
	}
	return nil
}

func (s *PostgresItemStore) Get(ctx context.Context, id string) (*item.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, item.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return it, nil
}

func (s *PostgresItemStore) List(ctx context.Context) ([]*item.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM inventory_items ORDER BY created_at DESC`)
}

func (s *PostgresItemStore) ListByProduct(ctx context.Context, productID string) ([]*item.Item, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE product_id = $1 ORDER BY created_at`, productID)
}

func (s *PostgresItemStore) queryItems(ctx context.Context, query string, args ...any) ([]*item.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory items: %w", err)
	}
	defer rows.Close()

	var items []*item.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *PostgresItemStore) Update(ctx context.Context, it *item.Item) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET status = $2, reorder_point = $3, reorder_quantity = $4, updated_at = $5
		WHERE id = $1
	`, it.ID, it.Status, nullInt(it.ReorderPoint), nullInt(it.ReorderQuantity), it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}
	return requireRow(res, item.ErrNotFound)
}

func (s *PostgresItemStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	return requireRow(res, item.ErrNotFound)
}

// AdjustQuantity applies delta as a guarded in-database update. The WHERE
// clause rejects any change that would take quantity below the held
// reservations, so the adjustment and the check are one statement.
func (s *PostgresItemStore) AdjustQuantity(ctx context.Context, id string, delta int) (*item.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE inventory_items
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND quantity + $2 >= reserved_quantity
		RETURNING `+itemColumns, id, delta)

	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		// Distinguish a missing row from a rejected adjustment.
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, item.ErrInsufficientStock
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust quantity: %w", err)
	}
	return it, nil
}

// AdjustReserved shifts the hold counter with a single atomic UPDATE to avoid
// lost updates under concurrent reservations on the same item.
func (s *PostgresItemStore) AdjustReserved(ctx context.Context, id string, delta int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET reserved_quantity = reserved_quantity + $2, updated_at = NOW()
		WHERE id = $1
	`, id, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust reserved quantity: %w", err)
	}
	return requireRow(res, item.ErrNotFound)
}

// Warehouse operations

func (s *PostgresItemStore) InsertWarehouse(ctx context.Context, w *item.Warehouse) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO warehouses (id, name, location, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, w.ID, w.Name, w.Location, w.IsActive, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert warehouse: %w", err)
	}
	return nil
}

func (s *PostgresItemStore) GetWarehouse(ctx context.Context, id string) (*item.Warehouse, error) {
	var w item.Warehouse
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, location, is_active, created_at FROM warehouses WHERE id = $1
	`, id).Scan(&w.ID, &w.Name, &w.Location, &w.IsActive, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, item.ErrWarehouseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get warehouse: %w", err)
	}
	return &w, nil
}

func (s *PostgresItemStore) DeactivateWarehouse(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE warehouses SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate warehouse: %w", err)
	}
	return requireRow(res, item.ErrWarehouseNotFound)
}

// Helpers shared across the store package.

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
