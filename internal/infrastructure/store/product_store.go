package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/inventory-core/internal/domain/product"
)

// PostgresProductStore holds the catalog replica maintained by product sync.
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) Upsert(ctx context.Context, p *product.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, sku, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			sku = EXCLUDED.sku,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`, p.ID, p.Name, p.SKU, p.IsActive, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

func (s *PostgresProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, sku, is_active, updated_at FROM products WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.SKU, &p.IsActive, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, product.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (s *PostgresProductStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
