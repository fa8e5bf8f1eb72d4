package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/inventory-core/internal/domain/item"
	"github.com/example/inventory-core/internal/domain/reservation"
)

// PostgresReservationStore implements reservation.Store. Every composite
// operation couples the reservation write and the inventory counter write in
// a single transaction; partial application is never observable.
type PostgresReservationStore struct {
	db *sql.DB
}

func NewPostgresReservationStore(db *sql.DB) *PostgresReservationStore {
	return &PostgresReservationStore{db: db}
}

const reservationColumns = `id, inventory_item_id, quantity, order_id, expires_at, status, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*reservation.Reservation, error) {
	var r reservation.Reservation
	var expiresAt sql.NullTime
	err := row.Scan(&r.ID, &r.InventoryItemID, &r.Quantity, &r.OrderID, &expiresAt,
		&r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		r.ExpiresAt = &t
	}
	return &r, nil
}

func (s *PostgresReservationStore) Get(ctx context.Context, id string) (*reservation.Reservation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	r, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, reservation.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

func (s *PostgresReservationStore) ListByOrder(ctx context.Context, orderID string) ([]*reservation.Reservation, error) {
	return s.query(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE order_id = $1 ORDER BY created_at`, orderID)
}

func (s *PostgresReservationStore) ListExpired(ctx context.Context, now time.Time) ([]*reservation.Reservation, error) {
	return s.query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE status = $1 AND expires_at IS NOT NULL AND expires_at <= $2
		ORDER BY expires_at`, reservation.StatusActive, now)
}

func (s *PostgresReservationStore) query(ctx context.Context, query string, args ...any) ([]*reservation.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*reservation.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// CreateWithHold re-checks availability under a row lock, inserts the
// reservation, and increments the hold. Two concurrent creates on the same
// item serialize on the lock, so both cannot pass the availability check.
func (s *PostgresReservationStore) CreateWithHold(ctx context.Context, r *reservation.Reservation) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		available, err := lockItemAvailability(ctx, tx, r.InventoryItemID)
		if err != nil {
			return err
		}
		if available < r.Quantity {
			return reservation.ErrInsufficientAvailableStock
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO reservations (`+reservationColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, r.ID, r.InventoryItemID, r.Quantity, r.OrderID, nullTime(r.ExpiresAt),
			r.Status, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert reservation: %w", err)
		}

		return adjustReservedTx(ctx, tx, r.InventoryItemID, r.Quantity)
	})
}

// AdjustHold persists a quantity/expiry change and shifts the item's hold by
// delta. Positive deltas re-check availability under the row lock.
func (s *PostgresReservationStore) AdjustHold(ctx context.Context, r *reservation.Reservation, delta int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if delta > 0 {
			available, err := lockItemAvailability(ctx, tx, r.InventoryItemID)
			if err != nil {
				return err
			}
			if available < delta {
				return reservation.ErrInsufficientAvailableStock
			}
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE reservations
			SET quantity = $2, expires_at = $3, updated_at = $4
			WHERE id = $1 AND status = $5
		`, r.ID, r.Quantity, nullTime(r.ExpiresAt), r.UpdatedAt, reservation.StatusActive)
		if err != nil {
			return fmt.Errorf("failed to update reservation: %w", err)
		}
		if err := requireRow(res, reservation.ErrInvalidState); err != nil {
			return err
		}

		if delta != 0 {
			return adjustReservedTx(ctx, tx, r.InventoryItemID, delta)
		}
		return nil
	})
}

// Fulfill flips the reservation to FULFILLED and deducts its quantity from
// both item counters in one UPDATE.
func (s *PostgresReservationStore) Fulfill(ctx context.Context, r *reservation.Reservation) (*item.Item, error) {
	var updated *item.Item
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := markTerminal(ctx, tx, r, reservation.StatusFulfilled); err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx, `
			UPDATE inventory_items
			SET quantity = quantity - $2, reserved_quantity = reserved_quantity - $2, updated_at = NOW()
			WHERE id = $1
			RETURNING `+itemColumns, r.InventoryItemID, r.Quantity)

		it, err := scanItem(row)
		if err == sql.ErrNoRows {
			return item.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to deduct fulfilled stock: %w", err)
		}
		updated = it
		return nil
	})
	return updated, err
}

// Cancel flips the reservation to CANCELLED and releases its hold. Quantity
// itself is untouched: cancellation releases a hold, it does not undo a
// sale.
func (s *PostgresReservationStore) Cancel(ctx context.Context, r *reservation.Reservation) (*item.Item, error) {
	var updated *item.Item
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := markTerminal(ctx, tx, r, reservation.StatusCancelled); err != nil {
			return err
		}
		if err := adjustReservedTx(ctx, tx, r.InventoryItemID, -r.Quantity); err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, r.InventoryItemID)
		it, err := scanItem(row)
		if err != nil {
			return fmt.Errorf("failed to reload item after cancel: %w", err)
		}
		updated = it
		return nil
	})
	return updated, err
}

// Delete removes the reservation row. An ACTIVE reservation's hold is
// released in the same transaction.
func (s *PostgresReservationStore) Delete(ctx context.Context, r *reservation.Reservation) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, r.ID)
		if err != nil {
			return fmt.Errorf("failed to delete reservation: %w", err)
		}
		if err := requireRow(res, reservation.ErrNotFound); err != nil {
			return err
		}

		if r.Status == reservation.StatusActive {
			return adjustReservedTx(ctx, tx, r.InventoryItemID, -r.Quantity)
		}
		return nil
	})
}

func (s *PostgresReservationStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// markTerminal guards the ACTIVE -> terminal transition at the SQL level; a
// concurrent operation that already terminated the reservation makes the
// UPDATE a no-op and the transaction fails with ErrInvalidState.
func markTerminal(ctx context.Context, tx *sql.Tx, r *reservation.Reservation, status reservation.Status) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE reservations SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`, r.ID, status, r.UpdatedAt, reservation.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	return requireRow(res, reservation.ErrInvalidState)
}

func adjustReservedTx(ctx context.Context, tx *sql.Tx, itemID string, delta int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE inventory_items
		SET reserved_quantity = reserved_quantity + $2, updated_at = NOW()
		WHERE id = $1
	`, itemID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust reserved quantity: %w", err)
	}
	return requireRow(res, item.ErrNotFound)
}

func lockItemAvailability(ctx context.Context, tx *sql.Tx, itemID string) (int, error) {
	var quantity, reserved int
	err := tx.QueryRowContext(ctx, `
		SELECT quantity, reserved_quantity FROM inventory_items WHERE id = $1 FOR UPDATE
	`, itemID).Scan(&quantity, &reserved)
	if err == sql.ErrNoRows {
		return 0, item.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock inventory item: %w", err)
	}
	return quantity - reserved, nil
}
