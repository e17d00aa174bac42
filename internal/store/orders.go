// ABOUTME: Order persistence including line items and status transitions
// ABOUTME: Orders are written by the storefront and read or advanced by admins

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Ensure SQLiteStore implements OrderStore.
var _ OrderStore = (*SQLiteStore)(nil)

const orderColumns = `id, customer_email, customer_name, total_cents, status, custom, notes, created_at, updated_at`

// CreateOrder stores an order with its items. Empty status becomes pending.
func (s *SQLiteStore) CreateOrder(ctx context.Context, o *Order) error {
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, o.Status)
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.CustomerEmail, o.CustomerName, o.TotalCents, string(o.Status), o.Custom, o.Notes,
			formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		for i, item := range o.Items {
			var colorID sql.NullString
			if item.ColorID != "" {
				colorID = sql.NullString{String: item.ColorID, Valid: true}
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, position, product_id, product_name, color_id, quantity, unit_price_cents)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				o.ID, i, item.ProductID, item.ProductName, colorID, item.Quantity, item.UnitPriceCents,
			)
			if err != nil {
				return fmt.Errorf("inserting order item %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetOrder retrieves an order with its items.
func (s *SQLiteStore) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying order: %w", err)
	}

	items, err := s.orderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// ListOrders returns orders newest first. Items are not loaded.
func (s *SQLiteStore) ListOrders(ctx context.Context, filter OrderFilter) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus sets an order's status.
func (s *SQLiteStore) UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	s.logger.Info("order status updated", "id", id, "status", status)
	return nil
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	var status, createdAtStr, updatedAtStr string
	if err := row.Scan(
		&o.ID, &o.CustomerEmail, &o.CustomerName, &o.TotalCents, &status, &o.Custom, &o.Notes,
		&createdAtStr, &updatedAtStr,
	); err != nil {
		return nil, err
	}
	o.Status = OrderStatus(status)

	var err error
	if o.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *SQLiteStore) orderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, color_id, quantity, unit_price_cents
		FROM order_items WHERE order_id = ? ORDER BY position ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []OrderItem{}
	for rows.Next() {
		var item OrderItem
		var colorID sql.NullString
		if err := rows.Scan(&item.ProductID, &item.ProductName, &colorID, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		item.ColorID = colorID.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}
	return items, nil
}
