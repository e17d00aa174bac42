// ABOUTME: Product and color persistence for the admin catalog endpoints
// ABOUTME: Products reference colors through the product_colors join table

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownColor is returned when a product references a color that doesn't exist.
var ErrUnknownColor = errors.New("unknown color")

// Ensure SQLiteStore implements CatalogStore.
var _ CatalogStore = (*SQLiteStore)(nil)

// CreateColor stores a new color.
func (s *SQLiteStore) CreateColor(ctx context.Context, color *Color) error {
	if color.CreatedAt.IsZero() {
		color.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO colors (id, name, hex, created_at) VALUES (?, ?, ?, ?)`,
		color.ID, color.Name, color.Hex, formatTime(color.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrColorNameExists
		}
		return fmt.Errorf("inserting color: %w", err)
	}
	return nil
}

// ListColors returns all colors ordered by name.
func (s *SQLiteStore) ListColors(ctx context.Context) ([]*Color, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, hex, created_at FROM colors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying colors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	colors := []*Color{}
	for rows.Next() {
		var c Color
		var createdAtStr string
		if err := rows.Scan(&c.ID, &c.Name, &c.Hex, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning color: %w", err)
		}
		if c.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
			return nil, err
		}
		colors = append(colors, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating colors: %w", err)
	}
	return colors, nil
}

// DeleteColor removes a color and detaches it from every product.
func (s *SQLiteStore) DeleteColor(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_colors WHERE color_id = ?`, id); err != nil {
			return fmt.Errorf("detaching color: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM colors WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting color: %w", err)
		}
		return requireAffected(res)
	})
}

// CreateProduct stores a new product and its color links.
func (s *SQLiteStore) CreateProduct(ctx context.Context, p *Product) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, description, price_cents, stock, active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, p.PriceCents, p.Stock, p.Active,
			formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting product: %w", err)
		}
		return replaceProductColors(ctx, tx, p.ID, p.ColorIDs)
	})
}

// GetProduct retrieves a product by ID.
func (s *SQLiteStore) GetProduct(ctx context.Context, id string) (*Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, price_cents, stock, active, created_at, updated_at
		FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying product: %w", err)
	}

	links, err := s.productColors(ctx, id)
	if err != nil {
		return nil, err
	}
	if ids, ok := links[id]; ok {
		p.ColorIDs = ids
	}
	return p, nil
}

// ListProducts returns all products, newest first.
func (s *SQLiteStore) ListProducts(ctx context.Context) ([]*Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, price_cents, stock, active, created_at, updated_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	_ = rows.Close()

	links, err := s.productColors(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if ids, ok := links[p.ID]; ok {
			p.ColorIDs = ids
		}
	}
	return products, nil
}

// UpdateProduct overwrites a product's fields and color links.
func (s *SQLiteStore) UpdateProduct(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET name = ?, description = ?, price_cents = ?, stock = ?, active = ?, updated_at = ?
			WHERE id = ?`,
			p.Name, p.Description, p.PriceCents, p.Stock, p.Active, formatTime(p.UpdatedAt), p.ID,
		)
		if err != nil {
			return fmt.Errorf("updating product: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		return replaceProductColors(ctx, tx, p.ID, p.ColorIDs)
	})
}

// DeleteProduct removes a product and its color links.
func (s *SQLiteStore) DeleteProduct(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_colors WHERE product_id = ?`, id); err != nil {
			return fmt.Errorf("deleting product colors: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting product: %w", err)
		}
		return requireAffected(res)
	})
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	var createdAtStr, updatedAtStr string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.Active, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	p.ColorIDs = []string{}
	return &p, nil
}

// productColors returns color IDs keyed by product ID. An empty productID
// loads links for every product.
func (s *SQLiteStore) productColors(ctx context.Context, productID string) (map[string][]string, error) {
	query := `SELECT product_id, color_id FROM product_colors`
	var args []any
	if productID != "" {
		query += ` WHERE product_id = ?`
		args = append(args, productID)
	}
	query += ` ORDER BY product_id, color_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying product colors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	links := make(map[string][]string)
	for rows.Next() {
		var pid, cid string
		if err := rows.Scan(&pid, &cid); err != nil {
			return nil, fmt.Errorf("scanning product color: %w", err)
		}
		links[pid] = append(links[pid], cid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product colors: %w", err)
	}
	return links, nil
}

func replaceProductColors(ctx context.Context, tx *sql.Tx, productID string, colorIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_colors WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("clearing product colors: %w", err)
	}

	seen := make(map[string]bool, len(colorIDs))
	for _, cid := range colorIDs {
		if seen[cid] {
			continue
		}
		seen[cid] = true

		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM colors WHERE id = ?`, cid).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrUnknownColor, cid)
		}
		if err != nil {
			return fmt.Errorf("checking color: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_colors (product_id, color_id) VALUES (?, ?)`, productID, cid,
		); err != nil {
			return fmt.Errorf("linking color %s: %w", cid, err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, committing on nil error.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
