package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

// SQLCatalog implements CatalogStore over the products table.
type SQLCatalog struct {
	db *sql.DB
	d  dialect
}

func (s *SQLCatalog) Equal(ctx context.Context, column, value string) (*core.Product, error) {
	products, err := s.query(ctx, s.d.equal(column, 1), 1, value)
	if err != nil || len(products) == 0 {
		return nil, err
	}
	return &products[0], nil
}

func (s *SQLCatalog) Like(ctx context.Context, column, pattern string, limit int) ([]core.Product, error) {
	return s.query(ctx, s.d.ilike(column, 1), limit, pattern)
}

func (s *SQLCatalog) query(ctx context.Context, cond string, limit int, arg string) ([]core.Product, error) {
	q := fmt.Sprintf("SELECT * FROM products WHERE %s LIMIT %d", cond, limit)
	rows, err := s.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("product columns: %w", err)
	}

	var products []core.Product
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, productFromRow(cols, vals))
	}
	return products, rows.Err()
}

// productFromRow maps a row by column name so that tables whose identifier
// column is spelled SKU or Sku still decode.
func productFromRow(cols []string, vals []any) core.Product {
	var p core.Product
	for i, col := range cols {
		switch strings.ToLower(col) {
		case "sku":
			p.SKU = asString(vals[i])
		case "name":
			p.Name = asString(vals[i])
		case "price":
			p.Price = asFloat(vals[i])
		case "aisle":
			p.Aisle = asString(vals[i])
		case "description":
			p.Description = asString(vals[i])
		case "url":
			p.URL = asString(vals[i])
		}
	}
	return p
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case string, []byte:
		f, _ := strconv.ParseFloat(asString(x), 64)
		return f
	default:
		return 0
	}
}

// Upsert inserts or replaces products by SKU and returns how many were written.
func (s *SQLCatalog) Upsert(ctx context.Context, products []core.Product) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.d.upsertProduct())
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, p := range products {
		if strings.TrimSpace(p.SKU) == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, p.SKU, p.Name, p.Price, p.Aisle, p.Description, p.URL); err != nil {
			return n, fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func (s *SQLCatalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
