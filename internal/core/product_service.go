package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductService manages the cylinder product catalog. A product's identity
// is immutable once referenced by a balance or order; only its lifecycle
// status and descriptive fields change.
type ProductService struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewProductService(pool *pgxpool.Pool) *ProductService {
	return &ProductService{pool: pool, timeout: 5 * time.Second}
}

func (s *ProductService) List(ctx context.Context) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, sku, name, status, created_at
		FROM products
		ORDER BY sku
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ProductService) Get(ctx context.Context, id int) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var p Product
	err := s.pool.QueryRow(ctx, `
		SELECT id, sku, name, status, created_at FROM products WHERE id = $1
	`, id).Scan(&p.ID, &p.SKU, &p.Name, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &p, nil
}

func (s *ProductService) Create(ctx context.Context, auth AuthContext, sku, name string) (*Product, error) {
	if auth.Actor == "" {
		return nil, ErrNoActor
	}
	if sku == "" || name == "" {
		return nil, validationf("product SKU and name are required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var p Product
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (sku, name, status)
		VALUES ($1, $2, $3)
		RETURNING id, sku, name, status, created_at
	`, sku, name, string(ProductActive)).Scan(&p.ID, &p.SKU, &p.Name, &p.Status, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, validationf("product SKU %s already exists", sku)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &p, nil
}

// SetStatus moves a product along its lifecycle. Transitions are validated
// with CanTransition; an obsolete product stays obsolete.
func (s *ProductService) SetStatus(ctx context.Context, auth AuthContext, id int, to ProductStatus) (*Product, error) {
	if auth.Actor == "" {
		return nil, ErrNoActor
	}
	if to != ProductActive && to != ProductEndOfSale && to != ProductObsolete {
		return nil, validationf("unknown product status %q", to)
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == to {
		return p, nil
	}
	if !CanTransition(p.Status, to) {
		return nil, validationf("product %s cannot move from %s to %s", p.SKU, p.Status, to)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, `
		UPDATE products SET status = $1 WHERE id = $2
	`, string(to), id); err != nil {
		return nil, fmt.Errorf("failed to update product status: %w", err)
	}
	p.Status = to
	return p, nil
}
