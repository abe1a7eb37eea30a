package core

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderReader is the read-only view of the order subsystem consumed by the
// analytics aggregator. Order lifecycle transitions live outside this core;
// only delivered order lines matter here.
type OrderReader interface {
	// DeliveredLines returns the lines of delivered orders for a product
	// whose order date falls in [from, to], inclusive.
	DeliveredLines(ctx context.Context, productID int, from, to time.Time) ([]DeliveredLine, error)
}

// PostgresOrderReader reads delivered order lines from the orders tables.
type PostgresOrderReader struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresOrderReader(pool *pgxpool.Pool) *PostgresOrderReader {
	return &PostgresOrderReader{pool: pool, timeout: 5 * time.Second}
}

func (r *PostgresOrderReader) DeliveredLines(ctx context.Context, productID int, from, to time.Time) ([]DeliveredLine, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT ol.product_id, ol.quantity, o.order_date
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		WHERE ol.product_id = $1
		  AND o.status = $2
		  AND o.order_date BETWEEN $3::date AND $4::date
		ORDER BY o.order_date
	`, productID, OrderDelivered, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, &TransientIOError{Op: "query delivered lines", Err: err}
	}
	defer rows.Close()

	var out []DeliveredLine
	for rows.Next() {
		var l DeliveredLine
		if err := rows.Scan(&l.ProductID, &l.Quantity, &l.OrderDate); err != nil {
			return nil, &TransientIOError{Op: "scan delivered line", Err: err}
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, &TransientIOError{Op: "iterate delivered lines", Err: err}
	}
	return out, nil
}

// MemoryOrderReader is the fixture-backed OrderReader for tests and demos.
type MemoryOrderReader struct {
	mu    sync.Mutex
	lines []DeliveredLine
}

func NewMemoryOrderReader(lines ...DeliveredLine) *MemoryOrderReader {
	return &MemoryOrderReader{lines: lines}
}

func (r *MemoryOrderReader) Add(l DeliveredLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, l)
}

func (r *MemoryOrderReader) DeliveredLines(_ context.Context, productID int, from, to time.Time) ([]DeliveredLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []DeliveredLine
	for _, l := range r.lines {
		if l.ProductID != productID {
			continue
		}
		d := l.OrderDate
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
