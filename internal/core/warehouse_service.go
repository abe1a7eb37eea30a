package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WarehouseSummary is the dashboard view of one warehouse: aggregated
// cylinder counts across its balances plus the utilization axis, when the
// warehouse carries a rated capacity.
type WarehouseSummary struct {
	Warehouse     Warehouse    `json:"warehouse"`
	TotalFull     int64        `json:"total_full"`
	TotalEmpty    int64        `json:"total_empty"`
	TotalReserved int64        `json:"total_reserved"`
	Utilization   *Utilization `json:"utilization,omitempty"`
}

// WarehouseService manages the warehouse master records. Balances themselves
// are read through the BalanceStore port so summaries work identically over
// the persistent and in-memory stores.
type WarehouseService struct {
	pool    *pgxpool.Pool
	store   BalanceStore
	timeout time.Duration
}

func NewWarehouseService(pool *pgxpool.Pool, store BalanceStore) *WarehouseService {
	return &WarehouseService{pool: pool, store: store, timeout: 5 * time.Second}
}

func (s *WarehouseService) List(ctx context.Context) ([]Warehouse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, capacity, address, is_active, created_at
		FROM warehouses
		WHERE is_active = true
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouses: %w", err)
	}
	defer rows.Close()

	var out []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.Code, &w.Name, &w.Capacity, &w.Address, &w.IsActive, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *WarehouseService) Get(ctx context.Context, id int) (*Warehouse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var w Warehouse
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, name, capacity, address, is_active, created_at
		FROM warehouses
		WHERE id = $1
	`, id).Scan(&w.ID, &w.Code, &w.Name, &w.Capacity, &w.Address, &w.IsActive, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch warehouse %d: %w", id, err)
	}
	return &w, nil
}

// Create registers a new warehouse. Capacity and address are optional.
func (s *WarehouseService) Create(ctx context.Context, auth AuthContext, code, name string, capacity *int, address *string) (*Warehouse, error) {
	if auth.Actor == "" {
		return nil, ErrNoActor
	}
	if code == "" || name == "" {
		return nil, validationf("warehouse code and name are required")
	}
	if capacity != nil && *capacity <= 0 {
		return nil, validationf("warehouse capacity must be positive when given, got %d", *capacity)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var w Warehouse
	err := s.pool.QueryRow(ctx, `
		INSERT INTO warehouses (code, name, capacity, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, code, name, capacity, address, is_active, created_at
	`, code, name, capacity, address).Scan(&w.ID, &w.Code, &w.Name, &w.Capacity, &w.Address, &w.IsActive, &w.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, validationf("warehouse code %s already exists", code)
		}
		return nil, fmt.Errorf("failed to create warehouse: %w", err)
	}
	return &w, nil
}

// Summaries aggregates every active warehouse's balances for the dashboard.
func (s *WarehouseService) Summaries(ctx context.Context) ([]WarehouseSummary, error) {
	warehouses, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]WarehouseSummary, 0, len(warehouses))
	for _, w := range warehouses {
		balances, err := s.store.ForWarehouse(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read balances for warehouse %s: %w", w.Code, err)
		}

		sum := WarehouseSummary{Warehouse: w}
		for _, b := range balances {
			sum.TotalFull += b.Full
			sum.TotalEmpty += b.Empty
			sum.TotalReserved += b.Reserved
		}
		sum.Utilization = ClassifyUtilization(sum.TotalFull+sum.TotalEmpty, w.Capacity)
		out = append(out, sum)
	}
	return out, nil
}
