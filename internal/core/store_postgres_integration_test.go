package core_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"lpg-console/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE stock_adjustments, inventory_balances, order_lines, orders, products, warehouses CASCADE;

		INSERT INTO warehouses (id, code, name, capacity) VALUES
		(1, 'WH-A', 'Warehouse A', 1000),
		(2, 'WH-B', 'Warehouse B', NULL);

		INSERT INTO products (id, sku, name, status) VALUES
		(1, 'LPG-5KG', '5kg Cylinder', 'active');

		SELECT setval(pg_get_serial_sequence('warehouses','id'), 10);
		SELECT setval(pg_get_serial_sequence('products','id'), 10);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}
	return pool
}

func TestPostgresStore_AdjustAndAudit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := core.NewPostgresStore(pool, nil, nil)
	svc := core.NewAdjustmentService(store, nil)
	ctx := context.Background()

	// Lazy creation on first adjustment.
	bal, err := svc.AdjustStock(ctx, admin, 1, 1, core.DimensionFull, 100, "opening count")
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if bal.Full != 100 {
		t.Errorf("full = %d, want 100", bal.Full)
	}

	// Clamp is persisted with both deltas.
	if _, err := svc.AdjustStock(ctx, admin, 1, 1, core.DimensionFull, -150, "writeoff"); err != nil {
		t.Fatalf("clamped AdjustStock: %v", err)
	}

	var requested, applied int64
	err = pool.QueryRow(ctx, `
		SELECT requested_delta, applied_delta FROM stock_adjustments
		WHERE warehouse_id = 1 AND product_id = 1
		ORDER BY id DESC LIMIT 1
	`).Scan(&requested, &applied)
	if err != nil {
		t.Fatalf("read audit row: %v", err)
	}
	if requested != -150 || applied != -100 {
		t.Errorf("audit deltas = (%d, %d), want (-150, -100)", requested, applied)
	}

	bal, err = store.Get(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if bal.Full != 0 {
		t.Errorf("full after clamp = %d, want 0", bal.Full)
	}
}

func TestPostgresStore_PairAdjustTransfers(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := core.NewPostgresStore(pool, nil, nil)
	adjust := core.NewAdjustmentService(store, nil)
	transfers := core.NewTransferService(store, nil)
	ctx := context.Background()

	if _, err := adjust.AdjustStock(ctx, admin, 1, 1, core.DimensionFull, 80, "opening count"); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	result, err := transfers.Transfer(ctx, admin, 1, 2, 1, 30, "rebalance")
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if result.From.Full != 50 || result.To.Full != 30 {
		t.Errorf("balances = %d/%d, want 50/30", result.From.Full, result.To.Full)
	}

	// Both legs share one correlation id in the durable audit.
	var legs int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM stock_adjustments WHERE correlation_id = $1
	`, result.CorrelationID).Scan(&legs)
	if err != nil {
		t.Fatalf("count legs: %v", err)
	}
	if legs != 2 {
		t.Errorf("audit legs = %d, want 2", legs)
	}

	// Overdraw fails atomically: no rows change, no audit written.
	_, err = transfers.Transfer(ctx, admin, 1, 2, 1, 500, "")
	var ise *core.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	a, _ := store.Get(ctx, 1, 1)
	b, _ := store.Get(ctx, 2, 1)
	if a.Full+b.Full != 80 {
		t.Errorf("total = %d after failed transfer, want 80", a.Full+b.Full)
	}
}

func TestProductService_SetStatusLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewProductService(pool)
	ctx := context.Background()

	p, err := svc.SetStatus(ctx, admin, 1, core.ProductEndOfSale)
	if err != nil {
		t.Fatalf("active → end_of_sale: %v", err)
	}
	if p.Status != core.ProductEndOfSale {
		t.Errorf("status = %q, want end_of_sale", p.Status)
	}

	if p, err = svc.SetStatus(ctx, admin, 1, core.ProductObsolete); err != nil {
		t.Fatalf("end_of_sale → obsolete: %v", err)
	}

	// obsolete is terminal: reinstating must fail and persist nothing.
	_, err = svc.SetStatus(ctx, admin, 1, core.ProductActive)
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("obsolete → active: got %v, want ValidationError", err)
	}
	p, err = svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Status != core.ProductObsolete {
		t.Errorf("status after rejected transition = %q, want obsolete", p.Status)
	}

	if _, err := svc.SetStatus(ctx, admin, 1, core.ProductStatus("retired")); !errors.As(err, &ve) {
		t.Errorf("unknown status: got %v, want ValidationError", err)
	}
	if _, err := svc.SetStatus(ctx, core.AuthContext{}, 1, core.ProductObsolete); !errors.Is(err, core.ErrNoActor) {
		t.Errorf("missing actor: got %v, want ErrNoActor", err)
	}
}

func TestPostgresStore_ReservedRejectRollsBack(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := core.NewPostgresStore(pool, nil, nil)
	svc := core.NewAdjustmentService(store, nil)
	ctx := context.Background()

	if _, err := svc.AdjustStock(ctx, admin, 1, 1, core.DimensionFull, 10, "opening count"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.AdjustStock(ctx, admin, 1, 1, core.DimensionReserved, 15, "overbook")
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	bal, err := store.Get(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if bal.Reserved != 0 || bal.Full != 10 {
		t.Errorf("balance after rejected reserve = %+v", bal.Quantities)
	}

	var audits int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM stock_adjustments WHERE dimension = 'reserved'").Scan(&audits); err != nil {
		t.Fatalf("count audits: %v", err)
	}
	if audits != 0 {
		t.Errorf("rejected reserve wrote %d audit rows, want 0", audits)
	}
}
