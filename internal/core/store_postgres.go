package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lpg-console/internal/events"
)

// PostgresStore is the persistent BalanceStore. Every write runs as one
// transaction that locks the balance row FOR UPDATE before applying the
// mutation policy, so concurrent adjustments on the same key serialize at the
// row instead of losing updates. It also implements PairAdjuster, giving the
// Transfer Service real cross-row atomicity.
type PostgresStore struct {
	pool    *pgxpool.Pool
	bus     events.Bus
	logger  *slog.Logger
	timeout time.Duration
}

// NewPostgresStore wraps pool. bus may be nil to disable change publication
// (migration tooling, one-shot scripts).
func NewPostgresStore(pool *pgxpool.Pool, bus events.Bus, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{pool: pool, bus: bus, logger: logger, timeout: 5 * time.Second}
}

const balanceColumns = "warehouse_id, product_id, qty_full, qty_empty, qty_reserved, updated_at"

func scanBalance(row pgx.Row) (*InventoryBalance, error) {
	var b InventoryBalance
	err := row.Scan(&b.WarehouseID, &b.ProductID, &b.Full, &b.Empty, &b.Reserved, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PostgresStore) Get(ctx context.Context, warehouseID, productID int) (*InventoryBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	b, err := scanBalance(s.pool.QueryRow(ctx, `
		SELECT `+balanceColumns+`
		FROM inventory_balances
		WHERE warehouse_id = $1 AND product_id = $2
	`, warehouseID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &TransientIOError{Op: "get balance", Err: err}
	}
	return b, nil
}

func (s *PostgresStore) ForProduct(ctx context.Context, productID int) ([]InventoryBalance, error) {
	return s.queryBalances(ctx, "product_id", productID, "warehouse_id")
}

func (s *PostgresStore) ForWarehouse(ctx context.Context, warehouseID int) ([]InventoryBalance, error) {
	return s.queryBalances(ctx, "warehouse_id", warehouseID, "product_id")
}

func (s *PostgresStore) queryBalances(ctx context.Context, keyCol string, id int, orderCol string) ([]InventoryBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM inventory_balances
		WHERE %s = $1
		ORDER BY %s
	`, balanceColumns, keyCol, orderCol), id)
	if err != nil {
		return nil, &TransientIOError{Op: "query balances", Err: err}
	}
	defer rows.Close()

	var out []InventoryBalance
	for rows.Next() {
		var b InventoryBalance
		if err := rows.Scan(&b.WarehouseID, &b.ProductID, &b.Full, &b.Empty, &b.Reserved, &b.UpdatedAt); err != nil {
			return nil, &TransientIOError{Op: "scan balance", Err: err}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &TransientIOError{Op: "iterate balances", Err: err}
	}
	return out, nil
}

func (s *PostgresStore) Adjust(ctx context.Context, m Mutation, meta MutationMeta) (*InventoryBalance, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, &TransientIOError{Op: "begin adjust", Err: err}
	}
	defer tx.Rollback(ctx)

	bal, applied, err := s.applyInTx(ctx, tx, m, meta)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, &TransientIOError{Op: "commit adjust", Err: err}
	}

	publishChange(ctx, s.bus, s.logger, m.Key, meta)
	return bal, applied, nil
}

// AdjustPair applies a transfer's debit and credit in one transaction,
// locking the two rows in deterministic key order so opposing transfers
// cannot deadlock.
func (s *PostgresStore) AdjustPair(ctx context.Context, debit, credit Mutation, meta MutationMeta) (*InventoryBalance, *InventoryBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, &TransientIOError{Op: "begin transfer", Err: err}
	}
	defer tx.Rollback(ctx)

	first, second := debit, credit
	if keyLess(credit.Key, debit.Key) {
		first, second = credit, debit
	}
	if err := s.lockRow(ctx, tx, first.Key); err != nil {
		return nil, nil, err
	}
	if err := s.lockRow(ctx, tx, second.Key); err != nil {
		return nil, nil, err
	}

	debitBal, _, err := s.applyInTx(ctx, tx, debit, meta)
	if err != nil {
		return nil, nil, err
	}
	creditBal, _, err := s.applyInTx(ctx, tx, credit, meta)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, &TransientIOError{Op: "commit transfer", Err: err}
	}

	publishChange(ctx, s.bus, s.logger, debit.Key, meta)
	publishChange(ctx, s.bus, s.logger, credit.Key, meta)
	return debitBal, creditBal, nil
}

func keyLess(a, b BalanceKey) bool {
	if a.WarehouseID != b.WarehouseID {
		return a.WarehouseID < b.WarehouseID
	}
	return a.ProductID < b.ProductID
}

// lockRow creates the balance row at zero if absent and takes its row lock.
func (s *PostgresStore) lockRow(ctx context.Context, tx pgx.Tx, key BalanceKey) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_balances (warehouse_id, product_id, qty_full, qty_empty, qty_reserved)
		VALUES ($1, $2, 0, 0, 0)
		ON CONFLICT (warehouse_id, product_id) DO NOTHING
	`, key.WarehouseID, key.ProductID); err != nil {
		return &TransientIOError{Op: "upsert balance row", Err: err}
	}
	if _, err := tx.Exec(ctx, `
		SELECT 1 FROM inventory_balances
		WHERE warehouse_id = $1 AND product_id = $2
		FOR UPDATE
	`, key.WarehouseID, key.ProductID); err != nil {
		return &TransientIOError{Op: "lock balance row", Err: err}
	}
	return nil
}

// applyInTx runs the full read-modify-write for one mutation inside tx:
// lazy row creation, FOR UPDATE lock, policy evaluation, quantity update,
// and the audit insert. Policy rejections come back unwrapped so callers
// can match on their concrete types.
func (s *PostgresStore) applyInTx(ctx context.Context, tx pgx.Tx, m Mutation, meta MutationMeta) (*InventoryBalance, int64, error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_balances (warehouse_id, product_id, qty_full, qty_empty, qty_reserved)
		VALUES ($1, $2, 0, 0, 0)
		ON CONFLICT (warehouse_id, product_id) DO NOTHING
	`, m.Key.WarehouseID, m.Key.ProductID); err != nil {
		return nil, 0, &TransientIOError{Op: "upsert balance row", Err: err}
	}

	var cur Quantities
	err := tx.QueryRow(ctx, `
		SELECT qty_full, qty_empty, qty_reserved
		FROM inventory_balances
		WHERE warehouse_id = $1 AND product_id = $2
		FOR UPDATE
	`, m.Key.WarehouseID, m.Key.ProductID).Scan(&cur.Full, &cur.Empty, &cur.Reserved)
	if err != nil {
		return nil, 0, &TransientIOError{Op: "lock balance row", Err: err}
	}

	next, applied, err := applyMutation(cur, m)
	if err != nil {
		return nil, 0, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE inventory_balances
		SET qty_full = $1, qty_empty = $2, qty_reserved = $3, updated_at = $4
		WHERE warehouse_id = $5 AND product_id = $6
	`, next.Full, next.Empty, next.Reserved, meta.At, m.Key.WarehouseID, m.Key.ProductID); err != nil {
		return nil, 0, &TransientIOError{Op: "update balance", Err: err}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_adjustments
			(warehouse_id, product_id, dimension, requested_delta, applied_delta, reason, actor, correlation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, m.Key.WarehouseID, m.Key.ProductID, string(m.Dimension), m.Delta, applied,
		m.Reason, meta.Actor, meta.CorrelationID, meta.At); err != nil {
		return nil, 0, &TransientIOError{Op: "insert adjustment record", Err: err}
	}

	return &InventoryBalance{BalanceKey: m.Key, Quantities: next, UpdatedAt: meta.At}, applied, nil
}
