package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"lpg-console/internal/events"
)

// TopicInventoryBalances is the change-stream topic for balance mutations.
// One topic per entity; payloads are JSON-encoded BalanceChange values.
const TopicInventoryBalances = "inventory_balances"

// BalanceChange is the payload published after every successful balance
// write, from any origin. Subscribers re-read the balance from the store
// rather than trusting these fields beyond the key.
type BalanceChange struct {
	WarehouseID   int       `json:"warehouse_id"`
	ProductID     int       `json:"product_id"`
	CorrelationID string    `json:"correlation_id"`
	At            time.Time `json:"at"`
}

// MutationMeta carries the audit identity shared by all mutations of one
// logical operation: both legs of a transfer record the same actor,
// correlation id, and timestamp so a partial failure is diagnosable from the
// audit log alone.
type MutationMeta struct {
	Actor         string
	CorrelationID string
	At            time.Time
}

// BalanceStore is the authoritative per-(warehouse, product) quantity record.
// Adjust is the single write path — no component mutates balance fields
// outside it. Implementations must make Adjust an atomic read-modify-write at
// the persistence layer: the policy in applyMutation runs while the row is
// exclusively held, so two concurrent adjustments can never lose an update.
type BalanceStore interface {
	// Get returns the balance for one key, or ErrNotFound when no row
	// exists yet.
	Get(ctx context.Context, warehouseID, productID int) (*InventoryBalance, error)

	// ForProduct returns every warehouse balance for a product, ordered by
	// warehouse id for stable table rendering.
	ForProduct(ctx context.Context, productID int) ([]InventoryBalance, error)

	// ForWarehouse returns every product balance held in one warehouse,
	// ordered by product id.
	ForWarehouse(ctx context.Context, warehouseID int) ([]InventoryBalance, error)

	// Adjust atomically applies one mutation, creating the row at zero if
	// absent, stamping updated_at with meta.At, and appending the audit
	// record. Returns the updated balance and the delta actually applied
	// (differs from the requested delta when clamped).
	Adjust(ctx context.Context, m Mutation, meta MutationMeta) (*InventoryBalance, int64, error)
}

// PairAdjuster is implemented by stores that can apply two mutations in one
// transaction. The Transfer Service prefers it over the compensation
// protocol: both legs commit or neither does.
type PairAdjuster interface {
	AdjustPair(ctx context.Context, debit, credit Mutation, meta MutationMeta) (*InventoryBalance, *InventoryBalance, error)
}

// publishChange emits a BalanceChange on the bus after a committed write.
// Fire-and-forget: a transport failure is logged and never fails the
// mutation, which is already durable and visible to readers.
func publishChange(ctx context.Context, bus events.Bus, logger *slog.Logger, key BalanceKey, meta MutationMeta) {
	if bus == nil {
		return
	}
	payload, err := json.Marshal(BalanceChange{
		WarehouseID:   key.WarehouseID,
		ProductID:     key.ProductID,
		CorrelationID: meta.CorrelationID,
		At:            meta.At,
	})
	if err != nil {
		return
	}
	if err := bus.Publish(ctx, TopicInventoryBalances, payload); err != nil && logger != nil {
		logger.Warn("balance change publish failed",
			"warehouse_id", key.WarehouseID, "product_id", key.ProductID,
			"correlation_id", meta.CorrelationID, "error", err)
	}
}
