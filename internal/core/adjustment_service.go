package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// AdjustmentService applies a signed quantity delta to one dimension of one
// balance. Stock counts drift in the real world (damaged cylinders, counting
// corrections, returns); this is the operation the console's adjustment
// dialog calls.
type AdjustmentService struct {
	store  BalanceStore
	logger *slog.Logger
	now    func() time.Time
}

func NewAdjustmentService(store BalanceStore, logger *slog.Logger) *AdjustmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdjustmentService{store: store, logger: logger, now: time.Now}
}

// AdjustStock validates the request and hands the mutation to the store,
// which applies it atomically. A key with no row yet starts at zero.
//
// full/empty decrements larger than the current quantity floor at zero; the
// audit record keeps the requested delta alongside the applied one so the
// clamp is observable. reserved changes that would go negative or exceed
// qty_full are rejected with no mutation.
func (s *AdjustmentService) AdjustStock(ctx context.Context, auth AuthContext, warehouseID, productID int,
	dim Dimension, delta int64, reason string) (*InventoryBalance, error) {

	if auth.Actor == "" {
		return nil, ErrNoActor
	}
	if !dim.Valid() {
		return nil, validationf("unknown dimension %q", dim)
	}
	if delta == 0 {
		return nil, validationf("adjustment delta must be non-zero")
	}
	if reason == "" {
		return nil, validationf("adjustment reason is required")
	}

	meta := MutationMeta{
		Actor:         auth.Actor,
		CorrelationID: uuid.NewString(),
		At:            s.now().UTC(),
	}
	m := Mutation{
		Key:       BalanceKey{WarehouseID: warehouseID, ProductID: productID},
		Dimension: dim,
		Delta:     delta,
		Reason:    reason,
	}

	bal, applied, err := s.store.Adjust(ctx, m, meta)
	if err != nil {
		return nil, err
	}

	if applied != delta {
		s.logger.Info("adjustment clamped at zero",
			"warehouse_id", warehouseID, "product_id", productID,
			"dimension", dim, "requested", delta, "applied", applied,
			"actor", auth.Actor, "correlation_id", meta.CorrelationID)
	}
	return bal, nil
}
