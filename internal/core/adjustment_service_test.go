package core_test

import (
	"context"
	"errors"
	"testing"

	"lpg-console/internal/core"
)

var admin = core.AuthContext{Actor: "admin"}

func seededStore(t *testing.T, balances ...core.InventoryBalance) *core.MemoryStore {
	t.Helper()
	store := core.NewMemoryStore(nil, nil)
	for _, b := range balances {
		store.Seed(b)
	}
	return store
}

func balance(warehouseID, productID int, full, empty, reserved int64) core.InventoryBalance {
	return core.InventoryBalance{
		BalanceKey: core.BalanceKey{WarehouseID: warehouseID, ProductID: productID},
		Quantities: core.Quantities{Full: full, Empty: empty, Reserved: reserved},
	}
}

func TestAdjustStock_IncrementAndAudit(t *testing.T) {
	store := seededStore(t, balance(1, 1, 100, 20, 0))
	svc := core.NewAdjustmentService(store, nil)
	ctx := context.Background()

	bal, err := svc.AdjustStock(ctx, admin, 1, 1, core.DimensionFull, 25, "refill truck arrived")
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if bal.Full != 125 {
		t.Errorf("full = %d, want 125", bal.Full)
	}

	recs := store.Adjustments()
	if len(recs) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.RequestedDelta != 25 || rec.AppliedDelta != 25 {
		t.Errorf("audit deltas = (%d, %d), want (25, 25)", rec.RequestedDelta, rec.AppliedDelta)
	}
	if rec.Actor != "admin" || rec.Reason != "refill truck arrived" {
		t.Errorf("audit actor/reason = %q/%q", rec.Actor, rec.Reason)
	}
	if rec.CorrelationID == "" {
		t.Error("audit record missing correlation id")
	}
}

func TestAdjustStock_ClampRecordsBothDeltas(t *testing.T) {
	store := seededStore(t, balance(1, 1, 3, 0, 0))
	svc := core.NewAdjustmentService(store, nil)

	bal, err := svc.AdjustStock(context.Background(), admin, 1, 1, core.DimensionFull, -10, "damage writeoff")
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if bal.Full != 0 {
		t.Errorf("full = %d, want 0 (clamped)", bal.Full)
	}

	rec := store.Adjustments()[0]
	if rec.RequestedDelta != -10 {
		t.Errorf("requested delta = %d, want -10", rec.RequestedDelta)
	}
	if rec.AppliedDelta != -3 {
		t.Errorf("applied delta = %d, want -3", rec.AppliedDelta)
	}
}

func TestAdjustStock_ReservedRejectLeavesBalanceUntouched(t *testing.T) {
	store := seededStore(t, balance(1, 1, 5, 0, 2))
	svc := core.NewAdjustmentService(store, nil)
	ctx := context.Background()

	_, err := svc.AdjustStock(ctx, admin, 1, 1, core.DimensionReserved, 10, "overbook")
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	bal, err := store.Get(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if bal.Reserved != 2 || bal.Full != 5 {
		t.Errorf("balance mutated on reject: %+v", bal.Quantities)
	}
	if len(store.Adjustments()) != 0 {
		t.Error("rejected adjustment must not write an audit record")
	}
}

func TestAdjustStock_LazyCreatesBalance(t *testing.T) {
	store := seededStore(t)
	svc := core.NewAdjustmentService(store, nil)
	ctx := context.Background()

	if _, err := store.Get(ctx, 9, 9); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first adjustment, got %v", err)
	}

	bal, err := svc.AdjustStock(ctx, admin, 9, 9, core.DimensionEmpty, 40, "initial count")
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if bal.Empty != 40 || bal.Full != 0 || bal.Reserved != 0 {
		t.Errorf("new balance = %+v, want empty=40 only", bal.Quantities)
	}
}

func TestAdjustStock_Validation(t *testing.T) {
	store := seededStore(t, balance(1, 1, 10, 0, 0))
	svc := core.NewAdjustmentService(store, nil)
	ctx := context.Background()

	if _, err := svc.AdjustStock(ctx, core.AuthContext{}, 1, 1, core.DimensionFull, 1, "x"); !errors.Is(err, core.ErrNoActor) {
		t.Errorf("missing actor: got %v, want ErrNoActor", err)
	}

	var ve *core.ValidationError
	if _, err := svc.AdjustStock(ctx, admin, 1, 1, core.DimensionFull, 0, "x"); !errors.As(err, &ve) {
		t.Errorf("zero delta: got %v, want ValidationError", err)
	}
	if _, err := svc.AdjustStock(ctx, admin, 1, 1, core.DimensionFull, 1, ""); !errors.As(err, &ve) {
		t.Errorf("empty reason: got %v, want ValidationError", err)
	}
	if _, err := svc.AdjustStock(ctx, admin, 1, 1, core.Dimension("bogus"), 1, "x"); !errors.As(err, &ve) {
		t.Errorf("bad dimension: got %v, want ValidationError", err)
	}
	if len(store.Adjustments()) != 0 {
		t.Error("validation failures must not write audit records")
	}
}
