package core_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"lpg-console/internal/core"
)

// faultyStore wraps a MemoryStore and fails Adjust for one balance key.
// Used to drive the credit leg of a transfer into failure.
type faultyStore struct {
	*core.MemoryStore
	failKey core.BalanceKey
}

func (s *faultyStore) Adjust(ctx context.Context, m core.Mutation, meta core.MutationMeta) (*core.InventoryBalance, int64, error) {
	if m.Key == s.failKey {
		return nil, 0, &core.TransientIOError{Op: "adjust", Err: errors.New("injected failure")}
	}
	return s.MemoryStore.Adjust(ctx, m, meta)
}

func TestTransfer_MovesStockAndConservesTotal(t *testing.T) {
	store := seededStore(t,
		balance(1, 1, 100, 10, 5),
		balance(2, 1, 20, 0, 0),
	)
	svc := core.NewTransferService(store, nil)

	result, err := svc.Transfer(context.Background(), admin, 1, 2, 1, 30, "monthly rebalance")
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if result.From.Full != 70 {
		t.Errorf("source full = %d, want 70", result.From.Full)
	}
	if result.To.Full != 50 {
		t.Errorf("destination full = %d, want 50", result.To.Full)
	}
	if total := result.From.Full + result.To.Full; total != 120 {
		t.Errorf("total full = %d, want 120 (conserved)", total)
	}
	if result.From.Reserved != 5 {
		t.Errorf("source reserved = %d, want untouched 5", result.From.Reserved)
	}
	if result.CorrelationID == "" {
		t.Error("missing correlation id")
	}

	recs := store.Adjustments()
	if len(recs) != 2 {
		t.Fatalf("expected 2 audit records, got %d", len(recs))
	}
	if recs[0].CorrelationID != recs[1].CorrelationID {
		t.Error("transfer legs must share one correlation id")
	}
	if recs[0].Reason != "transfer-out: monthly rebalance" || recs[1].Reason != "transfer-in: monthly rebalance" {
		t.Errorf("unexpected reasons %q / %q", recs[0].Reason, recs[1].Reason)
	}
}

func TestTransfer_InsufficientAvailable(t *testing.T) {
	// 40 full but 35 reserved: only 5 available.
	store := seededStore(t, balance(1, 1, 40, 0, 35))
	svc := core.NewTransferService(store, nil)
	ctx := context.Background()

	_, err := svc.Transfer(ctx, admin, 1, 2, 1, 6, "")
	var ise *core.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if ise.Requested != 6 || ise.Available != 5 {
		t.Errorf("error reported requested=%d available=%d, want 6 and 5", ise.Requested, ise.Available)
	}

	bal, _ := store.Get(ctx, 1, 1)
	if bal.Full != 40 {
		t.Errorf("failed transfer mutated source: full = %d", bal.Full)
	}
	if len(store.Adjustments()) != 0 {
		t.Error("failed transfer must not write audit records")
	}

	// Exactly the available amount goes through.
	if _, err := svc.Transfer(ctx, admin, 1, 2, 1, 5, ""); err != nil {
		t.Fatalf("transfer of exact available amount: %v", err)
	}
}

func TestTransfer_Validation(t *testing.T) {
	store := seededStore(t, balance(1, 1, 100, 0, 0))
	svc := core.NewTransferService(store, nil)
	ctx := context.Background()

	if _, err := svc.Transfer(ctx, core.AuthContext{}, 1, 2, 1, 5, ""); !errors.Is(err, core.ErrNoActor) {
		t.Errorf("missing actor: got %v, want ErrNoActor", err)
	}

	var ve *core.ValidationError
	if _, err := svc.Transfer(ctx, admin, 1, 1, 1, 5, ""); !errors.As(err, &ve) {
		t.Errorf("same warehouse: got %v, want ValidationError", err)
	}
	if _, err := svc.Transfer(ctx, admin, 1, 2, 1, 0, ""); !errors.As(err, &ve) {
		t.Errorf("zero quantity: got %v, want ValidationError", err)
	}
	if _, err := svc.Transfer(ctx, admin, 1, 2, 1, -3, ""); !errors.As(err, &ve) {
		t.Errorf("negative quantity: got %v, want ValidationError", err)
	}
}

func TestTransfer_CreditFailureCompensatesSource(t *testing.T) {
	inner := seededStore(t, balance(1, 1, 100, 0, 0))
	store := &faultyStore{
		MemoryStore: inner,
		failKey:     core.BalanceKey{WarehouseID: 2, ProductID: 1},
	}
	svc := core.NewTransferService(store, nil)
	ctx := context.Background()

	_, err := svc.Transfer(ctx, admin, 1, 2, 1, 30, "")
	var cv *core.ConsistencyViolationError
	if !errors.As(err, &cv) {
		t.Fatalf("expected ConsistencyViolationError, got %v", err)
	}
	if cv.CompensationErr != nil {
		t.Fatalf("compensation should have succeeded: %v", cv.CompensationErr)
	}
	if !core.IsRetryable(err) {
		t.Error("a compensated transfer failure should be retryable")
	}

	bal, err := inner.Get(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if bal.Full != 100 {
		t.Errorf("source full = %d after compensation, want 100", bal.Full)
	}

	// Debit and reversal both audited under the transfer's correlation id.
	recs := inner.Adjustments()
	if len(recs) != 2 {
		t.Fatalf("expected 2 audit records (debit + compensation), got %d", len(recs))
	}
	if recs[0].CorrelationID != recs[1].CorrelationID {
		t.Error("compensation must reuse the transfer correlation id")
	}
	if recs[1].Reason != "transfer-compensation" {
		t.Errorf("compensation reason = %q", recs[1].Reason)
	}
	if recs[0].AppliedDelta+recs[1].AppliedDelta != 0 {
		t.Errorf("debit %d and compensation %d do not cancel", recs[0].AppliedDelta, recs[1].AppliedDelta)
	}
}

func TestTransfer_ConcurrentConservation(t *testing.T) {
	store := seededStore(t,
		balance(1, 1, 1000, 0, 0),
		balance(2, 1, 1000, 0, 0),
	)
	svc := core.NewTransferService(store, nil)
	ctx := context.Background()

	const workers = 8
	const perWorker = 10

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := 1, 2
			if i%2 == 1 {
				from, to = 2, 1
			}
			actor := core.AuthContext{Actor: fmt.Sprintf("worker-%d", i)}
			for j := 0; j < perWorker; j++ {
				if _, err := svc.Transfer(ctx, actor, from, to, 1, 3, ""); err != nil {
					t.Errorf("worker %d transfer %d: %v", i, j, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	a, _ := store.Get(ctx, 1, 1)
	b, _ := store.Get(ctx, 2, 1)
	if total := a.Full + b.Full; total != 2000 {
		t.Errorf("total full = %d after concurrent transfers, want 2000", total)
	}
}
