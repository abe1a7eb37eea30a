package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TransferResult reports both sides of a completed transfer.
type TransferResult struct {
	CorrelationID string           `json:"correlation_id"`
	Quantity      int64            `json:"quantity"`
	From          InventoryBalance `json:"from"`
	To            InventoryBalance `json:"to"`
	FromStatus    StockStatus      `json:"from_status"`
	ToStatus      StockStatus      `json:"to_status"`
}

// TransferService moves full cylinders between warehouses. Built on the
// BalanceStore's mutation primitive, it adds availability validation and
// cross-balance atomicity: when the store can apply both legs in one
// transaction (PairAdjuster) it does, otherwise it runs the debit, the
// credit, and — if the credit fails — a compensating credit back to the
// source, all under a per-warehouse-pair lock.
type TransferService struct {
	store  BalanceStore
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
	// locks is never evicted; it holds at most one entry per warehouse
	// pair ever transferred between, a few bytes each.
	locks map[[2]int]*sync.Mutex
}

func NewTransferService(store BalanceStore, logger *slog.Logger) *TransferService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferService{
		store:  store,
		logger: logger,
		now:    time.Now,
		locks:  make(map[[2]int]*sync.Mutex),
	}
}

// pairLock returns the mutex for an unordered warehouse pair. A transfer
// A→B and its reverse B→A share one lock, so a compensation in flight can
// never race an opposing transfer on the same pair.
func (s *TransferService) pairLock(a, b int) *sync.Mutex {
	if a > b {
		a, b = b, a
	}
	key := [2]int{a, b}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[key] = l
	return l
}

// Transfer moves quantity full units of a product from one warehouse to
// another. The source must have quantity available (full − reserved); the
// destination row is created at zero if absent. Both audit records share one
// correlation id.
func (s *TransferService) Transfer(ctx context.Context, auth AuthContext,
	fromWarehouseID, toWarehouseID, productID int, quantity int64, notes string) (*TransferResult, error) {

	if auth.Actor == "" {
		return nil, ErrNoActor
	}
	if fromWarehouseID == toWarehouseID {
		return nil, validationf("source and destination warehouse must differ")
	}
	if quantity < 1 {
		return nil, validationf("transfer quantity must be at least 1, got %d", quantity)
	}

	meta := MutationMeta{
		Actor:         auth.Actor,
		CorrelationID: uuid.NewString(),
		At:            s.now().UTC(),
	}
	debit := Mutation{
		Key:              BalanceKey{WarehouseID: fromWarehouseID, ProductID: productID},
		Dimension:        DimensionFull,
		Delta:            -quantity,
		RequireAvailable: quantity,
		Reason:           transferReason("transfer-out", notes),
	}
	credit := Mutation{
		Key:       BalanceKey{WarehouseID: toWarehouseID, ProductID: productID},
		Dimension: DimensionFull,
		Delta:     quantity,
		Reason:    transferReason("transfer-in", notes),
	}

	lock := s.pairLock(fromWarehouseID, toWarehouseID)
	lock.Lock()
	defer lock.Unlock()

	var fromBal, toBal *InventoryBalance
	var err error
	if pa, ok := s.store.(PairAdjuster); ok {
		fromBal, toBal, err = pa.AdjustPair(ctx, debit, credit, meta)
		if err != nil {
			return nil, err
		}
	} else {
		fromBal, toBal, err = s.transferCompensated(ctx, debit, credit, meta)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("transfer completed",
		"from_warehouse", fromWarehouseID, "to_warehouse", toWarehouseID,
		"product_id", productID, "quantity", quantity,
		"actor", auth.Actor, "correlation_id", meta.CorrelationID)

	return &TransferResult{
		CorrelationID: meta.CorrelationID,
		Quantity:      quantity,
		From:          *fromBal,
		To:            *toBal,
		FromStatus:    Classify(fromBal.Quantities),
		ToStatus:      Classify(toBal.Quantities),
	}, nil
}

// transferCompensated runs the two-leg protocol on stores without pair
// transactions: debit the source, credit the destination, and reverse the
// debit if the credit fails. A half-applied transfer must never stay
// observable, so a failed compensation is escalated in the returned error
// and in the log, keyed by the correlation id.
func (s *TransferService) transferCompensated(ctx context.Context, debit, credit Mutation, meta MutationMeta) (*InventoryBalance, *InventoryBalance, error) {
	fromBal, _, err := s.store.Adjust(ctx, debit, meta)
	if err != nil {
		return nil, nil, err
	}

	toBal, _, err := s.store.Adjust(ctx, credit, meta)
	if err == nil {
		return fromBal, toBal, nil
	}

	reversal := Mutation{
		Key:       debit.Key,
		Dimension: DimensionFull,
		Delta:     -debit.Delta,
		Reason:    "transfer-compensation",
	}
	_, _, compErr := s.store.Adjust(ctx, reversal, meta)

	cv := &ConsistencyViolationError{CorrelationID: meta.CorrelationID, Err: err, CompensationErr: compErr}
	if compErr != nil {
		s.logger.Error("transfer compensation failed; source balance inconsistent",
			"correlation_id", meta.CorrelationID,
			"warehouse_id", debit.Key.WarehouseID, "product_id", debit.Key.ProductID,
			"credit_error", err, "compensation_error", compErr)
	} else {
		s.logger.Warn("transfer credit leg failed; source debit compensated",
			"correlation_id", meta.CorrelationID,
			"warehouse_id", debit.Key.WarehouseID, "product_id", debit.Key.ProductID,
			"credit_error", err)
	}
	return nil, nil, cv
}

func transferReason(prefix, notes string) string {
	if notes == "" {
		return prefix
	}
	return prefix + ": " + notes
}
