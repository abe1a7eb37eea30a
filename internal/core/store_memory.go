package core

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"lpg-console/internal/events"
)

// MemoryStore is the in-memory BalanceStore. It backs the unit tests and the
// fixture-data demo mode, behind the same interface as PostgresStore so
// business logic never branches on which one it is talking to.
//
// It deliberately does not implement PairAdjuster: transfers over a
// MemoryStore exercise the debit/credit-with-compensation protocol.
type MemoryStore struct {
	mu          sync.Mutex
	balances    map[BalanceKey]InventoryBalance
	adjustments []AdjustmentRecord
	nextAuditID int64

	bus    events.Bus
	logger *slog.Logger
}

func NewMemoryStore(bus events.Bus, logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		balances: make(map[BalanceKey]InventoryBalance),
		bus:      bus,
		logger:   logger,
	}
}

// Seed installs a balance directly, bypassing the audit trail. Test and
// fixture setup only.
func (s *MemoryStore) Seed(b InventoryBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[b.BalanceKey] = b
}

// Adjustments returns a copy of the audit trail in append order.
func (s *MemoryStore) Adjustments() []AdjustmentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AdjustmentRecord, len(s.adjustments))
	copy(out, s.adjustments)
	return out
}

func (s *MemoryStore) Get(_ context.Context, warehouseID, productID int) (*InventoryBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[BalanceKey{WarehouseID: warehouseID, ProductID: productID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) ForProduct(_ context.Context, productID int) ([]InventoryBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []InventoryBalance
	for k, b := range s.balances {
		if k.ProductID == productID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out, nil
}

func (s *MemoryStore) ForWarehouse(_ context.Context, warehouseID int) ([]InventoryBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []InventoryBalance
	for k, b := range s.balances {
		if k.WarehouseID == warehouseID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (s *MemoryStore) Adjust(ctx context.Context, m Mutation, meta MutationMeta) (*InventoryBalance, int64, error) {
	s.mu.Lock()
	cur, ok := s.balances[m.Key]
	if !ok {
		cur = InventoryBalance{BalanceKey: m.Key}
	}

	next, applied, err := applyMutation(cur.Quantities, m)
	if err != nil {
		s.mu.Unlock()
		return nil, 0, err
	}

	cur.Quantities = next
	cur.UpdatedAt = meta.At
	s.balances[m.Key] = cur

	s.nextAuditID++
	s.adjustments = append(s.adjustments, AdjustmentRecord{
		ID:             s.nextAuditID,
		WarehouseID:    m.Key.WarehouseID,
		ProductID:      m.Key.ProductID,
		Dimension:      m.Dimension,
		RequestedDelta: m.Delta,
		AppliedDelta:   applied,
		Reason:         m.Reason,
		Actor:          meta.Actor,
		CorrelationID:  meta.CorrelationID,
		CreatedAt:      meta.At,
	})
	s.mu.Unlock()

	publishChange(ctx, s.bus, s.logger, m.Key, meta)
	return &cur, applied, nil
}
