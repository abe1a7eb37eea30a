package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"lpg-console/internal/events"
)

// StockEventKind discriminates notifier fan-out events.
type StockEventKind string

const (
	// EventDataChanged is the generic "re-fetch your data" signal emitted on
	// every observed balance mutation.
	EventDataChanged StockEventKind = "data_changed"
	// EventStockLevelChanged is emitted once per crossing into low or out,
	// not once per mutation; it drives alerting.
	EventStockLevelChanged StockEventKind = "stock_level_changed"
)

// StockEvent is what ChangeNotifier delivers to its subscribers.
type StockEvent struct {
	Kind        StockEventKind `json:"kind"`
	WarehouseID int            `json:"warehouse_id"`
	ProductID   int            `json:"product_id"`
	Status      StockStatus    `json:"status,omitempty"`
}

// ChangeNotifier observes balance mutations from any origin via the change
// stream and fans out refresh signals and stock-level crossings to its
// subscribers. It never trusts event payloads beyond the key: the balance is
// re-read from the store, so duplicate or out-of-order deliveries are
// harmless.
type ChangeNotifier struct {
	store  BalanceStore
	logger *slog.Logger

	mu     sync.Mutex
	last   map[BalanceKey]StockStatus
	subs   map[int]chan StockEvent
	nextID int
}

// subscriberBuffer bounds each subscriber channel. Delivery must never block
// a mutation's change-stream consumption; an overflowing subscriber loses
// events and recovers by re-deriving state from the store.
const subscriberBuffer = 64

func NewChangeNotifier(store BalanceStore, logger *slog.Logger) *ChangeNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeNotifier{
		store:  store,
		logger: logger,
		last:   make(map[BalanceKey]StockStatus),
		subs:   make(map[int]chan StockEvent),
	}
}

// Subscribe registers a fan-out channel. The cancel function releases it;
// the channel is closed afterwards.
func (n *ChangeNotifier) Subscribe() (<-chan StockEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan StockEvent, subscriberBuffer)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if c, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Run consumes the balance change stream until ctx is cancelled.
func (n *ChangeNotifier) Run(ctx context.Context, bus events.Bus) error {
	msgs, cancel, err := bus.Subscribe(ctx, TopicInventoryBalances)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var change BalanceChange
			if err := json.Unmarshal(msg.Payload, &change); err != nil {
				n.logger.Warn("malformed balance change event", "error", err)
				continue
			}
			n.Observe(ctx, BalanceKey{WarehouseID: change.WarehouseID, ProductID: change.ProductID})
		}
	}
}

// Observe re-reads the balance for key, re-classifies it, and fans out.
// Exposed so writes and change-stream deliveries share one code path.
func (n *ChangeNotifier) Observe(ctx context.Context, key BalanceKey) {
	bal, err := n.store.Get(ctx, key.WarehouseID, key.ProductID)
	if err != nil {
		n.logger.Warn("could not re-read balance for notification",
			"warehouse_id", key.WarehouseID, "product_id", key.ProductID, "error", err)
		return
	}
	status := Classify(bal.Quantities)

	n.mu.Lock()
	prev, seen := n.last[key]
	if !seen {
		prev = StockGood
	}
	n.last[key] = status
	crossed := status != prev && (status == StockLow || status == StockOut)

	n.deliverLocked(StockEvent{
		Kind:        EventDataChanged,
		WarehouseID: key.WarehouseID,
		ProductID:   key.ProductID,
	})
	if crossed {
		n.deliverLocked(StockEvent{
			Kind:        EventStockLevelChanged,
			WarehouseID: key.WarehouseID,
			ProductID:   key.ProductID,
			Status:      status,
		})
	}
	n.mu.Unlock()

	if crossed {
		n.logger.Info("stock level crossing",
			"warehouse_id", key.WarehouseID, "product_id", key.ProductID, "status", status)
	}
}

func (n *ChangeNotifier) deliverLocked(ev StockEvent) {
	for id, ch := range n.subs {
		select {
		case ch <- ev:
		default:
			n.logger.Warn("notifier subscriber lagging, event dropped", "subscriber", id, "kind", ev.Kind)
		}
	}
}
