package core_test

import (
	"context"
	"testing"
	"time"

	"lpg-console/internal/core"
	"lpg-console/internal/events"
)

func drain(ch <-chan core.StockEvent) []core.StockEvent {
	var out []core.StockEvent
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func countKind(events []core.StockEvent, kind core.StockEventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestNotifier_CrossingEmittedOncePerTransition(t *testing.T) {
	store := seededStore(t, balance(1, 1, 8, 0, 0)) // already low
	notifier := core.NewChangeNotifier(store, nil)
	ch, cancel := notifier.Subscribe()
	defer cancel()
	ctx := context.Background()
	key := core.BalanceKey{WarehouseID: 1, ProductID: 1}

	// First observation: unseen keys start from good, so low is a crossing.
	notifier.Observe(ctx, key)
	events := drain(ch)
	if got := countKind(events, core.EventStockLevelChanged); got != 1 {
		t.Fatalf("first low observation: %d level events, want 1", got)
	}
	if events[len(events)-1].Status != core.StockLow {
		t.Errorf("level event status = %q, want low", events[len(events)-1].Status)
	}

	// Further mutations within low: refresh signal only, no repeat alert.
	store.Seed(balance(1, 1, 5, 0, 0))
	notifier.Observe(ctx, key)
	store.Seed(balance(1, 1, 3, 0, 0))
	notifier.Observe(ctx, key)
	events = drain(ch)
	if got := countKind(events, core.EventDataChanged); got != 2 {
		t.Errorf("refresh events = %d, want 2", got)
	}
	if got := countKind(events, core.EventStockLevelChanged); got != 0 {
		t.Errorf("repeat level events = %d, want 0", got)
	}

	// Dropping to out is a new crossing.
	store.Seed(balance(1, 1, 0, 0, 0))
	notifier.Observe(ctx, key)
	events = drain(ch)
	if got := countKind(events, core.EventStockLevelChanged); got != 1 {
		t.Errorf("out crossing events = %d, want 1", got)
	}

	// Recovery to good emits no level event, but re-entering low does.
	store.Seed(balance(1, 1, 50, 0, 0))
	notifier.Observe(ctx, key)
	if got := countKind(drain(ch), core.EventStockLevelChanged); got != 0 {
		t.Errorf("recovery emitted %d level events, want 0", got)
	}
	store.Seed(balance(1, 1, 4, 0, 0))
	notifier.Observe(ctx, key)
	if got := countKind(drain(ch), core.EventStockLevelChanged); got != 1 {
		t.Errorf("re-entry crossing events = %d, want 1", got)
	}
}

func TestNotifier_GoodBalanceOnlyRefreshes(t *testing.T) {
	store := seededStore(t, balance(1, 1, 100, 0, 0))
	notifier := core.NewChangeNotifier(store, nil)
	ch, cancel := notifier.Subscribe()
	defer cancel()

	notifier.Observe(context.Background(), core.BalanceKey{WarehouseID: 1, ProductID: 1})
	events := drain(ch)
	if got := countKind(events, core.EventDataChanged); got != 1 {
		t.Errorf("refresh events = %d, want 1", got)
	}
	if got := countKind(events, core.EventStockLevelChanged); got != 0 {
		t.Errorf("level events for healthy balance = %d, want 0", got)
	}
}

func TestNotifier_RunConsumesBusEvents(t *testing.T) {
	bus := events.NewMemoryBus()
	store := core.NewMemoryStore(bus, nil)
	store.Seed(balance(1, 1, 100, 0, 0))

	notifier := core.NewChangeNotifier(store, nil)
	ch, cancel := notifier.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() { _ = notifier.Run(ctx, bus) }()

	// Give Run a moment to establish its subscription before publishing.
	time.Sleep(20 * time.Millisecond)

	svc := core.NewAdjustmentService(store, nil)
	if _, err := svc.AdjustStock(ctx, admin, 1, 1, core.DimensionFull, -95, "bulk delivery"); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}

	deadline := time.After(2 * time.Second)
	var got []core.StockEvent
	for len(got) < 2 {
		select {
		case ev := <-ch:
			got = append(got, ev)
		case <-deadline:
			t.Fatalf("timed out; received %+v", got)
		}
	}
	if countKind(got, core.EventDataChanged) != 1 || countKind(got, core.EventStockLevelChanged) != 1 {
		t.Errorf("expected one refresh and one crossing, got %+v", got)
	}
}

func TestNotifier_CancelledSubscriberStopsReceiving(t *testing.T) {
	store := seededStore(t, balance(1, 1, 100, 0, 0))
	notifier := core.NewChangeNotifier(store, nil)
	ch, cancel := notifier.Subscribe()
	cancel()

	notifier.Observe(context.Background(), core.BalanceKey{WarehouseID: 1, ProductID: 1})
	if _, open := <-ch; open {
		t.Error("channel should be closed after cancel")
	}
}
