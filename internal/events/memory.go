package events

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus. Each subscriber owns an unbounded queue
// drained by its own goroutine, so Publish never blocks on a slow consumer.
type MemoryBus struct {
	mu     sync.Mutex
	subs   map[string]map[int]*memorySub
	nextID int
}

type memorySub struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Message
	closed bool
	done   chan struct{}
	ch     chan Message
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[int]*memorySub)}
}

func (b *MemoryBus) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	targets := make([]*memorySub, 0, len(b.subs[topic]))
	for _, s := range b.subs[topic] {
		targets = append(targets, s)
	}
	b.mu.Unlock()

	msg := Message{Topic: topic, Payload: payload}
	for _, s := range targets {
		s.mu.Lock()
		if !s.closed {
			s.queue = append(s.queue, msg)
			s.cond.Signal()
		}
		s.mu.Unlock()
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, topic string) (<-chan Message, func(), error) {
	s := &memorySub{ch: make(chan Message), done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]*memorySub)
	}
	id := b.nextID
	b.nextID++
	b.subs[topic][id] = s
	b.mu.Unlock()

	go s.pump()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs[topic], id)
		b.mu.Unlock()

		s.mu.Lock()
		if !s.closed {
			s.closed = true
			close(s.done)
			s.cond.Signal()
		}
		s.mu.Unlock()
	}
	return s.ch, cancel, nil
}

// pump moves messages from the queue to the channel until cancelled,
// then closes the channel. It is the channel's only sender.
func (s *memorySub) pump() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 && s.closed {
			s.mu.Unlock()
			close(s.ch)
			return
		}
		msg := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.ch <- msg:
		case <-s.done:
			// Subscriber is gone; drop the remainder.
			close(s.ch)
			return
		}
	}
}
