// Package events provides the publish/subscribe channel the inventory core
// rides on for change notification. Topics are keyed by entity (one topic per
// table); delivery is at-least-once and never blocks the publisher.
// Subscribers must tolerate duplicate and out-of-order messages and re-derive
// state from the store rather than trusting payload contents.
package events

import "context"

// Message is one published payload on a topic.
type Message struct {
	Topic   string
	Payload []byte
}

// Bus is the transport abstraction. Implementations: MemoryBus (in-process,
// tests and single-node deployments) and RedisBus (multi-node fan-out).
type Bus interface {
	// Publish delivers payload to all current subscribers of topic.
	// It must return promptly; delivery happens asynchronously.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe returns a channel of messages for topic and a cancel
	// function that releases the subscription and closes the channel.
	Subscribe(ctx context.Context, topic string) (<-chan Message, func(), error)
}
