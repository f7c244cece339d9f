package events

import (
	"context"
	"log"
	"sync"
)

// FallbackPublisher drops events. It is used when no broker is configured or
// RabbitMQ is unreachable at startup.
type FallbackPublisher struct{}

func (FallbackPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	log.Printf("[WARN] events: publish skipped (no broker) routing_key=%s", routingKey)
	return nil
}

func (FallbackPublisher) Close() {}

// Message is one event captured by a MemoryPublisher.
type Message struct {
	RoutingKey string
	Body       any
}

// MemoryPublisher keeps published events in memory.
type MemoryPublisher struct {
	mu       sync.Mutex
	messages []Message
}

func (m *MemoryPublisher) Publish(_ context.Context, routingKey string, body any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{RoutingKey: routingKey, Body: body})
	return nil
}

func (m *MemoryPublisher) Close() {}

// Messages returns a copy of everything published so far.
func (m *MemoryPublisher) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

// Keys returns the routing keys published so far, in order.
func (m *MemoryPublisher) Keys() []string {
	msgs := m.Messages()
	keys := make([]string, len(msgs))
	for i, msg := range msgs {
		keys[i] = msg.RoutingKey
	}
	return keys
}

// Connect returns an AMQP publisher for url, or a FallbackPublisher when url
// is empty or the broker cannot be reached.
func Connect(url string) Publisher {
	if url == "" {
		return FallbackPublisher{}
	}
	p, err := NewAMQPPublisher(url)
	if err != nil {
		log.Printf("[WARN] events: rabbitmq unavailable, events disabled: %v", err)
		return FallbackPublisher{}
	}
	log.Printf("[INFO] events: publishing to exchange %s", Exchange)
	return p
}
