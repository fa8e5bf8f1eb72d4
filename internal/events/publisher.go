package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/inventory-core/internal/infrastructure/kafka"
)

// Publisher emits domain events to the bus. Publication happens after the
// database write commits; a failed publish is logged and returned to the
// caller but never rolls back committed state.
type Publisher interface {
	Publish(ctx context.Context, key, eventType string, payload any) error
}

// BusPublisher publishes enveloped events to a Kafka topic.
type BusPublisher struct {
	producer *kafka.Producer
}

func NewBusPublisher(producer *kafka.Producer) *BusPublisher {
	return &BusPublisher{producer: producer}
}

func (p *BusPublisher) Publish(ctx context.Context, key, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	env := Envelope{Type: eventType, Data: data}
	if err := p.producer.Publish(ctx, key, env); err != nil {
		log.Printf("[Publisher] Failed to publish %s for %s: %v", eventType, key, err)
		return err
	}
	return nil
}
