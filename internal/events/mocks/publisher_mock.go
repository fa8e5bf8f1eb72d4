package mocks

import (
	"context"
	"sync"
)

// MockPublisher records published events for assertions.
type MockPublisher struct {
	mu sync.Mutex

	PublishCalls []PublishCall
	PublishErr   error
}

// PublishCall records parameters passed to Publish
type PublishCall struct {
	Key       string
	EventType string
	Payload   any
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{PublishCalls: make([]PublishCall, 0)}
}

func (m *MockPublisher) Publish(ctx context.Context, key, eventType string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCalls = append(m.PublishCalls, PublishCall{
		Key:       key,
		EventType: eventType,
		Payload:   payload,
	})
	return m.PublishErr
}

// ByType returns the recorded calls with the given event type.
func (m *MockPublisher) ByType(eventType string) []PublishCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []PublishCall
	for _, c := range m.PublishCalls {
		if c.EventType == eventType {
			out = append(out, c)
		}
	}
	return out
}
