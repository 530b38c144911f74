package mqtt

import "sync"

// MockPublisher records published events for tests.
type MockPublisher struct {
	mu       sync.Mutex
	Messages map[string][]any
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Messages: make(map[string][]any)}
}

// PublishEvent stores the payload under its topic.
func (m *MockPublisher) PublishEvent(topic string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages[topic] = append(m.Messages[topic], payload)
	return nil
}

// Close is a no-op.
func (m *MockPublisher) Close() {}

// Count returns the number of payloads published on the topic.
func (m *MockPublisher) Count(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages[topic])
}
