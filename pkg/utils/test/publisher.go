package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/farmergpt/farmergpt/pkg/eventstream"
)

// ErrMockPublish is returned by MockPublisher when FailPublish is set.
var ErrMockPublish = errors.New("mock publish failure")

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ExchangeRecordedEvent

	FailPublish bool
}

var _ eventstream.Publisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishExchange(_ context.Context, event *eventstream.ExchangeRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilExchangeEvent
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPublish {
		return ErrMockPublish
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// Events returns the published events in order.
func (m *MockPublisher) Events() []*eventstream.ExchangeRecordedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.ExchangeRecordedEvent(nil), m.events...)
}
