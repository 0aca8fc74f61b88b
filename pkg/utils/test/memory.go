package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/memory"
)

// ErrMockMemory is returned by MockMemoryDriver when a failure is requested.
var ErrMockMemory = errors.New("mock memory failure")

// MockMemoryDriver is a test memory driver that records calls and returns
// configurable results.
type MockMemoryDriver struct {
	mu sync.Mutex

	// Appended accumulates all exchanges passed to Append, per session.
	Appended map[string][]llm.Exchange

	// RecentResults is returned by Recent for any session when non-nil.
	RecentResults []llm.Exchange

	// FailAppend causes Append to return an error.
	FailAppend bool

	// FailRecent causes Recent to return an error.
	FailRecent bool
}

var _ memory.Driver = (*MockMemoryDriver)(nil)

// NewMockMemoryDriver creates a new mock memory driver.
func NewMockMemoryDriver() *MockMemoryDriver {
	return &MockMemoryDriver{
		Appended: make(map[string][]llm.Exchange),
	}
}

func (m *MockMemoryDriver) Append(_ context.Context, sessionID string, ex llm.Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAppend {
		return ErrMockMemory
	}
	m.Appended[sessionID] = append(m.Appended[sessionID], ex)
	return nil
}

func (m *MockMemoryDriver) Recent(_ context.Context, sessionID string) ([]llm.Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRecent {
		return nil, ErrMockMemory
	}
	if m.RecentResults != nil {
		return m.RecentResults, nil
	}
	return append([]llm.Exchange(nil), m.Appended[sessionID]...), nil
}

func (m *MockMemoryDriver) Close() error {
	return nil
}
