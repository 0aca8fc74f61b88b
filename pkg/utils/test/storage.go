package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/storage"
)

// ErrMockStorage is returned by MockStorageDriver when FailInsert is set.
var ErrMockStorage = errors.New("mock storage failure")

// MockStorageDriver records inserts and can fail or block on demand.
type MockStorageDriver struct {
	mu       sync.Mutex
	inserted []llm.Exchange

	// FailInsert causes Insert to return ErrMockStorage.
	FailInsert bool

	// Block, when non-nil, makes Insert wait until it is closed or the
	// context ends.
	Block chan struct{}
}

var _ storage.Driver = (*MockStorageDriver)(nil)

func NewMockStorageDriver() *MockStorageDriver {
	return &MockStorageDriver{}
}

func (m *MockStorageDriver) Insert(ctx context.Context, ex *llm.Exchange) error {
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailInsert {
		return ErrMockStorage
	}
	ex.ID = int64(len(m.inserted) + 1)
	m.inserted = append(m.inserted, *ex)
	return nil
}

func (m *MockStorageDriver) List(_ context.Context, opts storage.ListOptions) ([]*llm.Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*llm.Exchange
	for i := len(m.inserted) - 1; i >= 0 && len(out) < opts.EffectiveLimit(); i-- {
		ex := m.inserted[i]
		out = append(out, &ex)
	}
	return out, nil
}

func (m *MockStorageDriver) Close() error {
	return nil
}

// Inserted returns a copy of every stored exchange in insertion order.
func (m *MockStorageDriver) Inserted() []llm.Exchange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Exchange(nil), m.inserted...)
}
