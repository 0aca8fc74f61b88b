// Package inmemory provides a process-local storage driver.
package inmemory

import (
	"context"
	"sync"

	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/storage"
)

// Driver implements storage.Driver using an in-memory slice.
type Driver struct {
	// mu guards exchanges and nextID
	mu sync.RWMutex

	// exchanges are kept in insertion order
	exchanges []*llm.Exchange
	nextID    int64
	closed    bool
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver creates a new in-memory store.
func NewDriver() *Driver {
	return &Driver{nextID: 1}
}

// Insert appends a copy of ex and assigns it an ID.
func (s *Driver) Insert(_ context.Context, ex *llm.Exchange) error {
	if err := storage.Prepare(ex); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}

	ex.ID = s.nextID
	s.nextID++

	stored := *ex
	s.exchanges = append(s.exchanges, &stored)
	return nil
}

// List returns copies of the newest exchanges first.
func (s *Driver) List(_ context.Context, opts storage.ListOptions) ([]*llm.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}

	limit := opts.EffectiveLimit()
	result := make([]*llm.Exchange, 0, min(limit, len(s.exchanges)))
	for i := len(s.exchanges) - 1; i >= 0 && len(result) < limit; i-- {
		ex := s.exchanges[i]
		if opts.SessionID != "" && ex.SessionID != opts.SessionID {
			continue
		}
		cp := *ex
		result = append(result, &cp)
	}

	return result, nil
}

// Count returns the number of stored exchanges.
func (s *Driver) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exchanges)
}

// Close marks the store closed. Stored exchanges are dropped.
func (s *Driver) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.exchanges = nil
	return nil
}
