// Package storage persists completed exchanges for later review.
package storage

import (
	"context"
	"time"

	"github.com/farmergpt/farmergpt/pkg/llm"
)

const (
	// Table is the name of the exchange log table in every SQL backend.
	Table = "conversations"

	// DefaultListLimit is used when ListOptions.Limit is unset.
	DefaultListLimit = 50

	// MaxListLimit caps a single List call.
	MaxListLimit = 500
)

// Driver defines the interface for persisting and retrieving exchanges in a
// storage backend. Insert is only ever called from the persistence worker
// pool, never from the request path.
type Driver interface {
	// Insert appends one exchange. Drivers assign ex.ID when the backend
	// reports one and stamp ex.CreatedAt when it is zero.
	Insert(ctx context.Context, ex *llm.Exchange) error

	// List returns the most recent exchanges, newest first.
	List(ctx context.Context, opts ListOptions) ([]*llm.Exchange, error)

	// Close closes the store and releases any resources.
	Close() error
}

// ListOptions filters a List call.
type ListOptions struct {
	// Limit bounds the number of returned exchanges. Zero means
	// DefaultListLimit; values above MaxListLimit are clamped.
	Limit int

	// SessionID restricts results to one conversation when set.
	SessionID string
}

// EffectiveLimit resolves Limit against the defaults.
func (o ListOptions) EffectiveLimit() int {
	switch {
	case o.Limit <= 0:
		return DefaultListLimit
	case o.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return o.Limit
	}
}

// Prepare validates ex and stamps CreatedAt. Drivers call it first thing in
// Insert.
func Prepare(ex *llm.Exchange) error {
	if ex == nil {
		return ErrNilExchange
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}
	return nil
}
