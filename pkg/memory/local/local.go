// Package local provides an in-process implementation of memory.Driver.
//
// Each session owns a memory.Window. Sessions themselves are held in an LRU
// so an unbounded stream of session ids cannot grow the process without
// limit; the least recently used conversation is forgotten first.
package local

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/memory"
)

// DefaultMaxSessions bounds the number of live conversation windows.
const DefaultMaxSessions = 4096

// Config holds configuration for the local memory driver.
type Config struct {
	// Window is the number of exchanges kept per session.
	Window int

	// MaxSessions is the number of sessions retained before eviction.
	MaxSessions int
}

// Driver implements memory.Driver using in-process data structures.
type Driver struct {
	config Config

	// mu guards session creation and the closed flag; appends within a
	// session are serialized by the window itself.
	mu       sync.Mutex
	closed   bool
	sessions *lru.Cache[string, *memory.Window]
}

// NewDriver creates a local memory driver.
func NewDriver(config Config) (*Driver, error) {
	if config.Window <= 0 {
		config.Window = memory.DefaultWindow
	}
	if config.MaxSessions <= 0 {
		config.MaxSessions = DefaultMaxSessions
	}

	sessions, err := lru.New[string, *memory.Window](config.MaxSessions)
	if err != nil {
		return nil, err
	}

	return &Driver{
		config:   config,
		sessions: sessions,
	}, nil
}

// Append pushes ex onto the session's window.
func (d *Driver) Append(_ context.Context, sessionID string, ex llm.Exchange) error {
	w, err := d.window(memory.SessionKey(sessionID), true)
	if err != nil {
		return err
	}
	w.Push(ex)
	return nil
}

// Recent returns a copy of the session's window.
func (d *Driver) Recent(_ context.Context, sessionID string) ([]llm.Exchange, error) {
	w, err := d.window(memory.SessionKey(sessionID), false)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return []llm.Exchange{}, nil
	}
	return w.Snapshot(), nil
}

// Sessions returns the number of live sessions.
func (d *Driver) Sessions() int {
	return d.sessions.Len()
}

// Close drops every session.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.sessions.Purge()
	return nil
}

func (d *Driver) window(key string, create bool) (*memory.Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, memory.ErrClosed
	}

	if w, ok := d.sessions.Get(key); ok {
		return w, nil
	}
	if !create {
		return nil, nil
	}

	w := memory.NewWindow(d.config.Window)
	d.sessions.Add(key, w)
	return w, nil
}
