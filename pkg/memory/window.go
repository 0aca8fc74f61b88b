package memory

import (
	"sync"

	"github.com/farmergpt/farmergpt/pkg/llm"
)

// Window is a bounded FIFO of exchanges. It is safe for concurrent use.
type Window struct {
	mu    sync.Mutex
	size  int
	items []llm.Exchange
}

// NewWindow returns an empty window holding at most size exchanges.
// A non-positive size means DefaultWindow.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindow
	}
	return &Window{
		size:  size,
		items: make([]llm.Exchange, 0, size+1),
	}
}

// Push appends ex and evicts from the front until len <= size.
func (w *Window) Push(ex llm.Exchange) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = append(w.items, ex)
	if over := len(w.items) - w.size; over > 0 {
		// shift down in place so the backing array stays at size+1
		n := copy(w.items, w.items[over:])
		clear(w.items[n:])
		w.items = w.items[:n]
	}
}

// Snapshot returns a copy of the window, oldest first.
func (w *Window) Snapshot() []llm.Exchange {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]llm.Exchange, len(w.items))
	copy(out, w.items)
	return out
}

// Len returns the number of exchanges held.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// Size returns the window capacity.
func (w *Window) Size() int {
	return w.size
}
