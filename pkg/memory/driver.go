// Package memory keeps the bounded conversation window replayed to the model
// on every turn.
//
// Windows are keyed by session id so concurrent conversations do not
// interleave. The empty session id maps to DefaultSession, a single shared
// window.
//
// Drivers are pluggable via configuration:
//
//	[memory]
//	provider = "local"   # or "redis"
//	window = 5
package memory

import (
	"context"
	"strings"

	"github.com/farmergpt/farmergpt/pkg/llm"
)

// DefaultWindow is the number of exchanges kept per session.
const DefaultWindow = 5

// DefaultSession is the key used when a caller supplies no session id.
const DefaultSession = "default"

// Driver stores the last K exchanges per session.
type Driver interface {
	// Append adds ex to the session's window, evicting the oldest
	// exchanges beyond the window size. Appends to one session are
	// serialized.
	Append(ctx context.Context, sessionID string, ex llm.Exchange) error

	// Recent returns the session's window, oldest first. An unknown
	// session yields an empty slice.
	Recent(ctx context.Context, sessionID string) ([]llm.Exchange, error)

	// Close releases driver resources.
	Close() error
}

// SessionKey normalizes a caller-supplied session id.
func SessionKey(sessionID string) string {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return DefaultSession
	}
	return id
}
