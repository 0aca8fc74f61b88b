// Package redis provides a memory.Driver backed by Redis lists, so several
// advisor processes can share conversation windows.
//
// Each session is a list at "<prefix><session>" holding JSON-encoded
// exchanges, oldest at the head. Appends run RPUSH, LTRIM and EXPIRE in one
// MULTI/EXEC transaction, which keeps the window bound atomic per key.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/memory"
)

// DefaultKeyPrefix namespaces session lists.
const DefaultKeyPrefix = "farmergpt:memory:"

// Config holds configuration for the redis memory driver.
type Config struct {
	// URL is a redis:// connection URL. Ignored when Client is set.
	URL string

	// Client overrides the connection built from URL.
	Client goredis.UniversalClient

	// Window is the number of exchanges kept per session.
	Window int

	// TTL expires idle sessions. Zero keeps them forever.
	TTL time.Duration

	// KeyPrefix defaults to DefaultKeyPrefix.
	KeyPrefix string
}

// Driver implements memory.Driver on Redis.
type Driver struct {
	client goredis.UniversalClient
	window int
	ttl    time.Duration
	prefix string
	owned  bool
}

// NewDriver connects to Redis and verifies the connection.
func NewDriver(ctx context.Context, c Config) (*Driver, error) {
	d := &Driver{
		client: c.Client,
		window: c.Window,
		ttl:    c.TTL,
		prefix: c.KeyPrefix,
	}
	if d.window <= 0 {
		d.window = memory.DefaultWindow
	}
	if d.prefix == "" {
		d.prefix = DefaultKeyPrefix
	}

	if d.client == nil {
		opts, err := goredis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		d.client = goredis.NewClient(opts)
		d.owned = true
	}

	if err := d.client.Ping(ctx).Err(); err != nil {
		if d.owned {
			_ = d.client.Close()
		}
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return d, nil
}

func (d *Driver) key(sessionID string) string {
	return d.prefix + memory.SessionKey(sessionID)
}

// Append pushes ex and trims the list to the window.
func (d *Driver) Append(ctx context.Context, sessionID string, ex llm.Exchange) error {
	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("encoding exchange: %w", err)
	}

	key := d.key(sessionID)
	_, err = d.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.LTrim(ctx, key, int64(-d.window), -1)
		if d.ttl > 0 {
			pipe.Expire(ctx, key, d.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("appending to session %s: %w", key, err)
	}

	return nil
}

// Recent reads the session's window, oldest first.
func (d *Driver) Recent(ctx context.Context, sessionID string) ([]llm.Exchange, error) {
	key := d.key(sessionID)
	raw, err := d.client.LRange(ctx, key, int64(-d.window), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", key, err)
	}

	out := make([]llm.Exchange, 0, len(raw))
	for _, item := range raw {
		var ex llm.Exchange
		if err := json.Unmarshal([]byte(item), &ex); err != nil {
			return nil, fmt.Errorf("decoding exchange in %s: %w", key, err)
		}
		out = append(out, ex)
	}

	return out, nil
}

// Close closes the connection if the driver created it.
func (d *Driver) Close() error {
	if !d.owned {
		return nil
	}
	return d.client.Close()
}
