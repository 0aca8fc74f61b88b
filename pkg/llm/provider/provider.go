// Package provider defines the model client contract and constructs the
// concrete chat-completion clients.
package provider

import (
	"context"
	"time"

	"github.com/farmergpt/farmergpt/pkg/llm"
)

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 30 * time.Second

// Provider performs a chat completion against a hosted model endpoint.
//
// Complete never returns a Go error: transport failures, timeouts, non-2xx
// statuses and unusable bodies are all reported through the Result's Failure
// so callers can degrade to an in-band message.
type Provider interface {
	// Name returns the canonical provider name (e.g. "openai", "ollama").
	Name() string

	// Complete sends req and extracts the first completion's text, trimmed.
	Complete(ctx context.Context, req *llm.ChatRequest) llm.Result
}

// Config holds the connection settings shared by every provider.
type Config struct {
	// Endpoint is the full URL of the chat-completions route.
	Endpoint string

	// APIKey is sent as a bearer credential when non-empty.
	APIKey string

	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// EffectiveTimeout returns the configured timeout or DefaultTimeout.
func (c Config) EffectiveTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
