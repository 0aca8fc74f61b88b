package testutils

import (
	"context"
	"sync"

	"github.com/farmergpt/farmergpt/pkg/llm"
)

// MockProvider is a test model provider that records requests and replies
// with a fixed result.
type MockProvider struct {
	mu sync.Mutex

	// Result is returned from every Complete call.
	Result llm.Result

	// PanicWith makes Complete panic with the given value when non-nil.
	PanicWith any

	// Requests accumulates every request seen.
	Requests []*llm.ChatRequest
}

// NewMockProvider returns a provider that answers with text.
func NewMockProvider(text string) *MockProvider {
	return &MockProvider{Result: llm.Succeeded(text)}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Complete(_ context.Context, req *llm.ChatRequest) llm.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.PanicWith != nil {
		panic(m.PanicWith)
	}
	return m.Result
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return nil
	}
	return m.Requests[len(m.Requests)-1]
}

// Calls returns the number of Complete calls.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
