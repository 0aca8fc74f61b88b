package testutils

import (
	"context"
	"sync"

	"github.com/farmergpt/farmergpt/pkg/llm"
)

// MockTranscriber returns a fixed result and records the paths it was given.
type MockTranscriber struct {
	mu sync.Mutex

	Result llm.Result
	Paths  []string
}

// NewMockTranscriber returns a transcriber that yields text.
func NewMockTranscriber(text string) *MockTranscriber {
	return &MockTranscriber{Result: llm.Succeeded(text)}
}

func (m *MockTranscriber) Transcribe(_ context.Context, audioPath string) llm.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Paths = append(m.Paths, audioPath)
	return m.Result
}
