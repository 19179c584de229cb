package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/poiesic/rankmatch/ai"
)

// MockCompleter is a test double for ai.Completer.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete returns Reply.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// Reply is the canned response used when CompleteFunc is nil.
	Reply string

	mu      sync.Mutex
	prompts []string
}

var _ ai.Completer = (*MockCompleter)(nil)

// NewMockCompleter creates a mock completer that always returns reply.
func NewMockCompleter(reply string) *MockCompleter {
	return &MockCompleter{Reply: reply}
}

// Complete records the prompt and returns the configured reply.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	fn := m.CompleteFunc
	reply := m.Reply
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	return reply, nil
}

// Prompts returns a copy of the recorded prompts.
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.prompts)
}

// CallCount returns the number of Complete calls.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Reset clears recorded prompts and injected behavior.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = nil
	m.CompleteFunc = nil
}
