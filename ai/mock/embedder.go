package mock

import (
	"context"
	"hash/fnv"
	"math"
	"slices"
	"sync"

	"github.com/poiesic/rankmatch/ai"
)

// DefaultDimension is the vector size produced by the default mock behavior.
const DefaultDimension = 8

// MockEmbeddingProvider is a test double for ai.EmbeddingProvider.
type MockEmbeddingProvider struct {
	// EmbedFunc is called by Embed if set.
	// If nil, uses default deterministic behavior.
	EmbedFunc func(ctx context.Context, req ai.EmbedRequest) ([][]float32, error)

	// ListModelsFunc is called by ListEmbeddingModels if set.
	// If nil, no models are discovered.
	ListModelsFunc func(ctx context.Context) ([]string, error)

	mu        sync.Mutex
	requests  []ai.EmbedRequest
	listCalls int
}

var _ ai.EmbeddingProvider = (*MockEmbeddingProvider)(nil)

// NewMockEmbeddingProvider creates a mock provider with default deterministic behavior.
func NewMockEmbeddingProvider() *MockEmbeddingProvider {
	return &MockEmbeddingProvider{}
}

// Embed records the request and returns deterministic vectors.
func (m *MockEmbeddingProvider) Embed(ctx context.Context, req ai.EmbedRequest) ([][]float32, error) {
	m.mu.Lock()
	req.Texts = slices.Clone(req.Texts)
	m.requests = append(m.requests, req)
	fn := m.EmbedFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return DeterministicVectors(req.Texts, DefaultDimension), nil
}

// ListEmbeddingModels returns discovered models.
func (m *MockEmbeddingProvider) ListEmbeddingModels(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	m.listCalls++
	fn := m.ListModelsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}

// Requests returns a copy of the recorded embed requests.
func (m *MockEmbeddingProvider) Requests() []ai.EmbedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.requests)
}

// Attempts returns "model@version" for every recorded embed request.
func (m *MockEmbeddingProvider) Attempts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.requests))
	for i, r := range m.requests {
		out[i] = r.Model + "@" + r.APIVersion
	}
	return out
}

// CallCount returns the number of Embed calls.
func (m *MockEmbeddingProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// ListCallCount returns the number of ListEmbeddingModels calls.
func (m *MockEmbeddingProvider) ListCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// Reset clears recorded calls and injected behavior.
func (m *MockEmbeddingProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.listCalls = 0
	m.EmbedFunc = nil
	m.ListModelsFunc = nil
}

// MockEmbedder is a test double for ai.Embedder, used where a test wants
// to bypass model resolution entirely.
type MockEmbedder struct {
	// EmbedFunc is called by Embed if set.
	EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)

	mu    sync.Mutex
	calls [][]string
}

var _ ai.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// Unavailable returns a mock embedder that always reports embeddings as unavailable.
func Unavailable() *MockEmbedder {
	return &MockEmbedder{
		EmbedFunc: func(context.Context, []string) ([][]float32, error) {
			return nil, nil
		},
	}
}

// Embed records the texts and returns deterministic vectors.
func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, slices.Clone(texts))
	fn := m.EmbedFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, texts)
	}
	return DeterministicVectors(texts, DefaultDimension), nil
}

// Calls returns a copy of the recorded text batches.
func (m *MockEmbedder) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// CallCount returns the number of Embed calls.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// DeterministicVectors returns one deterministic vector per text.
func DeterministicVectors(texts []string, dim int) [][]float32 {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = DeterministicVector(text, dim)
	}
	return out
}

// DeterministicVector creates a unit-length vector from text.
// It uses an FNV hash to ensure the same text always produces the same vector.
func DeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}
	return vector
}
