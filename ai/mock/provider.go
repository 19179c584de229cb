// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/poiesic/rankmatch/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock embedding and completion services.
type MockProvider struct {
	embedder  *MockEmbeddingProvider
	completer *MockCompleter
	closed    bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockEmbeddingProvider()/GetMockCompleter() to access concrete types for test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		embedder:  NewMockEmbeddingProvider(),
		completer: NewMockCompleter(`{"is_match": false, "reason": "No evidence.", "confidence": 0.1}`),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(embedder *MockEmbeddingProvider, completer *MockCompleter) *MockProvider {
	return &MockProvider{
		embedder:  embedder,
		completer: completer,
	}
}

// EmbeddingProvider returns the mock embedding provider.
func (p *MockProvider) EmbeddingProvider() ai.EmbeddingProvider {
	return p.embedder
}

// Completer returns the mock completer.
func (p *MockProvider) Completer() ai.Completer {
	return p.completer
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockEmbeddingProvider returns the underlying mock for test assertions.
func (p *MockProvider) GetMockEmbeddingProvider() *MockEmbeddingProvider {
	return p.embedder
}

// GetMockCompleter returns the underlying mock for test assertions.
func (p *MockProvider) GetMockCompleter() *MockCompleter {
	return p.completer
}
