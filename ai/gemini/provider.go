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


package gemini

import (
	"context"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"github.com/poiesic/rankmatch/ai"
	"google.golang.org/api/option"
)

// Provider implements ai.Provider on a single genai client.
type Provider struct {
	backend   backend
	embedder  *EmbeddingProvider
	completer *Completer
	logger    *slog.Logger
}

// NewProvider creates a Gemini-backed provider.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface to enforce abstraction.
func NewProvider(ctx context.Context, config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, err
	}
	return newProvider(&sdkBackend{client: client}, config), nil
}

// newProvider wires services around an already-built backend.
func newProvider(b backend, config *ai.Config) *Provider {
	logger := slog.Default().With("component", "gemini-provider")
	limiter := newLimiter(config.RequestsPerMinute)

	return &Provider{
		backend: b,
		embedder: &EmbeddingProvider{
			backend: b,
			guard:   newGuard("gemini-embed", limiter, config, logger),
			logger:  slog.Default().With("component", "gemini-embedder"),
		},
		completer: &Completer{
			backend: b,
			model:   config.ReasoningModel,
			guard:   newGuard("gemini-generate", limiter, config, logger),
			logger:  slog.Default().With("component", "gemini-completer"),
		},
		logger: logger,
	}
}

// EmbeddingProvider returns the embedding transport.
func (p *Provider) EmbeddingProvider() ai.EmbeddingProvider {
	return p.embedder
}

// Completer returns the reasoning transport.
func (p *Provider) Completer() ai.Completer {
	return p.completer
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	p.logger.Debug("closing Gemini provider")
	return p.backend.close()
}
