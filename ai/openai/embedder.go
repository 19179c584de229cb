package openai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/rankmatch/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// EmbeddingProvider implements ai.EmbeddingProvider using OpenAI-compatible
// embedding APIs. One langchaingo embedder is built per requested model.
type EmbeddingProvider struct {
	config *ai.Config

	mu        sync.Mutex
	embedders map[string]embeddings.Embedder

	logger *slog.Logger
}

var _ ai.EmbeddingProvider = (*EmbeddingProvider)(nil)

// newEmbeddingProvider is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbeddingProvider(config *ai.Config) (*EmbeddingProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &EmbeddingProvider{
		config:    config,
		embedders: make(map[string]embeddings.Embedder),
		logger:    slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbeddingProvider creates a new embedding transport using the provided configuration.
//
// Returns ai.EmbeddingProvider interface to enforce abstraction.
func NewEmbeddingProvider(config *ai.Config) (ai.EmbeddingProvider, error) {
	return newEmbeddingProvider(config)
}

// embedderFor returns the cached embedder for model, creating it on first use.
func (e *EmbeddingProvider) embedderFor(model string) (embeddings.Embedder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if embedder, ok := e.embedders[model]; ok {
		return embedder, nil
	}

	client, err := openai.New(
		openai.WithBaseURL(e.config.EmbeddingHost),
		openai.WithToken(token(e.config)),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}
	e.embedders[model] = embedder
	return embedder, nil
}

// Embed generates vector embeddings for a batch of texts.
// OpenAI-compatible servers have a single API surface, so APIVersion is ignored.
func (e *EmbeddingProvider) Embed(ctx context.Context, req ai.EmbedRequest) ([][]float32, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("embedding %w", ai.ErrModelRequired)
	}
	if len(req.Texts) == 0 {
		return [][]float32{}, nil
	}

	embedder, err := e.embedderFor(req.Model)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("generating embeddings for texts", "model", req.Model, "count", len(req.Texts))
	vectors, err := embedder.EmbedDocuments(ctx, req.Texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "model", req.Model, "count", len(req.Texts), "err", err)
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, ai.ErrEmptyResponse
	}
	return vectors, nil
}

// ListEmbeddingModels reports no models; OpenAI-compatible servers do not
// advertise which models support embedding.
func (e *EmbeddingProvider) ListEmbeddingModels(ctx context.Context) ([]string, error) {
	e.logger.Debug("model discovery not supported by OpenAI-compatible provider")
	return nil, nil
}
