package ai

import "context"

// Embedder turns texts into vectors. A nil result with a nil error means
// embeddings are currently unavailable; callers switch to a degraded path.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingProvider is the raw transport to an embedding service.
// Unlike Embedder it reports every failure as an error and performs no
// model selection of its own.
type EmbeddingProvider interface {
	// Embed embeds a batch of texts with the model and API version named
	// in the request.
	Embed(ctx context.Context, req EmbedRequest) ([][]float32, error)

	// ListEmbeddingModels returns the short names of the models that
	// support embedding. Providers without discovery return an empty list.
	ListEmbeddingModels(ctx context.Context) ([]string, error)
}

// Completer sends a single prompt to a reasoning model and returns its raw
// text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
type Provider interface {
	// EmbeddingProvider returns the embedding transport.
	EmbeddingProvider() EmbeddingProvider

	// Completer returns the reasoning transport.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
