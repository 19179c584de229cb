package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/rankmatch/ai"
	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/storage"
)

// Defaults for Retriever tunables.
const (
	DefaultMinSimilarity   = 0.25
	DefaultSubQueryTopK    = 60
	DefaultSubQueryWorkers = 4
)

// Retriever searches the vector store for query candidates, falling back to
// keyword retrieval when embeddings are unavailable.
type Retriever struct {
	vectors       storage.VectorStore
	embedder      ai.Embedder
	fallback      *Fallback
	minSimilarity float32
	subQueryTopK  int
	workers       int
	pool          *ants.Pool
	logger        *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithMinSimilarity sets the score below which vector matches are dropped.
func WithMinSimilarity(score float32) Option {
	return func(r *Retriever) error {
		r.minSimilarity = score
		return nil
	}
}

// WithSubQueryTopK sets how many matches each sub-query asks for.
func WithSubQueryTopK(k int) Option {
	return func(r *Retriever) error {
		if k <= 0 {
			return fmt.Errorf("sub-query top k must be positive, got %d", k)
		}
		r.subQueryTopK = k
		return nil
	}
}

// WithSubQueryWorkers sets the size of the sub-query worker pool.
func WithSubQueryWorkers(n int) Option {
	return func(r *Retriever) error {
		r.workers = max(1, n)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "retriever")
		return nil
	}
}

// NewRetriever creates a retriever. Call Close to release its worker pool.
func NewRetriever(vectors storage.VectorStore, embedder ai.Embedder, fallback *Fallback, opts ...Option) (*Retriever, error) {
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if fallback == nil {
		return nil, ErrFallbackRequired
	}

	r := &Retriever{
		vectors:       vectors,
		embedder:      embedder,
		fallback:      fallback,
		minSimilarity: DefaultMinSimilarity,
		subQueryTopK:  DefaultSubQueryTopK,
		workers:       DefaultSubQueryWorkers,
		logger:        slog.Default().With("component", "retriever"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(r.workers)
	if err != nil {
		return nil, fmt.Errorf("creating sub-query pool: %w", err)
	}
	r.pool = pool
	return r, nil
}

// Close releases the worker pool.
func (r *Retriever) Close() {
	r.pool.Release()
}

// EmbedQuery embeds a single query. It returns nil when no embedding could be
// produced; the only error is the context's.
func (r *Retriever) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, nil
	}
	return vectors[0], nil
}

// SearchVector queries the rank partition and groups the matches scoring at
// least the minimum similarity by resume ID.
func (r *Retriever) SearchVector(ctx context.Context, vector []float32, rank string, topK int) (*core.CandidateSet, error) {
	matches, err := r.vectors.Query(ctx, vector, rank, topK)
	if err != nil {
		return nil, err
	}
	candidates := core.NewCandidateSet()
	for _, chunk := range matches {
		if chunk.Score >= r.minSimilarity {
			candidates.Add(chunk)
		}
	}
	return candidates, nil
}

// Fallback runs keyword retrieval for the query.
func (r *Retriever) Fallback(ctx context.Context, rank, query string, topK int) (*core.CandidateSet, error) {
	return r.fallback.Retrieve(ctx, rank, query, topK)
}

// RetrieveSubQuery embeds one sub-query and searches for it, switching to
// keyword retrieval when the embedding is unavailable.
func (r *Retriever) RetrieveSubQuery(ctx context.Context, rank, subQuery string) (*core.CandidateSet, error) {
	vector, err := r.EmbedQuery(ctx, subQuery)
	if err != nil {
		return nil, err
	}
	if vector == nil {
		r.logger.Info("embedding unavailable, using keyword retrieval", "subquery", subQuery)
		return r.Fallback(ctx, rank, subQuery, r.subQueryTopK)
	}

	candidates, err := r.SearchVector(ctx, vector, rank, r.subQueryTopK)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("sub-query retrieved", "subquery", subQuery, "candidates", candidates.Len())
	return candidates, nil
}

// RetrieveAll retrieves every sub-query on the worker pool and waits for all
// of them. Results are indexed like subQueries. The first error in sub-query
// order is returned.
func (r *Retriever) RetrieveAll(ctx context.Context, rank string, subQueries []string) ([]*core.CandidateSet, error) {
	if len(subQueries) == 0 {
		return nil, ErrNoSubQueries
	}

	results := make([]*core.CandidateSet, len(subQueries))
	errs := make([]error, len(subQueries))

	var wg sync.WaitGroup
	for i, subQuery := range subQueries {
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = r.RetrieveSubQuery(ctx, rank, subQuery)
		})
		if err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submitting sub-query: %w", err)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
