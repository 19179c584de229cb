package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/rankmatch/ai"
	"github.com/poiesic/rankmatch/metrics"
)

// Known embedding models.
const (
	ModelTextEmbedding004   = "text-embedding-004"
	ModelGeminiEmbedding001 = "gemini-embedding-001"
)

const (
	// DefaultTrailSize is how many failure messages LastError keeps.
	DefaultTrailSize = 3

	unknownFailure = "Embedding request failed for unknown reasons."
	maxErrorText   = 300
)

// ErrProviderRequired is returned when a Resolver is built without a provider.
var ErrProviderRequired = errors.New("embedding provider is required")

var expectedDimensions = map[string]int{
	ModelTextEmbedding004:   768,
	ModelGeminiEmbedding001: 3072,
}

var alternates = map[string]string{
	ModelTextEmbedding004:   ModelGeminiEmbedding001,
	ModelGeminiEmbedding001: ModelTextEmbedding004,
}

// ExpectedDimension returns the vector size of a known model.
func ExpectedDimension(model string) (int, bool) {
	dim, ok := expectedDimensions[model]
	return dim, ok
}

// Resolver implements ai.Embedder on top of an ai.EmbeddingProvider with
// model fallback and discovery.
type Resolver struct {
	provider    ai.EmbeddingProvider
	model       string
	apiVersions []string
	trailSize   int
	logger      *slog.Logger

	mu        sync.Mutex
	sticky    string
	lastError string
}

var _ ai.Embedder = (*Resolver)(nil)

// Option configures a Resolver.
type Option func(*Resolver)

// WithAPIVersions sets the API versions tried for each preferred model.
func WithAPIVersions(versions ...string) Option {
	return func(r *Resolver) {
		if len(versions) > 0 {
			r.apiVersions = versions
		}
	}
}

// WithTrailSize sets how many failure messages LastError reports.
func WithTrailSize(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.trailSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger.With("component", "embedding-resolver")
	}
}

// NewResolver creates a resolver preferring model.
func NewResolver(provider ai.EmbeddingProvider, model string, opts ...Option) (*Resolver, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if model == "" {
		return nil, fmt.Errorf("embedding %w", ai.ErrModelRequired)
	}

	r := &Resolver{
		provider:    provider,
		model:       model,
		apiVersions: []string{ai.DefaultAPIVersion},
		trailSize:   DefaultTrailSize,
		logger:      slog.Default().With("component", "embedding-resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Embed returns one vector per text. It returns nil, nil when no model
// could produce embeddings; the only error it returns is the context's.
func (r *Resolver) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var trail []string
	seen := make(map[string]bool)

	for _, model := range r.candidates() {
		seen[model] = true
		for _, version := range r.apiVersions {
			vectors, failure := r.attempt(ctx, model, version, texts)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if vectors != nil {
				return vectors, nil
			}
			trail = append(trail, failure)
		}
	}

	discovered, err := r.provider.ListEmbeddingModels(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		trail = append(trail, "Could not list embedding models: "+err.Error())
	}

	version := r.apiVersions[0]
	for _, model := range discovered {
		if seen[model] {
			continue
		}
		seen[model] = true

		vectors, failure := r.attempt(ctx, model, version, texts)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if vectors != nil {
			r.logger.Info("using discovered embedding model", "model", model)
			return vectors, nil
		}
		trail = append(trail, failure)
	}

	r.fail(trail)
	return nil, nil
}

// candidates returns the preferred models in try order, de-duplicated.
func (r *Resolver) candidates() []string {
	r.mu.Lock()
	sticky := r.sticky
	r.mu.Unlock()

	ordered := []string{sticky, r.model, alternates[r.model]}
	out := make([]string, 0, len(ordered))
	for _, m := range ordered {
		if m != "" && !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

// attempt makes one provider call. On success it records the model as
// sticky, clears the last error and returns the vectors; otherwise it
// returns a failure message for the trail.
func (r *Resolver) attempt(ctx context.Context, model, version string, texts []string) ([][]float32, string) {
	vectors, err := r.provider.Embed(ctx, ai.EmbedRequest{Model: model, APIVersion: version, Texts: texts})

	var failure string
	switch {
	case err != nil:
		failure = fmt.Sprintf("Embedding request error using %s on %s: %s", model, version, clip(err.Error()))
	case len(vectors) == 0:
		failure = fmt.Sprintf("%s@%s: Embedding API returned no embeddings.", model, version)
	case len(vectors) != len(texts):
		failure = fmt.Sprintf("%s@%s: Embedding API returned %d embeddings for %d texts.", model, version, len(vectors), len(texts))
	default:
		for idx, v := range vectors {
			if len(v) == 0 {
				failure = fmt.Sprintf("%s@%s: Embedding API returned an empty embedding for text %d.", model, version, idx)
				break
			}
		}
	}

	if failure != "" {
		metrics.EmbeddingAttemptsTotal.WithLabelValues(model, metrics.OutcomeFailure).Inc()
		r.logger.Debug("embedding attempt failed", "model", model, "api_version", version, "err", failure)
		return nil, failure
	}

	metrics.EmbeddingAttemptsTotal.WithLabelValues(model, metrics.OutcomeSuccess).Inc()
	r.mu.Lock()
	if r.sticky != model {
		r.logger.Info("embedding model resolved", "model", model, "api_version", version)
	}
	r.sticky = model
	r.lastError = ""
	r.mu.Unlock()
	return vectors, ""
}

func (r *Resolver) fail(trail []string) {
	message := unknownFailure
	if len(trail) > 0 {
		if len(trail) > r.trailSize {
			trail = trail[len(trail)-r.trailSize:]
		}
		message = strings.Join(trail, " | ")
	}

	r.mu.Lock()
	r.lastError = message
	r.mu.Unlock()
	r.logger.Error("embeddings unavailable", "err", message)
}

// LastError describes the most recent failed Embed call. It is empty after
// a successful call.
func (r *Resolver) LastError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastError
}

// Model returns the sticky model, or "" before the first success.
func (r *Resolver) Model() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sticky
}

// ConfiguredModel returns the preferred model the resolver was built with.
func (r *Resolver) ConfiguredModel() string {
	return r.model
}

// ExpectedDimension returns the vector size of the configured model, if known.
func (r *Resolver) ExpectedDimension() (int, bool) {
	return ExpectedDimension(r.model)
}

// clip flattens and truncates provider error text.
func clip(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	if len(s) > maxErrorText {
		s = s[:maxErrorText] + "..."
	}
	return s
}
