package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/rankmatch/ai"
)

// embedMethods are the generation methods that mark a model as embedding-capable.
var embedMethods = []string{"embedContent", "batchEmbedContents"}

// EmbeddingProvider implements ai.EmbeddingProvider against the Gemini API.
type EmbeddingProvider struct {
	backend backend
	guard   *guard
	logger  *slog.Logger
}

var _ ai.EmbeddingProvider = (*EmbeddingProvider)(nil)

// Embed embeds a batch with BatchEmbedContents.
func (e *EmbeddingProvider) Embed(ctx context.Context, req ai.EmbedRequest) ([][]float32, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("embedding %w", ai.ErrModelRequired)
	}
	if req.APIVersion != "" && req.APIVersion != ai.DefaultAPIVersion {
		return nil, fmt.Errorf("%w: %s", ai.ErrUnsupportedAPIVersion, req.APIVersion)
	}
	if len(req.Texts) == 0 {
		return [][]float32{}, nil
	}

	e.logger.Debug("embedding batch", "model", req.Model, "count", len(req.Texts))
	result, err := e.guard.call(ctx, func() (any, error) {
		return e.backend.batchEmbed(ctx, req.Model, req.Texts)
	})
	if err != nil {
		return nil, err
	}

	vectors := result.([][]float32)
	if len(vectors) == 0 {
		return nil, ai.ErrEmptyResponse
	}
	return vectors, nil
}

// ListEmbeddingModels returns the short names of models that support
// embedContent or batchEmbedContents.
func (e *EmbeddingProvider) ListEmbeddingModels(ctx context.Context) ([]string, error) {
	result, err := e.guard.call(ctx, func() (any, error) {
		return e.backend.listModels(ctx)
	})
	if err != nil {
		return nil, err
	}

	var names []string
	for _, m := range result.([]modelInfo) {
		name := strings.TrimPrefix(m.Name, "models/")
		if name == "" {
			continue
		}
		if slices.ContainsFunc(m.Methods, func(method string) bool {
			return slices.Contains(embedMethods, method)
		}) {
			names = append(names, name)
		}
	}
	e.logger.Debug("discovered embedding models", "count", len(names))
	return names, nil
}
