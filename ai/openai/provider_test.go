package openai

import (
	"context"
	"testing"

	"github.com/poiesic/rankmatch/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(ai.ProviderOpenAI),
		ai.WithHost("http://localhost:11434"),
		ai.WithEmbeddingModel("nomic-embed-text"),
		ai.WithReasoningModel("qwen2.5:7b"),
	)
}

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider(testConfig())
	require.NoError(t, err)
	defer provider.Close()

	assert.NotNil(t, provider.EmbeddingProvider())
	assert.NotNil(t, provider.Completer())
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ReasoningModel = ""

	_, err := NewProvider(cfg)
	assert.ErrorIs(t, err, ai.ErrModelRequired)
}

func TestToken(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "none", token(cfg))

	cfg.APIKey = "sk-test"
	assert.Equal(t, "sk-test", token(cfg))
}

func TestEmbeddingProvider_NoNetworkPaths(t *testing.T) {
	ctx := context.Background()
	embedder, err := newEmbeddingProvider(testConfig())
	require.NoError(t, err)

	t.Run("empty batch", func(t *testing.T) {
		vectors, err := embedder.Embed(ctx, ai.EmbedRequest{Model: "nomic-embed-text"})
		require.NoError(t, err)
		assert.Empty(t, vectors)
	})

	t.Run("missing model", func(t *testing.T) {
		_, err := embedder.Embed(ctx, ai.EmbedRequest{Texts: []string{"x"}})
		assert.ErrorIs(t, err, ai.ErrModelRequired)
	})

	t.Run("no discovery", func(t *testing.T) {
		models, err := embedder.ListEmbeddingModels(ctx)
		require.NoError(t, err)
		assert.Empty(t, models)
	})

	t.Run("embedders are cached per model", func(t *testing.T) {
		a, err := embedder.embedderFor("m1")
		require.NoError(t, err)
		b, err := embedder.embedderFor("m1")
		require.NoError(t, err)
		assert.Same(t, a, b)
		assert.Len(t, embedder.embedders, 1)
	})
}
