package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/rankmatch/ai"
	"github.com/poiesic/rankmatch/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failModels makes the provider fail for the listed models and succeed otherwise.
func failModels(models ...string) func(context.Context, ai.EmbedRequest) ([][]float32, error) {
	return func(_ context.Context, req ai.EmbedRequest) ([][]float32, error) {
		for _, m := range models {
			if req.Model == m {
				return nil, errors.New("404 model " + m + " not found")
			}
		}
		return mock.DeterministicVectors(req.Texts, 4), nil
	}
}

func TestNewResolver(t *testing.T) {
	_, err := NewResolver(nil, ModelTextEmbedding004)
	assert.ErrorIs(t, err, ErrProviderRequired)

	_, err = NewResolver(mock.NewMockEmbeddingProvider(), "")
	assert.ErrorIs(t, err, ai.ErrModelRequired)
}

func TestResolver_EmptyInputMakesNoCalls(t *testing.T) {
	provider := mock.NewMockEmbeddingProvider()
	r, err := NewResolver(provider, ModelTextEmbedding004)
	require.NoError(t, err)

	vectors, err := r.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Zero(t, provider.CallCount())
	assert.Zero(t, provider.ListCallCount())
}

func TestResolver_ConfiguredModelSucceeds(t *testing.T) {
	provider := mock.NewMockEmbeddingProvider()
	r, err := NewResolver(provider, ModelTextEmbedding004)
	require.NoError(t, err)

	vectors, err := r.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, ModelTextEmbedding004, r.Model())
	assert.Empty(t, r.LastError())
	assert.Equal(t, []string{"text-embedding-004@v1beta"}, provider.Attempts())
}

func TestResolver_FallsBackToAlternateAndSticks(t *testing.T) {
	provider := mock.NewMockEmbeddingProvider()
	provider.EmbedFunc = failModels(ModelTextEmbedding004)

	r, err := NewResolver(provider, ModelTextEmbedding004)
	require.NoError(t, err)

	vectors, err := r.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, ModelGeminiEmbedding001, r.Model())
	assert.Equal(t, []string{
		"text-embedding-004@v1beta",
		"gemini-embedding-001@v1beta",
	}, provider.Attempts())

	// The sticky model is tried first on the next call
	_, err = r.Embed(context.Background(), []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-embedding-001@v1beta", provider.Attempts()[2])
	assert.Len(t, provider.Attempts(), 3)
}

func TestResolver_TriesEveryAPIVersion(t *testing.T) {
	provider := mock.NewMockEmbeddingProvider()
	provider.EmbedFunc = func(_ context.Context, req ai.EmbedRequest) ([][]float32, error) {
		if req.APIVersion != "v1" || req.Model != ModelGeminiEmbedding001 {
			return nil, errors.New("unavailable")
		}
		return mock.DeterministicVectors(req.Texts, 4), nil
	}

	r, err := NewResolver(provider, ModelTextEmbedding004, WithAPIVersions("v1beta", "v1"))
	require.NoError(t, err)

	vectors, err := r.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
	assert.Equal(t, []string{
		"text-embedding-004@v1beta",
		"text-embedding-004@v1",
		"gemini-embedding-001@v1beta",
		"gemini-embedding-001@v1",
	}, provider.Attempts())
}

func TestResolver_DiscoverySkipsTriedModels(t *testing.T) {
	provider := mock.NewMockEmbeddingProvider()
	provider.EmbedFunc = failModels(ModelTextEmbedding004, ModelGeminiEmbedding001)
	provider.ListModelsFunc = func(context.Context) ([]string, error) {
		return []string{ModelGeminiEmbedding001, "embedding-001"}, nil
	}

	r, err := NewResolver(provider, ModelTextEmbedding004, WithAPIVersions("v1beta", "v1"))
	require.NoError(t, err)

	vectors, err := r.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
	assert.Equal(t, "embedding-001", r.Model())

	attempts := provider.Attempts()
	// Discovered models are tried on the first API version only
	assert.Equal(t, "embedding-001@v1beta", attempts[len(attempts)-1])
	assert.Len(t, attempts, 5)
}

func TestResolver_AllFail(t *testing.T) {
	provider := mock.NewMockEmbeddingProvider()
	provider.EmbedFunc = func(_ context.Context, req ai.EmbedRequest) ([][]float32, error) {
		return nil, errors.New("quota exceeded for " + req.Model)
	}
	provider.ListModelsFunc = func(context.Context) ([]string, error) {
		return []string{"m3", "m4"}, nil
	}

	r, err := NewResolver(provider, ModelTextEmbedding004)
	require.NoError(t, err)

	vectors, err := r.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Nil(t, vectors)
	assert.Empty(t, r.Model())

	trail := strings.Split(r.LastError(), " | ")
	require.Len(t, trail, 3)
	assert.Contains(t, trail[0], "gemini-embedding-001")
	assert.Contains(t, trail[1], "m3")
	assert.Equal(t, "Embedding request error using m4 on v1beta: quota exceeded for m4", trail[2])
}

func TestResolver_EmptyResponseIsFailure(t *testing.T) {
	provider := mock.NewMockEmbeddingProvider()
	provider.EmbedFunc = func(context.Context, ai.EmbedRequest) ([][]float32, error) {
		return [][]float32{}, nil
	}

	r, err := NewResolver(provider, "custom-model")
	require.NoError(t, err)

	vectors, err := r.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Nil(t, vectors)
	assert.Equal(t, "custom-model@v1beta: Embedding API returned no embeddings.", r.LastError())
}

func TestResolver_EmptyInnerVectorIsFailure(t *testing.T) {
	provider := mock.NewMockEmbeddingProvider()
	provider.EmbedFunc = func(_ context.Context, req ai.EmbedRequest) ([][]float32, error) {
		vectors := mock.DeterministicVectors(req.Texts, 8)
		vectors[1] = nil
		return vectors, nil
	}

	r, err := NewResolver(provider, "custom-model")
	require.NoError(t, err)

	vectors, err := r.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Nil(t, vectors)
	assert.Equal(t, "custom-model@v1beta: Embedding API returned an empty embedding for text 1.", r.LastError())
	assert.Empty(t, r.Model(), "a partial reply does not make the model sticky")
}

func TestResolver_DiscoveryFailureJoinsTrail(t *testing.T) {
	provider := mock.NewMockEmbeddingProvider()
	provider.EmbedFunc = failModels("custom-model")
	provider.ListModelsFunc = func(context.Context) ([]string, error) {
		return nil, errors.New("permission denied")
	}

	r, err := NewResolver(provider, "custom-model")
	require.NoError(t, err)

	_, err = r.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Contains(t, r.LastError(), "Could not list embedding models: permission denied")
}

func TestResolver_SuccessClearsLastError(t *testing.T) {
	fail := true
	provider := mock.NewMockEmbeddingProvider()
	provider.EmbedFunc = func(_ context.Context, req ai.EmbedRequest) ([][]float32, error) {
		if fail {
			return nil, errors.New("down")
		}
		return mock.DeterministicVectors(req.Texts, 4), nil
	}

	r, err := NewResolver(provider, "custom-model")
	require.NoError(t, err)

	_, _ = r.Embed(context.Background(), []string{"a"})
	assert.NotEmpty(t, r.LastError())

	fail = false
	_, err = r.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Empty(t, r.LastError())
}

func TestResolver_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	provider := mock.NewMockEmbeddingProvider()
	provider.EmbedFunc = func(context.Context, ai.EmbedRequest) ([][]float32, error) {
		cancel()
		return nil, context.Canceled
	}

	r, err := NewResolver(provider, ModelTextEmbedding004)
	require.NoError(t, err)

	_, err = r.Embed(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, provider.CallCount())
}

func TestResolver_UnknownFailureMessage(t *testing.T) {
	r := &Resolver{trailSize: DefaultTrailSize, logger: discardLogger()}
	r.fail(nil)
	assert.Equal(t, "Embedding request failed for unknown reasons.", r.LastError())
}

func TestExpectedDimension(t *testing.T) {
	dim, ok := ExpectedDimension(ModelTextEmbedding004)
	assert.True(t, ok)
	assert.Equal(t, 768, dim)

	dim, ok = ExpectedDimension(ModelGeminiEmbedding001)
	assert.True(t, ok)
	assert.Equal(t, 3072, dim)

	_, ok = ExpectedDimension("nomic-embed-text")
	assert.False(t, ok)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "a b", clip(" a\nb "))
	long := strings.Repeat("x", 400)
	assert.Equal(t, strings.Repeat("x", 300)+"...", clip(long))
}
