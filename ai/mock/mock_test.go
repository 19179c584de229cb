package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/rankmatch/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicVector(t *testing.T) {
	a := DeterministicVector("oil tanker", 16)
	b := DeterministicVector("oil tanker", 16)
	c := DeterministicVector("bulk carrier", 16)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 0.0001)
}

func TestMockEmbeddingProvider(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbeddingProvider()

	vectors, err := m.Embed(ctx, ai.EmbedRequest{Model: "m1", APIVersion: "v1beta", Texts: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Len(t, vectors[0], DefaultDimension)

	models, err := m.ListEmbeddingModels(ctx)
	require.NoError(t, err)
	assert.Empty(t, models)

	m.EmbedFunc = func(context.Context, ai.EmbedRequest) ([][]float32, error) {
		return nil, errors.New("boom")
	}
	_, err = m.Embed(ctx, ai.EmbedRequest{Model: "m2", APIVersion: "v1beta"})
	assert.EqualError(t, err, "boom")

	assert.Equal(t, 2, m.CallCount())
	assert.Equal(t, 1, m.ListCallCount())
	assert.Equal(t, []string{"m1@v1beta", "m2@v1beta"}, m.Attempts())

	m.Reset()
	assert.Zero(t, m.CallCount())
}

func TestMockCompleter(t *testing.T) {
	ctx := context.Background()
	m := NewMockCompleter("reply")

	out, err := m.Complete(ctx, "prompt one")
	require.NoError(t, err)
	assert.Equal(t, "reply", out)

	m.CompleteFunc = func(context.Context, string) (string, error) {
		return "", errors.New("unavailable")
	}
	_, err = m.Complete(ctx, "prompt two")
	assert.Error(t, err)

	assert.Equal(t, []string{"prompt one", "prompt two"}, m.Prompts())
	assert.Equal(t, 2, m.CallCount())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider().(*MockProvider)
	assert.Same(t, p.GetMockEmbeddingProvider(), p.EmbeddingProvider())
	assert.Same(t, p.GetMockCompleter(), p.Completer())

	require.NoError(t, p.Close())
	assert.True(t, p.Closed())
}

func TestUnavailable(t *testing.T) {
	vectors, err := Unavailable().Embed(context.Background(), []string{"x"})
	assert.NoError(t, err)
	assert.Nil(t, vectors)
}
