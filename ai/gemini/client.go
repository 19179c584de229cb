package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

// modelInfo is the subset of genai.ModelInfo used for discovery.
type modelInfo struct {
	Name    string
	Methods []string
}

// backend is the narrow surface of the Gemini SDK this package uses.
type backend interface {
	batchEmbed(ctx context.Context, model string, texts []string) ([][]float32, error)
	listModels(ctx context.Context) ([]modelInfo, error)
	generate(ctx context.Context, model, prompt string) (string, error)
	close() error
}

// sdkBackend adapts *genai.Client to backend.
type sdkBackend struct {
	client *genai.Client
}

func (b *sdkBackend) batchEmbed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	em := b.client.EmbeddingModel(model)
	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		if e == nil {
			vectors = append(vectors, nil)
			continue
		}
		vectors = append(vectors, e.Values)
	}
	return vectors, nil
}

func (b *sdkBackend) listModels(ctx context.Context) ([]modelInfo, error) {
	var models []modelInfo
	iter := b.client.ListModels(ctx)
	for {
		m, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		models = append(models, modelInfo{Name: m.Name, Methods: m.SupportedGenerationMethods})
	}
	return models, nil
}

func (b *sdkBackend) generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := b.client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (b *sdkBackend) close() error {
	return b.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
