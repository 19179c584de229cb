// Package mock provides test double implementations of AI service interfaces.
//
// The mocks record every call, are safe for concurrent use, and allow
// behavior injection through function fields.
//
// # Usage in Tests
//
//	embedder := mock.NewMockEmbeddingProvider()
//	embedder.EmbedFunc = func(ctx context.Context, req ai.EmbedRequest) ([][]float32, error) {
//	    if req.Model == "text-embedding-004" {
//	        return nil, errors.New("404 model not found")
//	    }
//	    return mock.DeterministicVectors(req.Texts, 8), nil
//	}
//
//	completer := mock.NewMockCompleter(`{"is_match": true, "reason": "ok", "confidence": 0.9}`)
//	count := completer.CallCount()
//
// # Default Behavior
//
//   - MockEmbeddingProvider: deterministic vectors from a text hash, no discovery
//   - MockEmbedder: deterministic vectors from a text hash
//   - MockCompleter: returns its canned reply
//   - MockProvider: aggregates a MockEmbeddingProvider and a MockCompleter
package mock
