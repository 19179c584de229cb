// Package gemini provides AI service implementations backed by the Google
// Gemini API through the generative-ai-go SDK.
//
// Every outbound call waits on a shared token-bucket rate limiter and runs
// inside a circuit breaker. Client errors such as an unknown model do not
// count towards opening the breaker, so model fallback and discovery can
// probe freely.
//
// # Usage
//
//	cfg := ai.NewConfig(ai.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
//	provider, err := gemini.NewProvider(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	models, err := provider.EmbeddingProvider().ListEmbeddingModels(ctx)
package gemini
