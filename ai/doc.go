// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the AI services rankmatch depends on.
//
// The core packages never talk to a model API directly. They depend on the
// interfaces defined here, and the sub-packages supply implementations:
//
//   - EmbeddingProvider: raw batch embedding and model discovery
//   - Embedder: embedding with model selection, as seen by the core
//   - Completer: single-prompt text completion for reasoning
//   - Provider: aggregates an EmbeddingProvider and a Completer
//
// # Implementation Packages
//
//   - ai/gemini: Google Gemini via the generative-ai-go SDK, with rate
//     limiting and a circuit breaker around every call
//   - ai/openai: OpenAI-compatible servers via langchaingo
//   - ai/mock: test doubles for unit testing without external services
//
// Production constructors return interface types. Mock constructors return
// concrete types so tests can inject behavior and inspect recorded calls.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
//	provider, err := gemini.NewProvider(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vectors, err := provider.EmbeddingProvider().Embed(ctx, ai.EmbedRequest{
//	    Model: cfg.EmbeddingModel,
//	    Texts: []string{"Master mariner, 12 years on VLCC tankers"},
//	})
package ai
