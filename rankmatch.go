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

package rankmatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/rankmatch/ai"
	"github.com/poiesic/rankmatch/ai/gemini"
	"github.com/poiesic/rankmatch/ai/openai"
	"github.com/poiesic/rankmatch/analysis"
	"github.com/poiesic/rankmatch/config"
	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/embedding"
	"github.com/poiesic/rankmatch/extract"
	"github.com/poiesic/rankmatch/ingestion"
	"github.com/poiesic/rankmatch/reasoning"
	"github.com/poiesic/rankmatch/retrieval"
	"github.com/poiesic/rankmatch/storage/badger"
)

// Engine owns the storage, AI provider and pipeline components of a
// rankmatch installation.
type Engine struct {
	config    config.Config
	backend   *badger.Backend
	registry  *badger.FileRegistry
	feedback  *badger.FeedbackStore
	vectors   *badger.VectorStore
	provider  ai.Provider
	resolver  *embedding.Resolver
	indexer   *ingestion.Indexer
	retriever *retrieval.Retriever
	analyzer  *analysis.Analyzer
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	provider  ai.Provider
	extractor extract.TextExtractor
	logger    *slog.Logger
}

// WithProvider uses provider instead of building one from the AI config.
// The engine takes ownership and closes it.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithExtractor replaces the default PDF and plain text extractor.
func WithExtractor(extractor extract.TextExtractor) EngineOption {
	return func(o *engineOptions) {
		o.extractor = extractor
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewProvider builds the AI provider selected by cfg.
func NewProvider(ctx context.Context, cfg *ai.Config) (ai.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ai.ProviderGemini:
		return gemini.NewProvider(ctx, cfg)
	case ai.ProviderOpenAI:
		return openai.NewProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ai.ErrUnknownProvider, cfg.Provider)
	}
}

// NewEngine opens storage and wires the pipeline described by cfg.
func NewEngine(ctx context.Context, cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		extractor: extract.NewDefault(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if cfg == nil {
		cfg = config.Defaults()
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = NewProvider(ctx, &cfg.AI)
		if err != nil {
			return nil, err
		}
	}

	backend, err := badger.OpenBackend(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		provider.Close()
		return nil, err
	}

	e := &Engine{
		config:   *cfg,
		backend:  backend,
		provider: provider,
		logger:   options.logger.With("component", "engine"),
	}
	if err := e.wire(options); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) wire(options *engineOptions) error {
	cfg := &e.config
	logger := options.logger

	feedback, err := badger.NewFeedbackStore(e.backend)
	if err != nil {
		return err
	}
	e.feedback = feedback
	e.registry = badger.NewFileRegistry(e.backend)

	resolver, err := embedding.NewResolver(e.provider.EmbeddingProvider(), cfg.AI.EmbeddingModel,
		embedding.WithAPIVersions(cfg.AI.APIVersions...),
		embedding.WithLogger(logger))
	if err != nil {
		return err
	}
	e.resolver = resolver

	dimension, _ := resolver.ExpectedDimension()
	e.vectors = badger.NewVectorStore(e.backend, cfg.Storage.VectorIndex, dimension)

	a := &cfg.Analysis
	e.indexer, err = ingestion.NewIndexer(e.registry, e.vectors, resolver, options.extractor,
		ingestion.WithChunking(a.ChunkWindow, a.ChunkOverlap),
		ingestion.WithMinTextLength(a.MinTextLength),
		ingestion.WithFailureStreak(a.FailureStreak),
		ingestion.WithExtensions(a.Extensions...),
		ingestion.WithLogger(logger))
	if err != nil {
		return err
	}

	fallback, err := retrieval.NewFallback(e.registry, options.extractor, a.DownloadRoot,
		retrieval.WithFallbackExtensions(a.Extensions...),
		retrieval.WithChunkChars(a.FallbackChunkChars),
		retrieval.WithFallbackLogger(logger))
	if err != nil {
		return err
	}
	e.retriever, err = retrieval.NewRetriever(e.vectors, resolver, fallback,
		retrieval.WithMinSimilarity(float32(a.MinSimilarity)),
		retrieval.WithSubQueryTopK(a.SubQueryTopK),
		retrieval.WithSubQueryWorkers(a.SubQueryWorkers),
		retrieval.WithLogger(logger))
	if err != nil {
		return err
	}

	reasoner, err := reasoning.NewReasoner(e.provider.Completer(),
		reasoning.WithRetry(a.ReasoningAttempts, a.RetryDelay),
		reasoning.WithLogger(logger))
	if err != nil {
		return err
	}

	e.analyzer, err = analysis.NewAnalyzer(e.registry, e.feedback, e.indexer, e.retriever, reasoner,
		analysis.WithConfig(a),
		analysis.WithLogger(logger))
	return err
}

// Close releases the pipeline, the AI provider and storage.
func (e *Engine) Close() error {
	if e.retriever != nil {
		e.retriever.Close()
	}
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if e.feedback != nil {
		if err := e.feedback.Close(); err != nil {
			e.logger.Error("error closing feedback store", "err", err)
			return err
		}
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Analyze streams an analysis of rank against query.
func (e *Engine) Analyze(ctx context.Context, rank, query string) <-chan core.Event {
	return e.analyzer.Analyze(ctx, rank, query)
}

// Run performs an analysis and returns the aggregated report.
func (e *Engine) Run(ctx context.Context, rank, query string) (*core.Report, error) {
	return e.analyzer.Run(ctx, rank, query)
}

// Index brings the rank's embeddings up to date and streams indexing events.
func (e *Engine) Index(ctx context.Context, rank string) <-chan core.Event {
	return e.indexer.Index(ctx, e.analyzer.RankFolder(rank), rank)
}

// StoreFeedback records a user's correction.
func (e *Engine) StoreFeedback(ctx context.Context, record *core.FeedbackRecord) error {
	return e.analyzer.StoreFeedback(ctx, record)
}

// ListFeedback returns up to limit corrections, newest first.
func (e *Engine) ListFeedback(ctx context.Context, limit int) ([]*core.FeedbackRecord, error) {
	return e.feedback.ListFeedback(ctx, limit)
}

// ListEmbeddingModels asks the provider which embedding models it offers.
func (e *Engine) ListEmbeddingModels(ctx context.Context) ([]string, error) {
	return e.provider.EmbeddingProvider().ListEmbeddingModels(ctx)
}

// EmbeddingModel returns the model currently used for embeddings, or the
// configured model before the first successful call.
func (e *Engine) EmbeddingModel() string {
	if model := e.resolver.Model(); model != "" {
		return model
	}
	return e.resolver.ConfiguredModel()
}

// LastEmbeddingError explains the most recent embedding failure.
func (e *Engine) LastEmbeddingError() string {
	return e.resolver.LastError()
}

// RankFolder returns the document folder of a rank.
func (e *Engine) RankFolder(rank string) string {
	return e.analyzer.RankFolder(rank)
}
