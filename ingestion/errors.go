package ingestion

import "errors"

var (
	// ErrRegistryRequired is returned when a file registry is not provided.
	ErrRegistryRequired = errors.New("file registry required")

	// ErrVectorStoreRequired is returned when a vector store is not provided.
	ErrVectorStoreRequired = errors.New("vector store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrExtractorRequired is returned when a text extractor is not provided.
	ErrExtractorRequired = errors.New("text extractor required")

	// ErrInvalidChunking is returned for a window/overlap pair that cannot advance.
	ErrInvalidChunking = errors.New("chunk overlap must be smaller than the window")

	// ErrEmbeddingStreak is returned when consecutive documents fail to embed.
	ErrEmbeddingStreak = errors.New("embedding repeatedly failed while indexing")
)
