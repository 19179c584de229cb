package storage

import (
	"context"
	"time"

	"github.com/poiesic/rankmatch/core"
)

// FileRegistry tracks which documents have been embedded and when.
// Implementations must be thread-safe.
type FileRegistry interface {
	// NeedsProcessing reports whether the file has no record or its mtime is
	// newer than the recorded one.
	NeedsProcessing(ctx context.Context, path string, mtime time.Time) (bool, error)

	// GetResumeID returns the recorded resume ID for the path, or the
	// deterministic ID derived from the path when no record exists.
	GetResumeID(ctx context.Context, path string) (string, error)

	// UpsertFileRecord records a successful embedding of the file.
	// On conflict only the last-modified time is updated; the stored resume ID
	// is kept.
	UpsertFileRecord(ctx context.Context, path string, mtime time.Time, resumeID string) error

	// GetFileRecord retrieves the record for a path.
	// Returns ErrNotFound if the path has never been indexed.
	GetFileRecord(ctx context.Context, path string) (*core.FileRecord, error)
}

// FeedbackStore is an append-only log of human corrections.
type FeedbackStore interface {
	// AddFeedback validates and appends a record, assigning its ID and
	// timestamp when unset.
	AddFeedback(ctx context.Context, record *core.FeedbackRecord) error

	// RecentFeedback returns up to limit records whose query contains the
	// first whitespace-separated token of query (case-insensitive), newest first.
	RecentFeedback(ctx context.Context, query string, limit int) ([]*core.FeedbackRecord, error)
}

// VectorStore holds chunk embeddings partitioned by rank.
type VectorStore interface {
	// Upsert stores chunks with their vectors under the rank partition.
	// chunks and vectors must have the same length.
	Upsert(ctx context.Context, chunks []core.Chunk, vectors [][]float32, rank string) error

	// Query returns up to topK chunks of the rank ordered by cosine similarity
	// (highest first). Chunk.Score carries the similarity.
	Query(ctx context.Context, vector []float32, rank string, topK int) ([]core.Chunk, error)

	// NamespaceCount returns the number of vectors stored for the rank in the
	// active index.
	NamespaceCount(ctx context.Context, rank string) (int, error)
}
