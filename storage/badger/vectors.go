package badger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/storage"
)

const (
	// DefaultDimension is used when no expected dimension is known.
	DefaultDimension = 768

	maxIndexNameLength = 45
)

// IndexNameForDimension derives the dimension-specific index name
// "<base>-d<dim>", trimming base so the result fits in 45 characters.
func IndexNameForDimension(base string, dimension int) string {
	suffix := fmt.Sprintf("-d%d", dimension)
	if len(base) >= len(suffix) && base[len(base)-len(suffix):] == suffix {
		return base
	}
	maxBase := maxIndexNameLength - len(suffix)
	if len(base) > maxBase {
		base = base[:maxBase]
	}
	return base + suffix
}

// VectorStore implements storage.VectorStore on BadgerDB with brute-force
// cosine similarity. Vectors are partitioned by a dimension-specific index
// name and by rank; a change of embedding dimension switches to a fresh index.
type VectorStore struct {
	backend   *Backend
	baseIndex string

	mu        sync.Mutex
	dimension int

	logger *slog.Logger
}

var _ storage.VectorStore = (*VectorStore)(nil)

// NewVectorStore creates a vector store. A dimension <= 0 selects DefaultDimension.
func NewVectorStore(backend *Backend, baseIndex string, dimension int) *VectorStore {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &VectorStore{
		backend:   backend,
		baseIndex: baseIndex,
		dimension: dimension,
		logger:    slog.Default().With("component", "vector-store"),
	}
}

// IndexName returns the active dimension-specific index name.
func (s *VectorStore) IndexName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return IndexNameForDimension(s.baseIndex, s.dimension)
}

// ensureDimension switches the active index when vectors of another
// dimension arrive, and returns the index name to use.
func (s *VectorStore) ensureDimension(dimension int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dimension > 0 && dimension != s.dimension {
		s.logger.Info("switching vector index", "from", s.dimension, "to", dimension)
		s.dimension = dimension
	}
	return IndexNameForDimension(s.baseIndex, s.dimension)
}

// Upsert stores chunk vectors under the rank partition.
func (s *VectorStore) Upsert(ctx context.Context, chunks []core.Chunk, vectors [][]float32, rank string) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks, %d vectors", storage.ErrInvalidQuery, len(chunks), len(vectors))
	}
	if len(vectors) == 0 {
		return nil
	}

	dimension := len(vectors[0])
	for _, v := range vectors {
		if len(v) != dimension {
			return fmt.Errorf("%w: expected %d, got %d", storage.ErrDimensionMismatch, dimension, len(v))
		}
	}
	index := s.ensureDimension(dimension)

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for i, chunk := range chunks {
			record := &core.VectorRecord{
				ID:       chunk.ID,
				ResumeID: chunk.ResumeID,
				Rank:     rank,
				Text:     chunk.Text,
				Vector:   normalizeVector(vectors[i]),
			}
			if err := tx.Set(makeVectorKey(index, rank, chunk.ID), storage.MarshalVectorRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("%w: upsert failed: %w", storage.ErrVectorStore, err)
	}
	s.logger.Debug("upserted vectors", "rank", rank, "index", index, "count", len(chunks))
	return nil
}

// Query returns the topK most similar chunks of the rank.
func (s *VectorStore) Query(ctx context.Context, vector []float32, rank string, topK int) ([]core.Chunk, error) {
	if topK <= 0 {
		return []core.Chunk{}, nil
	}
	index := s.ensureDimension(len(vector))
	query := normalizeVector(vector)

	var results []core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeVectorPartitionPrefix(index, rank)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var record *core.VectorRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalVectorRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(record.Vector) == 0 {
				continue
			}

			// Stored vectors are unit length, so the dot product is the cosine
			results = append(results, core.Chunk{
				ID:       record.ID,
				Text:     record.Text,
				ResumeID: record.ResumeID,
				Rank:     record.Rank,
				Score:    dotProduct(query, record.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, fmt.Errorf("%w: query failed: %w", storage.ErrVectorStore, err)
	}

	// Sort by similarity descending
	slices.SortStableFunc(results, func(a, b core.Chunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// NamespaceCount counts the vectors stored for the rank in the active index.
func (s *VectorStore) NamespaceCount(ctx context.Context, rank string) (int, error) {
	index := s.IndexName()
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeVectorPartitionPrefix(index, rank)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to inspect namespace: %w", storage.ErrVectorStore, err)
	}
	return count, nil
}

// normalizeVector returns a unit-length copy of v. A zero vector stays zero.
func normalizeVector(v []float32) []float32 {
	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude)

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
