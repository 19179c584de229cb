package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/extract"
	"github.com/poiesic/rankmatch/metrics"
	"github.com/poiesic/rankmatch/storage"
)

// Defaults for Fallback tunables.
const (
	DefaultFallbackTopK       = 50
	DefaultFallbackChunkChars = 12000
)

// Fallback ranks the documents of a rank folder by keyword overlap with the
// query. It is used when no query embedding can be produced.
type Fallback struct {
	registry   storage.FileRegistry
	extractor  extract.TextExtractor
	root       string
	extensions []string
	chunkChars int
	logger     *slog.Logger
}

// FallbackOption configures a Fallback.
type FallbackOption func(*Fallback) error

// WithFallbackExtensions sets the document extensions scanned.
func WithFallbackExtensions(exts ...string) FallbackOption {
	return func(f *Fallback) error {
		if len(exts) > 0 {
			f.extensions = exts
		}
		return nil
	}
}

// WithChunkChars caps the pseudo-chunk length in characters.
func WithChunkChars(n int) FallbackOption {
	return func(f *Fallback) error {
		if n <= 0 {
			return fmt.Errorf("chunk chars must be positive, got %d", n)
		}
		f.chunkChars = n
		return nil
	}
}

// WithFallbackLogger sets a custom logger.
// Default is slog.Default().
func WithFallbackLogger(logger *slog.Logger) FallbackOption {
	return func(f *Fallback) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger.With("component", "fallback")
		return nil
	}
}

// NewFallback creates a keyword fallback over the rank folders under root.
func NewFallback(registry storage.FileRegistry, extractor extract.TextExtractor, root string, opts ...FallbackOption) (*Fallback, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	f := &Fallback{
		registry:   registry,
		extractor:  extractor,
		root:       root,
		extensions: extract.DefaultExtensions,
		chunkChars: DefaultFallbackChunkChars,
		logger:     slog.Default().With("component", "fallback"),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

type scoredDocument struct {
	path  string
	text  string
	score float32
}

// Retrieve returns up to topK documents of the rank that share terms with the
// query, best first, each as a single pseudo-chunk. A missing folder yields an
// empty set. The only error is context cancellation.
func (f *Fallback) Retrieve(ctx context.Context, rank, query string, topK int) (*core.CandidateSet, error) {
	metrics.FallbackRetrievalsTotal.Inc()
	candidates := core.NewCandidateSet()

	folder := extract.RankFolder(f.root, rank)
	paths, err := extract.ListDocuments(folder, f.extensions)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("error listing rank folder", "folder", folder, "err", err)
		}
		return candidates, nil
	}

	terms := queryTerms(query)
	ranked := make([]scoredDocument, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := f.extractor.ExtractText(path)
		if text == "" {
			continue
		}
		hits := countHits(text, terms)
		if hits == 0 {
			continue
		}
		ranked = append(ranked, scoredDocument{
			path:  path,
			text:  text,
			score: float32(hits) / float32(len(terms)),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if topK >= 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}

	for idx, doc := range ranked {
		resumeID, err := f.registry.GetResumeID(ctx, doc.path)
		if err != nil {
			f.logger.Warn("error looking up resume id", "path", doc.path, "err", err)
			resumeID = core.ResumeIDFromPath(doc.path)
		}
		candidates.Add(core.Chunk{
			ID:       fmt.Sprintf("fallback-%s-%d", resumeID, idx),
			Text:     truncateRunes(doc.text, f.chunkChars),
			ResumeID: resumeID,
			Rank:     rank,
			Score:    doc.score,
		})
	}

	f.logger.Debug("keyword retrieval", "rank", rank, "terms", len(terms), "candidates", candidates.Len())
	return candidates, nil
}
