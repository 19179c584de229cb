package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/rankmatch/ai"
	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/extract"
	"github.com/poiesic/rankmatch/metrics"
	"github.com/poiesic/rankmatch/storage"
)

// Defaults for Indexer tunables.
const (
	DefaultMinTextLength = 100
	DefaultFailureStreak = 3
)

// errorReporter is implemented by embedders that can explain why they
// returned no vectors.
type errorReporter interface {
	LastError() string
}

// Indexer embeds new and modified documents of a rank folder.
type Indexer struct {
	registry      storage.FileRegistry
	vectors       storage.VectorStore
	embedder      ai.Embedder
	extractor     extract.TextExtractor
	chunker       Chunker
	extensions    []string
	minTextLength int
	failureStreak int
	logger        *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithChunking sets the chunk window and overlap in words.
func WithChunking(window, overlap int) Option {
	return func(i *Indexer) error {
		chunker, err := NewChunker(window, overlap)
		if err != nil {
			return err
		}
		i.chunker = chunker
		return nil
	}
}

// WithMinTextLength sets the minimum trimmed text length worth indexing.
func WithMinTextLength(n int) Option {
	return func(i *Indexer) error {
		i.minTextLength = max(0, n)
		return nil
	}
}

// WithFailureStreak sets how many consecutive embedding failures abort indexing.
func WithFailureStreak(n int) Option {
	return func(i *Indexer) error {
		i.failureStreak = max(1, n)
		return nil
	}
}

// WithExtensions sets the document extensions to index.
func WithExtensions(exts ...string) Option {
	return func(i *Indexer) error {
		if len(exts) > 0 {
			i.extensions = exts
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger.With("component", "indexer")
		return nil
	}
}

// NewIndexer creates an indexer.
func NewIndexer(
	registry storage.FileRegistry,
	vectors storage.VectorStore,
	embedder ai.Embedder,
	extractor extract.TextExtractor,
	opts ...Option,
) (*Indexer, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	i := &Indexer{
		registry:      registry,
		vectors:       vectors,
		embedder:      embedder,
		extractor:     extractor,
		chunker:       DefaultChunker(),
		extensions:    extract.DefaultExtensions,
		minTextLength: DefaultMinTextLength,
		failureStreak: DefaultFailureStreak,
		logger:        slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// document is a file selected for indexing.
type document struct {
	path  string
	mtime time.Time
}

// Index runs IndexSync in a goroutine and streams its events. A failure
// is reported as a final error event. The channel is closed when indexing ends.
func (i *Indexer) Index(ctx context.Context, folder, rank string) <-chan core.Event {
	events := make(chan core.Event, 16)
	go func() {
		defer close(events)
		send := func(e core.Event) bool {
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}

		err := i.IndexSync(ctx, folder, rank, func(e core.Event) { send(e) })
		if err != nil && ctx.Err() == nil {
			send(core.ErrorEvent(err.Error()))
		}
	}()
	return events
}

// IndexSync brings the rank's vectors up to date with folder, calling emit
// for every progress event in order.
func (i *Indexer) IndexSync(ctx context.Context, folder, rank string, emit func(core.Event)) error {
	paths, err := extract.ListDocuments(folder, i.extensions)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	work, all, err := i.selectWork(ctx, paths)
	if err != nil {
		return err
	}

	if len(work) == 0 {
		count, err := i.vectors.NamespaceCount(ctx, rank)
		if err != nil {
			return err
		}
		if len(all) == 0 || count > 0 {
			i.logger.Info("index is up to date", "rank", rank)
			emit(core.CountedEvent(core.EventIndexingComplete, 0, 0, "Index is up to date."))
			return nil
		}
		i.logger.Info("registry is current but the vector index is empty; reindexing",
			"rank", rank, "documents", len(all))
		work = all
	}

	total := len(work)
	processed, failures := 0, 0
	emit(core.CountedEvent(core.EventIndexingStart, 0, total, fmt.Sprintf("Indexing %d file(s)...", total)))

	for _, doc := range work {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := filepath.Base(doc.path)

		text := i.extractor.ExtractText(doc.path)
		if utf8.RuneCountInString(strings.TrimSpace(text)) < i.minTextLength {
			processed++
			metrics.FilesIndexedTotal.WithLabelValues(rank, metrics.OutcomeSkipped).Inc()
			i.logger.Info("skipping document with insufficient text", "file", name)
			emit(core.CountedEvent(core.EventIndexingProgress, processed, total,
				fmt.Sprintf("Skipping %s (insufficient text)", name)))
			continue
		}

		resumeID, err := i.registry.GetResumeID(ctx, doc.path)
		if err != nil {
			return err
		}

		chunks := i.chunker.Chunk(text, resumeID, rank)
		vectors, err := i.embedder.Embed(ctx, Texts(chunks))
		if err != nil {
			return err
		}

		processed++
		if len(vectors) == 0 {
			failures++
			metrics.FilesIndexedTotal.WithLabelValues(rank, metrics.OutcomeFailure).Inc()
			i.logger.Warn("embedding failed", "file", name, "streak", failures)
			emit(core.CountedEvent(core.EventIndexingProgress, processed, total,
				fmt.Sprintf("Skipped %s (embedding failed)", name)))
			if failures >= i.failureStreak {
				return fmt.Errorf("%w. Last error: %s", ErrEmbeddingStreak, i.lastError())
			}
			continue
		}
		failures = 0

		if err := i.vectors.Upsert(ctx, chunks, vectors, rank); err != nil {
			return err
		}
		if err := i.registry.UpsertFileRecord(ctx, doc.path, doc.mtime, resumeID); err != nil {
			return err
		}

		metrics.FilesIndexedTotal.WithLabelValues(rank, metrics.OutcomeSuccess).Inc()
		i.logger.Info("indexed document", "file", name, "chunks", len(chunks))
		emit(core.CountedEvent(core.EventIndexingProgress, processed, total, "Indexed "+name))
	}

	emit(core.CountedEvent(core.EventIndexingComplete, processed, total, "Indexing complete."))
	return nil
}

// selectWork stats every path and returns those the registry wants
// processed, along with all statable documents.
func (i *Indexer) selectWork(ctx context.Context, paths []string) (work, all []document, err error) {
	for _, path := range paths {
		info, statErr := os.Stat(path)
		if statErr != nil {
			i.logger.Warn("failed to stat document", "path", path, "err", statErr)
			continue
		}
		doc := document{path: path, mtime: info.ModTime()}
		all = append(all, doc)

		needs, err := i.registry.NeedsProcessing(ctx, path, doc.mtime)
		if err != nil {
			return nil, nil, err
		}
		if needs {
			work = append(work, doc)
		}
	}
	return work, all, nil
}

func (i *Indexer) lastError() string {
	if r, ok := i.embedder.(errorReporter); ok {
		if msg := r.LastError(); msg != "" {
			return msg
		}
	}
	return "No details available."
}
