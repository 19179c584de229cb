package analysis

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/extract"
	"github.com/poiesic/rankmatch/storage/badger"
	"github.com/stretchr/testify/require"
)

const testRank = "Chief Officer"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubIndexer replays events and returns Err.
type stubIndexer struct {
	Events []core.Event
	Err    error
	calls  int
}

func (s *stubIndexer) IndexSync(_ context.Context, _, _ string, emit func(core.Event)) error {
	s.calls++
	for _, e := range s.Events {
		emit(e)
	}
	return s.Err
}

// stubRetriever serves canned candidate sets and records calls.
type stubRetriever struct {
	Vector    []float32
	Vectors   *core.CandidateSet
	Keyword   *core.CandidateSet
	SubSets   []*core.CandidateSet
	SearchErr error
	EmbedErr  error

	mu             sync.Mutex
	searchTopK     int
	fallbackTopK   int
	searchCalls    int
	fallbackCalls  int
	subQueries     []string
}

func (s *stubRetriever) EmbedQuery(context.Context, string) ([]float32, error) {
	return s.Vector, s.EmbedErr
}

func (s *stubRetriever) SearchVector(_ context.Context, _ []float32, _ string, topK int) (*core.CandidateSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchCalls++
	s.searchTopK = topK
	return s.Vectors, s.SearchErr
}

func (s *stubRetriever) Fallback(_ context.Context, _, _ string, topK int) (*core.CandidateSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallbackCalls++
	s.fallbackTopK = topK
	return s.Keyword, nil
}

func (s *stubRetriever) RetrieveAll(_ context.Context, _ string, subQueries []string) ([]*core.CandidateSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subQueries = subQueries
	return s.SubSets, s.SearchErr
}

// stubReasoner decides by resume ID.
type stubReasoner struct {
	Decisions map[string]core.Decision

	mu       sync.Mutex
	reasoned []string
	feedback [][]*core.FeedbackRecord
}

func (s *stubReasoner) Reason(_ context.Context, _ string, chunks []core.Chunk, feedback []*core.FeedbackRecord) core.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chunks[0].ResumeID
	s.reasoned = append(s.reasoned, id)
	s.feedback = append(s.feedback, feedback)
	return s.Decisions[id]
}

type fixture struct {
	root      string
	folder    string
	stores    *badger.Stores
	indexer   *stubIndexer
	retriever *stubRetriever
	reasoner  *stubReasoner
	sleeps    []time.Duration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	root := t.TempDir()
	folder := extract.RankFolder(root, testRank)
	require.NoError(t, os.MkdirAll(folder, 0o755))

	return &fixture{
		root:      root,
		folder:    folder,
		stores:    stores,
		indexer:   &stubIndexer{},
		retriever: &stubRetriever{Vector: []float32{1, 0}},
		reasoner:  &stubReasoner{Decisions: map[string]core.Decision{}},
	}
}

func (f *fixture) analyzer(t *testing.T, opts ...ConfigOption) *Analyzer {
	t.Helper()
	cfg := NewConfig(append([]ConfigOption{WithDownloadRoot(f.root)}, opts...)...)
	a, err := NewAnalyzer(f.stores.Registry, f.stores.Feedback, f.indexer, f.retriever, f.reasoner,
		WithConfig(cfg), WithLogger(discardLogger()))
	require.NoError(t, err)
	a.sleep = func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return ctx.Err()
	}
	return a
}

// writeDoc creates a document in the rank folder and returns its resume ID.
func (f *fixture) writeDoc(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(f.folder, name)
	require.NoError(t, os.WriteFile(path, []byte("resume of "+name), 0o644))
	return core.ResumeIDFromPath(path)
}

func candidateSet(ids ...string) *core.CandidateSet {
	set := core.NewCandidateSet()
	for i, id := range ids {
		set.Add(core.Chunk{ID: id + "-0", ResumeID: id, Rank: testRank, Text: "chunk", Score: float32(1 - 0.1*float64(i))})
	}
	return set
}

func collect(events <-chan core.Event) []core.Event {
	var out []core.Event
	for e := range events {
		out = append(out, e)
	}
	return out
}

func messages(events []core.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		if e.Message != "" {
			out = append(out, e.Message)
		}
	}
	return out
}
