package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/rankmatch/ai"
	"github.com/poiesic/rankmatch/ai/mock"
	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/extract"
	"github.com/poiesic/rankmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rank = "Chief Officer"

func resumeText(marker string) string {
	return marker + " " + strings.Repeat("experienced officer on oil tankers with valid visa ", 20)
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestIndexer(t *testing.T, embedder ai.Embedder, opts ...Option) (*Indexer, *badger.Stores) {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	opts = append([]Option{WithExtensions(".txt")}, opts...)
	indexer, err := NewIndexer(stores.Registry, stores.Vectors, embedder, extract.NewPlainTextExtractor(), opts...)
	require.NoError(t, err)
	return indexer, stores
}

func runSync(t *testing.T, indexer *Indexer, folder string) ([]core.Event, error) {
	t.Helper()
	var events []core.Event
	err := indexer.IndexSync(context.Background(), folder, rank, func(e core.Event) {
		events = append(events, e)
	})
	return events, err
}

func messages(events []core.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Message
	}
	return out
}

func TestNewIndexer_RequiresCollaborators(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	embedder := mock.NewMockEmbedder()
	extractor := extract.NewPlainTextExtractor()

	_, err = NewIndexer(nil, stores.Vectors, embedder, extractor)
	assert.ErrorIs(t, err, ErrRegistryRequired)
	_, err = NewIndexer(stores.Registry, nil, embedder, extractor)
	assert.ErrorIs(t, err, ErrVectorStoreRequired)
	_, err = NewIndexer(stores.Registry, stores.Vectors, nil, extractor)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
	_, err = NewIndexer(stores.Registry, stores.Vectors, embedder, nil)
	assert.ErrorIs(t, err, ErrExtractorRequired)
	_, err = NewIndexer(stores.Registry, stores.Vectors, embedder, extractor, WithChunking(10, 10))
	assert.ErrorIs(t, err, ErrInvalidChunking)
}

func TestIndexer_IdempotentIngestion(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", resumeText("alpha"))
	writeDoc(t, dir, "b.txt", resumeText("bravo"))

	embedder := mock.NewMockEmbedder()
	indexer, stores := newTestIndexer(t, embedder)

	events, err := runSync(t, indexer, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Indexing 2 file(s)...",
		"Indexed a.txt",
		"Indexed b.txt",
		"Indexing complete.",
	}, messages(events))
	assert.Equal(t, core.EventIndexingStart, events[0].Type)
	assert.Equal(t, core.EventIndexingComplete, events[3].Type)
	cur, total := events[3].Counters()
	assert.Equal(t, 2, cur)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, embedder.CallCount())

	count, err := stores.Vectors.NamespaceCount(context.Background(), rank)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	events, err = runSync(t, indexer, dir)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, core.EventIndexingComplete, events[0].Type)
	assert.Equal(t, "Index is up to date.", events[0].Message)
	cur, total = events[0].Counters()
	assert.Zero(t, cur)
	assert.Zero(t, total)
	assert.Equal(t, 2, embedder.CallCount())
}

func TestIndexer_ReindexesModifiedFile(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", resumeText("alpha"))
	b := writeDoc(t, dir, "b.txt", resumeText("bravo"))

	embedder := mock.NewMockEmbedder()
	indexer, stores := newTestIndexer(t, embedder)

	_, err := runSync(t, indexer, dir)
	require.NoError(t, err)

	before, err := stores.Registry.GetResumeID(context.Background(), b)
	require.NoError(t, err)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(b, later, later))

	events, err := runSync(t, indexer, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Indexing 1 file(s)...", "Indexed b.txt", "Indexing complete."}, messages(events))

	after, err := stores.Registry.GetResumeID(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestIndexer_MigrationRecovery(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", resumeText("alpha"))
	writeDoc(t, dir, "b.txt", resumeText("bravo"))

	embedder := mock.NewMockEmbedder()
	indexer, stores := newTestIndexer(t, embedder)
	_, err := runSync(t, indexer, dir)
	require.NoError(t, err)

	// Same registry, fresh index: as after a switch to another dimension
	fresh := badger.NewVectorStore(stores.Backend, "resumes-migrated", mock.DefaultDimension)
	migrated, err := NewIndexer(stores.Registry, fresh, embedder, extract.NewPlainTextExtractor(), WithExtensions(".txt"))
	require.NoError(t, err)

	events, err := runSync(t, migrated, dir)
	require.NoError(t, err)
	assert.Equal(t, "Indexing 2 file(s)...", events[0].Message)

	count, err := fresh.NamespaceCount(context.Background(), rank)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIndexer_SkipsShortText(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "short.txt", strings.Repeat("x", 80))

	embedder := mock.NewMockEmbedder()
	indexer, _ := newTestIndexer(t, embedder)

	events, err := runSync(t, indexer, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Indexing 1 file(s)...",
		"Skipping short.txt (insufficient text)",
		"Indexing complete.",
	}, messages(events))
	assert.Zero(t, embedder.CallCount())

	cur, total := events[1].Counters()
	assert.Equal(t, 1, cur)
	assert.Equal(t, 1, total)
}

func TestIndexer_ShortTextCountsCharacters(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantSkip bool
	}{
		{"80 two-byte runes", strings.Repeat("é", 80), true},
		{"99 three-byte runes", strings.Repeat("船", 99), true},
		{"100 two-byte runes", strings.Repeat("é", 100), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeDoc(t, dir, "resume.txt", tt.text)

			embedder := mock.NewMockEmbedder()
			indexer, _ := newTestIndexer(t, embedder)

			events, err := runSync(t, indexer, dir)
			require.NoError(t, err)
			if tt.wantSkip {
				assert.Contains(t, messages(events), "Skipping resume.txt (insufficient text)")
				assert.Zero(t, embedder.CallCount())
				return
			}
			assert.Contains(t, messages(events), "Indexed resume.txt")
			assert.Equal(t, 1, embedder.CallCount())
		})
	}
}

// reportingEmbedder never produces vectors and explains why.
type reportingEmbedder struct {
	*mock.MockEmbedder
}

func (reportingEmbedder) LastError() string { return "quota exceeded" }

func TestIndexer_AbortsAfterFailureStreak(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1.txt", "2.txt", "3.txt", "4.txt", "5.txt"} {
		writeDoc(t, dir, name, resumeText(name))
	}

	embedder := reportingEmbedder{mock.Unavailable()}
	indexer, stores := newTestIndexer(t, embedder)

	events, err := runSync(t, indexer, dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingStreak)
	assert.Equal(t, "embedding repeatedly failed while indexing. Last error: quota exceeded", err.Error())

	// The fourth file is never attempted
	assert.Equal(t, 3, embedder.CallCount())
	assert.Equal(t, []string{
		"Indexing 5 file(s)...",
		"Skipped 1.txt (embedding failed)",
		"Skipped 2.txt (embedding failed)",
		"Skipped 3.txt (embedding failed)",
	}, messages(events))

	needs, err := stores.Registry.NeedsProcessing(context.Background(), filepath.Join(dir, "1.txt"), time.Now())
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestIndexer_SuccessResetsStreak(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1-fail.txt", "2-fail.txt", "3-ok.txt", "4-fail.txt", "5-fail.txt"} {
		writeDoc(t, dir, name, resumeText(name))
	}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		if strings.Contains(texts[0], "-fail") {
			return nil, nil
		}
		return mock.DeterministicVectors(texts, mock.DefaultDimension), nil
	}
	indexer, _ := newTestIndexer(t, embedder)

	events, err := runSync(t, indexer, dir)
	require.NoError(t, err)
	assert.Equal(t, "Indexing complete.", events[len(events)-1].Message)
	assert.Equal(t, 5, embedder.CallCount())
}

func TestIndexer_FailureStreakOption(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "1.txt", resumeText("one"))
	writeDoc(t, dir, "2.txt", resumeText("two"))

	embedder := mock.Unavailable()
	indexer, _ := newTestIndexer(t, embedder, WithFailureStreak(1))

	_, err := runSync(t, indexer, dir)
	require.ErrorIs(t, err, ErrEmbeddingStreak)
	assert.Contains(t, err.Error(), "No details available.")
	assert.Equal(t, 1, embedder.CallCount())
}

func TestIndexer_EmptyFolderIsUpToDate(t *testing.T) {
	indexer, _ := newTestIndexer(t, mock.NewMockEmbedder())

	events, err := runSync(t, indexer, t.TempDir())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Index is up to date.", events[0].Message)
}

func TestIndexer_MissingFolder(t *testing.T) {
	indexer, _ := newTestIndexer(t, mock.NewMockEmbedder())

	_, err := runSync(t, indexer, filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIndexer_IndexStreamsAndReportsErrors(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1.txt", "2.txt", "3.txt"} {
		writeDoc(t, dir, name, resumeText(name))
	}

	indexer, _ := newTestIndexer(t, mock.Unavailable())

	var events []core.Event
	for e := range indexer.Index(context.Background(), dir, rank) {
		events = append(events, e)
	}
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, core.EventError, last.Type)
	assert.Contains(t, last.Message, "embedding repeatedly failed")
}

func TestIndexer_StopsOnCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", resumeText("alpha"))

	embedder := mock.NewMockEmbedder()
	indexer, _ := newTestIndexer(t, embedder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := indexer.IndexSync(ctx, dir, rank, func(core.Event) {})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, embedder.CallCount())
}
