package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/extract"
	"github.com/poiesic/rankmatch/metrics"
	"github.com/poiesic/rankmatch/reasoning"
	"github.com/poiesic/rankmatch/retrieval"
	"github.com/poiesic/rankmatch/storage"
)

// Indexer brings a rank folder's embeddings up to date.
type Indexer interface {
	IndexSync(ctx context.Context, folder, rank string, emit func(core.Event)) error
}

// Retriever finds candidate chunks for queries.
type Retriever interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	SearchVector(ctx context.Context, vector []float32, rank string, topK int) (*core.CandidateSet, error)
	Fallback(ctx context.Context, rank, query string, topK int) (*core.CandidateSet, error)
	RetrieveAll(ctx context.Context, rank string, subQueries []string) ([]*core.CandidateSet, error)
}

// Reasoner judges one candidate.
type Reasoner interface {
	Reason(ctx context.Context, query string, chunks []core.Chunk, feedback []*core.FeedbackRecord) core.Decision
}

// Analyzer runs the index, retrieve, reason pipeline for a rank and query and
// reports progress as a stream of events.
type Analyzer struct {
	registry  storage.FileRegistry
	feedback  storage.FeedbackStore
	indexer   Indexer
	retriever Retriever
	reasoner  Reasoner
	config    Config
	logger    *slog.Logger

	// sleep waits between reasoning calls; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures an Analyzer.
type Option func(*Analyzer) error

// WithConfig sets the analysis tunables. The config is validated.
func WithConfig(cfg *Config) Option {
	return func(a *Analyzer) error {
		if cfg == nil {
			return nil
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		a.config = *cfg
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger.With("component", "analyzer")
		return nil
	}
}

// NewAnalyzer creates an analyzer from its collaborators.
func NewAnalyzer(
	registry storage.FileRegistry,
	feedback storage.FeedbackStore,
	indexer Indexer,
	retriever Retriever,
	reasoner Reasoner,
	opts ...Option,
) (*Analyzer, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if feedback == nil {
		return nil, ErrFeedbackStoreRequired
	}
	if indexer == nil {
		return nil, ErrIndexerRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if reasoner == nil {
		return nil, ErrReasonerRequired
	}

	a := &Analyzer{
		registry:  registry,
		feedback:  feedback,
		indexer:   indexer,
		retriever: retriever,
		reasoner:  reasoner,
		config:    *DefaultConfig(),
		logger:    slog.Default().With("component", "analyzer"),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Config returns a copy of the analyzer's tunables.
func (a *Analyzer) Config() Config {
	return a.config
}

// RankFolder returns the document folder of a rank.
func (a *Analyzer) RankFolder(rank string) string {
	return extract.RankFolder(a.config.DownloadRoot, rank)
}

// Analyze streams the analysis of rank against query. The stream ends with a
// complete or error event and is then closed. When ctx is cancelled the
// stream is closed without a terminal event.
func (a *Analyzer) Analyze(ctx context.Context, rank, query string) <-chan core.Event {
	events := make(chan core.Event, a.config.EventBuffer)
	r := &run{
		Analyzer: a,
		ctx:      ctx,
		events:   events,
		rank:     rank,
		query:    query,
		logger:   a.logger.With("run", uuid.NewString(), "rank", rank),
	}
	go func() {
		defer close(events)
		r.execute()
	}()
	return events
}

// run is the state of a single Analyze call.
type run struct {
	*Analyzer
	ctx    context.Context
	events chan<- core.Event
	rank   string
	query  string
	logger *slog.Logger
}

// send delivers an event unless the run was cancelled.
func (r *run) send(e core.Event) bool {
	if r.ctx.Err() != nil {
		return false
	}
	select {
	case <-r.ctx.Done():
		return false
	case r.events <- e:
		return true
	}
}

func (r *run) status(message string) bool {
	return r.send(core.StatusEvent(message))
}

func (r *run) fail(message string) {
	r.logger.Error("analysis failed", "message", message)
	r.send(core.ErrorEvent(message))
}

func (r *run) execute() {
	r.logger.Info("analysis started", "query", r.query)
	if !r.status("Initializing analysis...") {
		return
	}

	folder := r.RankFolder(r.rank)
	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		r.fail(fmt.Sprintf("Rank folder for '%s' not found.", r.rank))
		return
	}

	if !r.status("Scanning for new files...") {
		return
	}
	err := r.indexer.IndexSync(r.ctx, folder, r.rank, func(e core.Event) { r.send(e) })
	if r.ctx.Err() != nil {
		return
	}
	if err != nil {
		r.fail("Analysis failed: " + err.Error())
		return
	}

	candidates, ok := r.retrieve()
	if !ok {
		return
	}

	total := candidates.Len()
	if !r.send(core.CountedEvent(core.EventProgress, 0, total, fmt.Sprintf("Found %d candidates to analyze", total))) {
		return
	}

	feedback, err := r.feedback.RecentFeedback(r.ctx, r.query, r.config.FeedbackLimit)
	if err != nil {
		r.logger.Warn("error loading feedback, continuing without it", "err", err)
		feedback = nil
	}

	names := r.fileNames(folder)
	verified := []core.Match{}
	uncertain := []core.Match{}

	for i, resumeID := range candidates.IDs() {
		current := i + 1
		name, ok := names[resumeID]
		if !ok {
			name = core.ShortResumeID(resumeID)
		}

		if !r.send(core.CountedEvent(core.EventProgress, current, total, "Analyzing: "+name)) {
			return
		}

		decision := r.reasoner.Reason(r.ctx, r.query, candidates.Chunks(resumeID), feedback)
		if r.ctx.Err() != nil {
			return
		}

		bucket := reasoning.Route(decision, r.config.ConfidenceThreshold)
		metrics.CandidatesTotal.WithLabelValues(bucket.String()).Inc()
		match := core.Match{FileName: name, Reason: decision.Reason, Confidence: decision.Confidence}

		switch bucket {
		case reasoning.Verified:
			verified = append(verified, match)
			if !r.send(core.MatchEvent(core.EventMatchFound, match, current, total)) {
				return
			}
		case reasoning.Uncertain:
			uncertain = append(uncertain, match)
			if !r.send(core.MatchEvent(core.EventUncertainFound, match, current, total)) {
				return
			}
		}

		if current < total {
			if err := r.sleep(r.ctx, r.config.ReasoningDelay); err != nil {
				return
			}
		}
	}

	r.logger.Info("analysis complete", "candidates", total, "verified", len(verified), "uncertain", len(uncertain))
	r.send(core.CompleteEvent(verified, uncertain,
		fmt.Sprintf("Found %d verified, %d uncertain matches.", len(verified), len(uncertain))))
}

// retrieve selects the candidates for the query. It reports false when the
// run has ended, either by cancellation or after sending an error event.
func (r *run) retrieve() (*core.CandidateSet, bool) {
	plan := retrieval.PlanQuery(r.query)
	if plan.Compound {
		return r.retrieveCompound(plan)
	}

	if !r.status("Generating query embedding...") {
		return nil, false
	}
	vector, err := r.retriever.EmbedQuery(r.ctx, r.query)
	if err != nil {
		if r.ctx.Err() == nil {
			r.fail(err.Error())
		}
		return nil, false
	}

	var candidates *core.CandidateSet
	if vector == nil {
		if !r.status("Embedding unavailable. Switching to keyword fallback retrieval...") {
			return nil, false
		}
		r.logger.Warn("embedding unavailable, using keyword retrieval")
		candidates, err = r.retriever.Fallback(r.ctx, r.rank, r.query, r.config.FallbackTopK)
	} else {
		if !r.status("Searching vector database...") {
			return nil, false
		}
		candidates, err = r.retriever.SearchVector(r.ctx, vector, r.rank, r.config.SimpleTopK)
	}
	if r.ctx.Err() != nil {
		return nil, false
	}
	if err != nil {
		r.fail(err.Error())
		return nil, false
	}
	return candidates, true
}

func (r *run) retrieveCompound(plan retrieval.Plan) (*core.CandidateSet, bool) {
	n := len(plan.SubQueries)
	r.logger.Info("compound query", "operator", plan.Operator, "conditions", n)
	if !r.status(fmt.Sprintf("Detected compound query: %s logic with %d conditions", plan.Operator, n)) {
		return nil, false
	}
	for i, subQuery := range plan.SubQueries {
		if !r.status(fmt.Sprintf("Searching for condition %d/%d: '%s'", i+1, n, subQuery)) {
			return nil, false
		}
	}

	results, err := r.retriever.RetrieveAll(r.ctx, r.rank, plan.SubQueries)
	if r.ctx.Err() != nil {
		return nil, false
	}
	if err != nil {
		r.fail(err.Error())
		return nil, false
	}

	if !r.status(fmt.Sprintf("Combining results using %s logic...", plan.Operator)) {
		return nil, false
	}
	return retrieval.Merge(plan.Operator, results), true
}

// fileNames maps resume IDs to the base names of the folder's documents.
func (r *run) fileNames(folder string) map[string]string {
	names := make(map[string]string)
	paths, err := extract.ListDocuments(folder, r.config.Extensions)
	if err != nil {
		r.logger.Warn("error listing documents for names", "folder", folder, "err", err)
		return names
	}
	for _, path := range paths {
		resumeID, err := r.registry.GetResumeID(r.ctx, path)
		if err != nil {
			r.logger.Warn("error looking up resume id", "path", path, "err", err)
			continue
		}
		if _, ok := names[resumeID]; !ok {
			names[resumeID] = filepath.Base(path)
		}
	}
	return names
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
