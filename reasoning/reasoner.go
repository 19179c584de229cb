package reasoning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/rankmatch/ai"
	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/metrics"
)

// Defaults for Reasoner tunables.
const (
	DefaultMaxAttempts = 1
	DefaultRetryDelay  = time.Second
)

// Reasoner judges whether a candidate satisfies a query.
type Reasoner struct {
	completer   ai.Completer
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// Option configures a Reasoner.
type Option func(*Reasoner) error

// WithRetry sets how many times a failed completion or unparseable reply is
// retried, and the initial backoff delay.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(r *Reasoner) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		r.maxAttempts = maxAttempts
		r.retryDelay = delay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reasoner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "reasoner")
		return nil
	}
}

// NewReasoner creates a reasoner backed by completer.
func NewReasoner(completer ai.Completer, opts ...Option) (*Reasoner, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}

	r := &Reasoner{
		completer:   completer,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		logger:      slog.Default().With("component", "reasoner"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Reason asks the model for a verdict on the candidate's chunks. It never
// fails: transport and parse errors yield Inconclusive.
func (r *Reasoner) Reason(ctx context.Context, query string, chunks []core.Chunk, feedback []*core.FeedbackRecord) core.Decision {
	start := time.Now()
	defer func() {
		metrics.ReasoningDuration.Observe(time.Since(start).Seconds())
	}()

	prompt := BuildPrompt(query, chunks, feedback)
	decision, err := RetryWithBackoff(ctx, r.logger, r.maxAttempts, r.retryDelay, func(ctx context.Context) (core.Decision, error) {
		reply, err := r.completer.Complete(ctx, prompt)
		if err != nil {
			return core.Decision{}, fmt.Errorf("completing: %w", err)
		}
		decision, err := ParseDecision(reply)
		if err != nil {
			r.logger.Warn("error parsing reasoning reply", "reply", reply, "err", err)
			return core.Decision{}, err
		}
		return decision, nil
	})
	if err != nil {
		r.logger.Error("reasoning failed", "chunks", len(chunks), "err", err)
		return Inconclusive()
	}

	r.logger.Debug("reasoned", "match", decision.IsMatch, "confidence", decision.Confidence)
	return decision
}
