package analysis

import (
	"context"
	"fmt"

	"github.com/poiesic/rankmatch/core"
)

// Run performs a full analysis and aggregates the stream into a report.
// A failed analysis is reported with Success false and a nil error; the
// error is reserved for cancellation and interrupted streams.
func (a *Analyzer) Run(ctx context.Context, rank, query string) (*core.Report, error) {
	verified := []core.Match{}
	uncertain := []core.Match{}

	for event := range a.Analyze(ctx, rank, query) {
		switch event.Type {
		case core.EventMatchFound:
			verified = append(verified, *event.Match)
		case core.EventUncertainFound:
			uncertain = append(uncertain, *event.Match)
		case core.EventComplete:
			return &core.Report{
				Success:   true,
				Verified:  verified,
				Uncertain: uncertain,
				Message:   event.Message,
			}, nil
		case core.EventError:
			return &core.Report{
				Success:   false,
				Verified:  []core.Match{},
				Uncertain: []core.Match{},
				Message:   event.Message,
			}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrStreamInterrupted
}

// StoreFeedback validates and records a user's correction of a decision.
func (a *Analyzer) StoreFeedback(ctx context.Context, record *core.FeedbackRecord) error {
	if err := core.ValidateFeedbackRecord(record); err != nil {
		return err
	}
	if err := a.feedback.AddFeedback(ctx, record); err != nil {
		return fmt.Errorf("storing feedback: %w", err)
	}
	a.logger.Info("feedback stored", "file", record.FileName, "user", record.UserDecision, "llm", record.LLMDecision)
	return nil
}
