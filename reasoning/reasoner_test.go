package reasoning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/rankmatch/ai/mock"
	"github.com/poiesic/rankmatch/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReasoner(t *testing.T, completer *mock.MockCompleter, opts ...Option) *Reasoner {
	t.Helper()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	r, err := NewReasoner(completer, opts...)
	require.NoError(t, err)
	return r
}

func reasoningSamples(t *testing.T) uint64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "rankmatch_reasoning_duration_seconds" {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	return 0
}

func TestNewReasoner(t *testing.T) {
	_, err := NewReasoner(nil)
	assert.ErrorIs(t, err, ErrCompleterRequired)

	_, err = NewReasoner(mock.NewMockCompleter(""), WithRetry(0, time.Second))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestReasoner_Reason(t *testing.T) {
	completer := mock.NewMockCompleter(`{"is_match": true, "reason": "Valid B1/B2 visa", "confidence": 0.82}`)
	r := newTestReasoner(t, completer)

	before := reasoningSamples(t)
	decision := r.Reason(context.Background(), "US visa", []core.Chunk{{Text: "B1/B2 visa to 2027"}}, nil)

	assert.Equal(t, core.Decision{IsMatch: true, Reason: "Valid B1/B2 visa", Confidence: 0.82}, decision)
	require.Equal(t, 1, completer.CallCount())
	assert.Contains(t, completer.Prompts()[0], "B1/B2 visa to 2027")
	assert.Equal(t, before+1, reasoningSamples(t))
}

func TestReasoner_FailuresAreInconclusive(t *testing.T) {
	tests := []struct {
		name     string
		complete func(context.Context, string) (string, error)
	}{
		{"transport error", func(context.Context, string) (string, error) { return "", errors.New("503") }},
		{"no json", func(context.Context, string) (string, error) { return "I am not sure.", nil }},
		{"malformed json", func(context.Context, string) (string, error) { return `{"is_match": ???}`, nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &mock.MockCompleter{CompleteFunc: tt.complete}
			r := newTestReasoner(t, completer)

			decision := r.Reason(context.Background(), "US visa", nil, nil)
			assert.Equal(t, Inconclusive(), decision)
			assert.Equal(t, Drop, Route(decision, DefaultConfidenceThreshold))
		})
	}
}

func TestReasoner_RetriesBadReplies(t *testing.T) {
	calls := 0
	completer := &mock.MockCompleter{
		CompleteFunc: func(context.Context, string) (string, error) {
			calls++
			if calls == 1 {
				return "garbage", nil
			}
			return `{"is_match": false, "reason": "Visa expired in 2023", "confidence": 0.2}`, nil
		},
	}
	r := newTestReasoner(t, completer, WithRetry(2, time.Millisecond))

	decision := r.Reason(context.Background(), "US visa", nil, nil)
	assert.Equal(t, core.Decision{IsMatch: false, Reason: "Visa expired in 2023", Confidence: 0.2}, decision)
	assert.Equal(t, 2, completer.CallCount())
}

func TestReasoner_CancelledContext(t *testing.T) {
	completer := mock.NewMockCompleter(`{"is_match": true, "confidence": 1}`)
	r := newTestReasoner(t, completer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, Inconclusive(), r.Reason(ctx, "US visa", nil, nil))
	assert.Zero(t, completer.CallCount())
}
