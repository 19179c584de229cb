package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/rankmatch/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Completer implements ai.Completer using OpenAI-compatible chat APIs.
type Completer struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.Completer = (*Completer)(nil)

// newCompleter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ReasoningHost),
		openai.WithToken(token(config)),
		openai.WithModel(config.ReasoningModel),
	)
	if err != nil {
		return nil, err
	}

	return &Completer{
		client: client,
		logger: slog.Default().With("component", "openai-completer"),
	}, nil
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// Complete sends prompt as a single user message and returns the reply text.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("sending reasoning prompt", "length", len(prompt))

	reply, err := llms.GenerateFromSinglePrompt(ctx, c.client, prompt, llms.WithTemperature(0))
	if err != nil {
		c.logger.Error("completion failed", "err", err)
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", ai.ErrEmptyResponse
	}
	return reply, nil
}
