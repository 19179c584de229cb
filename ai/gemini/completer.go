package gemini

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/rankmatch/ai"
)

// Completer implements ai.Completer with GenerateContent.
type Completer struct {
	backend backend
	model   string
	guard   *guard
	logger  *slog.Logger
}

var _ ai.Completer = (*Completer)(nil)

// Complete sends prompt as a single text part and returns the reply text.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("sending reasoning prompt", "model", c.model, "length", len(prompt))

	result, err := c.guard.call(ctx, func() (any, error) {
		return c.backend.generate(ctx, c.model, prompt)
	})
	if err != nil {
		c.logger.Error("completion failed", "model", c.model, "err", err)
		return "", err
	}

	reply := result.(string)
	if strings.TrimSpace(reply) == "" {
		return "", ai.ErrEmptyResponse
	}
	return reply, nil
}
