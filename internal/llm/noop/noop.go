package noop

import (
	"context"
	"errors"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
)

// ErrNotConfigured is returned by every call; callers degrade to their
// placeholder output.
var ErrNotConfigured = errors.New("no language model configured")

// Completer is the fallback used when no LLM provider is configured.
type Completer struct{}

var _ interfaces.Completer = (*Completer)(nil)

func NewCompleter() *Completer {
	return &Completer{}
}

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	logger.Debug(ctx, "Noop completer called", "prompt_len", len(prompt))
	return "", ErrNotConfigured
}
