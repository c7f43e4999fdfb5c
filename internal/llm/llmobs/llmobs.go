package llmobs

import (
	"context"
	"time"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/trace"
)

// observableCompleter wraps a Completer with observability (logging & tracing)
type observableCompleter struct {
	completer interfaces.Completer
	provider  string
}

// Compile-time interface check
var _ interfaces.Completer = (*observableCompleter)(nil)

// Wrap wraps a completer with observability middleware
func Wrap(provider string, completer interfaces.Completer) interfaces.Completer {
	return &observableCompleter{completer: completer, provider: provider}
}

func (oc *observableCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Complete")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting completion",
		"provider", oc.provider,
		"prompt_len", len(prompt),
	)

	start := time.Now()
	reply, err := oc.completer.Complete(ctx, prompt)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Completion failed", err,
			"provider", oc.provider,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	logger.DebugSkip(ctx, 1, "Completion received",
		"provider", oc.provider,
		"reply_len", len(reply),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}
