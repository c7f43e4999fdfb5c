package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/types"
)

// Placeholder is the summary shown when a model classification fails.
const Placeholder = "⚠️ Summary unavailable"

const promptTemplate = `You are a financial news analyst. Read the stock market news below.

1. Summarize it for an investor in %s, in at most two sentences.
2. Classify its sentiment for the stock as positive, negative or neutral.

Reply with JSON only:
{"summary": "<summary in %s>", "sentiment": "<positive|negative|neutral>"}

If you cannot reply with JSON, use exactly this format:
SUMMARY: <summary in %s>
SENTIMENT: <positive|negative|neutral>

Title: %s
Body: %s`

// Prompted asks a text-generation service for a translated summary and a
// label.
type Prompted struct {
	completer interfaces.Completer
	language  string
}

var _ interfaces.Strategy = (*Prompted)(nil)

func NewPrompted(completer interfaces.Completer, language string) *Prompted {
	if language == "" {
		language = "Thai"
	}
	return &Prompted{completer: completer, language: language}
}

func (p *Prompted) Name() string { return "prompted" }

// BuildPrompt renders the instruction sent for one article.
func (p *Prompted) BuildPrompt(title, body string) string {
	return fmt.Sprintf(promptTemplate, p.language, p.language, p.language,
		strings.TrimSpace(title), strings.TrimSpace(body))
}

// Classify always returns a usable pair. On failure that pair is neutral
// with Placeholder, and the error says why (ErrProviderTimeout or
// ErrClassificationUnparseable).
func (p *Prompted) Classify(ctx context.Context, title, body string) (types.Sentiment, string, error) {
	reply, err := p.completer.Complete(ctx, p.BuildPrompt(title, body))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, types.ErrProviderTimeout) {
			return types.SentimentNeutral, Placeholder, fmt.Errorf("%w: %v", types.ErrProviderTimeout, err)
		}
		return types.SentimentNeutral, Placeholder, fmt.Errorf("completion failed: %w", err)
	}

	s, summary, err := ParseReply(reply)
	if err != nil {
		return types.SentimentNeutral, Placeholder, err
	}
	return s, summary, nil
}
