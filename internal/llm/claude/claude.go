package claude

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/trace"
)

const (
	defaultModel     = anthropic.ModelClaudeHaiku4_5
	defaultMaxTokens = 400
	systemMessage    = "You are a financial news analyst. Follow the requested reply format exactly."
)

type Params struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	BaseURL     string
}

// Completer implements interfaces.Completer on the Anthropic Messages API.
type Completer struct {
	client *anthropic.Client
	p      Params
}

var _ interfaces.Completer = (*Completer)(nil)

// NewCompleter reads CLAUDE_API_KEY, then ANTHROPIC_API_KEY, when p.APIKey
// is empty. CLAUDE_API_ENDPOINT overrides the base URL.
func NewCompleter(p Params) (*Completer, error) {
	if p.APIKey == "" {
		p.APIKey = os.Getenv("CLAUDE_API_KEY")
	}
	if p.APIKey == "" {
		p.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if p.APIKey == "" {
		return nil, errors.New("CLAUDE_API_KEY missing")
	}
	if p.Model == "" {
		p.Model = string(defaultModel)
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = defaultMaxTokens
	}
	if p.BaseURL == "" {
		p.BaseURL = os.Getenv("CLAUDE_API_ENDPOINT")
	}

	opts := []option.RequestOption{option.WithAPIKey(p.APIKey), option.WithMaxRetries(1)}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	return &Completer{client: &client, p: p}, nil
}

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.p.Model),
		MaxTokens: int64(c.p.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemMessage},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(c.p.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("no response from anthropic")
	}
	return strings.TrimSpace(sb.String()), nil
}
