package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/trace"
)

const (
	defaultModel  = openai.ChatModelGPT4oMini
	systemMessage = "You are a financial news analyst. Follow the requested reply format exactly."
)

type Params struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	// BaseURL points the client at a proxy or a test server.
	BaseURL string
}

// Completer sends a single-turn chat completion to OpenAI.
type Completer struct {
	client *openai.Client
	p      Params
}

var _ interfaces.Completer = (*Completer)(nil)

// NewCompleter falls back to OPENAI_API_KEY when p.APIKey is empty.
func NewCompleter(p Params) (*Completer, error) {
	if p.APIKey == "" {
		p.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if p.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY missing")
	}
	if p.Model == "" {
		p.Model = string(defaultModel)
	}

	opts := []option.RequestOption{option.WithAPIKey(p.APIKey), option.WithMaxRetries(1)}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &Completer{client: &client, p: p}, nil
}

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.p.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemMessage),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.p.Temperature),
	}
	if c.p.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.p.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from openai")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
