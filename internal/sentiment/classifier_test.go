package sentiment

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"vibe-stock-dashboard/internal/types"
)

type fakeCompleter struct {
	reply string
	err   error
	block bool
	calls atomic.Int32
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func articles(bodies ...string) []types.RawArticle {
	out := make([]types.RawArticle, len(bodies))
	for i, b := range bodies {
		out[i] = types.RawArticle{Title: "headline " + string(rune('A'+i)), Description: b, URL: "https://example.com/" + string(rune('a'+i))}
	}
	return out
}

func TestClassifyBatchLexicalKeepsOrder(t *testing.T) {
	c := NewClassifier(NewLexical(), Options{Workers: 3})
	items, err := c.ClassifyBatch(context.Background(), "AAPL", articles(upbeatBody, downbeatBody, "   "))
	if err != nil {
		t.Fatalf("ClassifyBatch: %v", err)
	}

	want := []types.Sentiment{types.SentimentPositive, types.SentimentNegative, types.SentimentNeutral}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].Sentiment != w {
			t.Errorf("items[%d] = %s, want %s", i, items[i].Sentiment, w)
		}
		if items[i].Title != articles(upbeatBody, downbeatBody, "")[i].Title {
			t.Errorf("items[%d] out of order: %s", i, items[i].Title)
		}
	}
	if items[2].Summary != "" || items[2].Strategy != StrategySkipped {
		t.Errorf("empty body item = %+v", items[2])
	}
}

func TestEmptyBodySkipsBothStrategies(t *testing.T) {
	fc := &fakeCompleter{reply: `{"summary":"x","sentiment":"positive"}`}
	for _, c := range []*Classifier{
		NewClassifier(NewLexical(), Options{}),
		NewClassifier(NewPrompted(fc, "Thai"), Options{}),
	} {
		for _, body := range []string{"", " \n\t "} {
			item, err := c.ClassifyOne(context.Background(), "MSFT", types.RawArticle{Title: "t", Description: body})
			if err != nil {
				t.Fatalf("%s: unexpected error %v", c.StrategyName(), err)
			}
			if item.Sentiment != types.SentimentNeutral || item.Summary != "" {
				t.Errorf("%s: got (%s, %q), want (neutral, \"\")", c.StrategyName(), item.Sentiment, item.Summary)
			}
		}
	}
	if fc.calls.Load() != 0 {
		t.Errorf("completer called %d times for empty bodies", fc.calls.Load())
	}
}

func TestPromptedBatchDegradesPerItem(t *testing.T) {
	tests := []struct {
		name    string
		fc      *fakeCompleter
		wantErr error
	}{
		{"malformed reply", &fakeCompleter{reply: "I think the stock looks fine."}, types.ErrClassificationUnparseable},
		{"service error", &fakeCompleter{err: errors.New("502 bad gateway")}, nil},
		{"timeout", &fakeCompleter{block: true}, types.ErrProviderTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(NewPrompted(tt.fc, "Thai"), Options{Workers: 2, ItemTimeout: 30 * time.Millisecond})

			items, err := c.ClassifyBatch(context.Background(), "TSLA", articles(upbeatBody, downbeatBody))
			if err != nil {
				t.Fatalf("batch must not fail, got %v", err)
			}
			for i, it := range items {
				if it.Sentiment != types.SentimentNeutral || it.Summary != Placeholder {
					t.Errorf("items[%d] = (%s, %q), want neutral placeholder", i, it.Sentiment, it.Summary)
				}
			}

			_, oneErr := c.ClassifyOne(context.Background(), "TSLA", articles(upbeatBody)[0])
			if oneErr == nil {
				t.Fatal("expected an informational error from ClassifyOne")
			}
			if tt.wantErr != nil && !errors.Is(oneErr, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, oneErr)
			}
		})
	}
}

func TestPromptedUsesParsedReply(t *testing.T) {
	fc := &fakeCompleter{reply: "SUMMARY: กำไรไตรมาสนี้สูงเป็นประวัติการณ์\nSENTIMENT: positive"}
	c := NewClassifier(NewPrompted(fc, "Thai"), Options{})

	item, err := c.ClassifyOne(context.Background(), "AAPL", articles(downbeatBody)[0])
	if err != nil {
		t.Fatalf("ClassifyOne: %v", err)
	}
	if item.Sentiment != types.SentimentPositive || item.Summary != "กำไรไตรมาสนี้สูงเป็นประวัติการณ์" {
		t.Errorf("got (%s, %q)", item.Sentiment, item.Summary)
	}
	if item.Strategy != "prompted" {
		t.Errorf("Strategy = %s", item.Strategy)
	}
}

// gatedStrategy finishes "headline A" at once and blocks on anything else
// until its context ends.
type gatedStrategy struct {
	started chan string
}

func (g *gatedStrategy) Name() string { return "gated" }

func (g *gatedStrategy) Classify(ctx context.Context, title, body string) (types.Sentiment, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	if title == "headline A" {
		return types.SentimentPositive, body, nil
	}
	g.started <- title
	<-ctx.Done()
	return "", "", ctx.Err()
}

func TestClassifyBatchCancellationReturnsFinished(t *testing.T) {
	g := &gatedStrategy{started: make(chan string, 3)}
	c := NewClassifier(g, Options{Workers: 1, ItemTimeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-g.started
		cancel()
	}()

	items, err := c.ClassifyBatch(ctx, "NVDA", articles(upbeatBody, downbeatBody, upbeatBody))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(items) != 1 || items[0].Title != "headline A" || items[0].Sentiment != types.SentimentPositive {
		t.Fatalf("expected only the first item, got %+v", items)
	}
}

func TestBuildPromptMentionsLanguageAndMarkers(t *testing.T) {
	p := NewPrompted(&fakeCompleter{}, "Thai")
	prompt := p.BuildPrompt("Apple beats", "Revenue up")
	for _, want := range []string{"Thai", "SUMMARY:", "SENTIMENT:", "Apple beats", "Revenue up"} {
		if !contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func contains(s, sub string) bool {
	return len(sub) == 0 || indexFold(s, sub) >= 0
}
