package sentiment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/trace"
	"vibe-stock-dashboard/internal/types"
)

// StrategySkipped marks items whose body was empty and never classified.
const StrategySkipped = "skipped"

type Options struct {
	Workers     int
	ItemTimeout time.Duration
	// Sanitize cleans body text before classification. Defaults to
	// whitespace collapsing.
	Sanitize func(string) string
}

// Classifier runs a Strategy over batches of articles.
type Classifier struct {
	strategy interfaces.Strategy
	opts     Options
}

func NewClassifier(strategy interfaces.Strategy, opts Options) *Classifier {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.ItemTimeout <= 0 {
		opts.ItemTimeout = 20 * time.Second
	}
	if opts.Sanitize == nil {
		opts.Sanitize = collapseSpace
	}
	return &Classifier{strategy: strategy, opts: opts}
}

func (c *Classifier) StrategyName() string { return c.strategy.Name() }

type outcome struct {
	sentiment types.Sentiment
	summary   string
	err       error
}

// ClassifyOne classifies a single article. Failures degrade to neutral with
// Placeholder; the returned error is informational only.
func (c *Classifier) ClassifyOne(ctx context.Context, ticker string, a types.RawArticle) (types.NewsItem, error) {
	item := types.NewsItem{
		Title:       strings.TrimSpace(a.Title),
		Body:        c.opts.Sanitize(a.Description),
		URL:         a.URL,
		Source:      a.Source,
		PublishedAt: a.PublishedAt,
		Sentiment:   types.SentimentNeutral,
		Strategy:    c.strategy.Name(),
	}

	if item.Body == "" {
		item.Strategy = StrategySkipped
		logger.Headline(ctx, ticker, string(item.Sentiment), item.Strategy, item.Title)
		return item, nil
	}

	itemCtx, cancel := context.WithTimeout(ctx, c.opts.ItemTimeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		s, summary, err := c.strategy.Classify(itemCtx, item.Title, item.Body)
		done <- outcome{sentiment: s, summary: summary, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-itemCtx.Done():
		out = outcome{err: itemCtx.Err()}
	}

	if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) && !errors.Is(out.err, types.ErrProviderTimeout) {
		out.err = errors.Join(types.ErrProviderTimeout, out.err)
	}
	if out.err != nil || !out.sentiment.Valid() {
		item.Sentiment = types.SentimentNeutral
		item.Summary = Placeholder
		if out.err == nil {
			out.err = types.ErrClassificationUnparseable
		}
		logger.Warn(ctx, "Classification degraded to neutral",
			"ticker", ticker,
			"strategy", item.Strategy,
			"title", item.Title,
			"error", out.err,
		)
		logger.Headline(ctx, ticker, string(item.Sentiment), item.Strategy, item.Title, "degraded", true)
		return item, out.err
	}

	item.Sentiment = out.sentiment
	item.Summary = out.summary
	logger.Headline(ctx, ticker, string(item.Sentiment), item.Strategy, item.Title)
	return item, nil
}

// ClassifyBatch classifies articles concurrently and returns them in input
// order. Per-item failures never fail the batch. When ctx is cancelled it
// stops taking new items and returns the finished ones, still in input
// order, together with ctx.Err().
func (c *Classifier) ClassifyBatch(ctx context.Context, ticker string, articles []types.RawArticle) ([]types.NewsItem, error) {
	ctx, span := trace.StartSpan(ctx, "sentiment.ClassifyBatch")
	defer span.End()

	items := make([]types.NewsItem, len(articles))
	finished := make([]bool, len(articles))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(c.opts.Workers, len(articles)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				item, err := c.ClassifyOne(ctx, ticker, articles[i])
				// An item cut off by batch cancellation is not finished.
				if err != nil && ctx.Err() != nil {
					continue
				}
				items[i] = item
				finished[i] = true
			}
		}()
	}

feed:
	for i := range articles {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		partial := make([]types.NewsItem, 0, len(items))
		for i, ok := range finished {
			if ok {
				partial = append(partial, items[i])
			}
		}
		logger.Warn(ctx, "Classification batch cancelled",
			"ticker", ticker,
			"finished", len(partial),
			"total", len(articles),
		)
		return partial, err
	}
	return items, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
