package newsobs

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/trace"
	"vibe-stock-dashboard/internal/types"
)

// observableSource wraps a NewsSource with logging and tracing
type observableSource struct {
	source interfaces.NewsSource
}

var _ interfaces.NewsSource = (*observableSource)(nil)

func Wrap(source interfaces.NewsSource) interfaces.NewsSource {
	return &observableSource{source: source}
}

func (o *observableSource) Name() string { return o.source.Name() }

func (o *observableSource) FetchArticles(ctx context.Context, ticker string, maxCount int) ([]types.RawArticle, error) {
	ctx, span := trace.StartTickerSpan(ctx, "news.FetchArticles", ticker, attribute.String("news.source", o.source.Name()))
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching articles", "source", o.source.Name(), "ticker", ticker, "max", maxCount)

	articles, err := o.source.FetchArticles(ctx, ticker, maxCount)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch articles", err, "source", o.source.Name(), "ticker", ticker)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Articles fetched", "source", o.source.Name(), "ticker", ticker, "count", len(articles))
	return articles, nil
}
