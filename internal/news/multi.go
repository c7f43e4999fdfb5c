package news

import (
	"context"
	"errors"
	"fmt"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/types"
)

// Fallback asks each source in order and returns the first non-empty list.
type Fallback struct {
	sources []interfaces.NewsSource
}

var _ interfaces.NewsSource = (*Fallback)(nil)

func NewFallback(sources ...interfaces.NewsSource) *Fallback {
	return &Fallback{sources: sources}
}

func (f *Fallback) Name() string { return "fallback" }

func (f *Fallback) FetchArticles(ctx context.Context, ticker string, maxCount int) ([]types.RawArticle, error) {
	var errs []error
	for _, src := range f.sources {
		articles, err := src.FetchArticles(ctx, ticker, maxCount)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(articles) > 0 {
			return articles, nil
		}
		logger.Info(ctx, "No articles from source, trying next", "source", src.Name(), "ticker", ticker)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return []types.RawArticle{}, nil
}
