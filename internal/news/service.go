package news

import (
	"context"
	"errors"
	"time"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/sentiment"
	"vibe-stock-dashboard/internal/types"
)

// Service fetches a ticker's latest articles and classifies them.
type Service struct {
	source     interfaces.NewsSource
	classifier *sentiment.Classifier
	recorder   interfaces.Recorder
	cfg        *ServiceConfig
}

type ServiceConfig struct {
	MaxArticles  int           // articles per ticker
	FetchTimeout time.Duration // bound on the provider call
	Enabled      bool
}

func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxArticles:  3,
		FetchTimeout: 10 * time.Second,
		Enabled:      true,
	}
}

// Result is one ticker's classified headlines.
type Result struct {
	Items []types.NewsItem
	// Partial is set when classification was cancelled midway.
	Partial bool
	// FetchErr is set when the provider failed; Items is then empty.
	FetchErr error
}

// NewService wires a source and classifier. recorder may be nil.
func NewService(source interfaces.NewsSource, classifier *sentiment.Classifier, recorder interfaces.Recorder, cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	return &Service{source: source, classifier: classifier, recorder: recorder, cfg: cfg}
}

// Headlines never fails: provider errors and timeouts yield an empty list
// with FetchErr set, and a cancelled batch keeps what was finished.
func (s *Service) Headlines(ctx context.Context, ticker string) Result {
	if !s.cfg.Enabled || s.source == nil {
		return Result{Items: []types.NewsItem{}}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	articles, err := s.source.FetchArticles(fetchCtx, ticker, s.cfg.MaxArticles)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, types.ErrProviderTimeout) {
			err = errors.Join(types.ErrProviderTimeout, err)
		}
		logger.ErrorWithErr(ctx, "Failed to fetch news", err, "ticker", ticker)
		return Result{Items: []types.NewsItem{}, FetchErr: err}
	}
	if len(articles) > s.cfg.MaxArticles {
		articles = articles[:s.cfg.MaxArticles]
	}

	items, err := s.classifier.ClassifyBatch(ctx, ticker, articles)
	res := Result{Items: items, Partial: err != nil}
	if err != nil {
		logger.Warn(ctx, "News classification cut short", "ticker", ticker, "finished", len(items), "error", err)
	}

	if s.recorder != nil && len(items) > 0 {
		// Recording must not depend on the caller still waiting.
		recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.recorder.RecordNews(recCtx, ticker, items); err != nil {
			logger.ErrorWithErr(ctx, "Failed to record headlines", err, "ticker", ticker)
		}
	}
	return res
}

// History returns previously recorded headlines, newest first.
func (s *Service) History(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error) {
	if s.recorder == nil {
		return []types.NewsItem{}, nil
	}
	return s.recorder.RecentNews(ctx, ticker, limit)
}
