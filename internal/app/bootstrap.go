package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"vibe-stock-dashboard/internal/cache"
	"vibe-stock-dashboard/internal/dashboard"
	"vibe-stock-dashboard/internal/indicator"
	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/llm"
	"vibe-stock-dashboard/internal/llm/claude"
	"vibe-stock-dashboard/internal/llm/llmobs"
	"vibe-stock-dashboard/internal/llm/noop"
	"vibe-stock-dashboard/internal/llm/openai"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/market"
	"vibe-stock-dashboard/internal/market/marketobs"
	"vibe-stock-dashboard/internal/news"
	"vibe-stock-dashboard/internal/news/newsobs"
	"vibe-stock-dashboard/internal/recorder"
	"vibe-stock-dashboard/internal/sentiment"
	"vibe-stock-dashboard/internal/store"
)

// App holds the wired dashboard and everything that must be closed with it.
type App struct {
	Config    *store.Config
	Dashboard *dashboard.Service
	Cache     interfaces.Cache
	Recorder  interfaces.Recorder
}

// Build wires providers, classifier, cache and recorder from cfg. Missing
// credentials degrade to the keyless providers instead of failing.
func Build(ctx context.Context, cfg *store.Config) (*App, error) {
	rec, err := initializeRecorder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c, err := initializeCache(ctx, cfg)
	if err != nil {
		rec.Close()
		return nil, err
	}

	engine := initializeIndicators(ctx, cfg)
	classifier := initializeClassifier(ctx, cfg)
	feed := news.NewService(initializeNewsSource(ctx, cfg), classifier, rec, &news.ServiceConfig{
		MaxArticles:  cfg.Classifier.MaxArticles,
		FetchTimeout: cfg.NewsTimeout(),
		Enabled:      true,
	})

	dash := dashboard.NewService(dashboard.Config{
		Stocks:      cfg.Stocks,
		TTL:         cfg.BoardTTL(),
		Bucket:      cfg.CacheBucket(),
		Concurrency: cfg.Dashboard.Concurrency,
	}, engine, feed, c)

	logger.Info(ctx, "Dashboard wired",
		"stocks", len(cfg.Stocks),
		"market", cfg.Market.Provider,
		"news", cfg.News.Providers,
		"strategy", classifier.StrategyName(),
		"cache", cfg.Cache.Backend,
		"recorder", cfg.Recorder.Driver,
	)
	return &App{Config: cfg, Dashboard: dash, Cache: c, Recorder: rec}, nil
}

func (a *App) Close() error {
	return errors.Join(a.Cache.Close(), a.Recorder.Close())
}

// initializeIndicators picks the price source and keeps the static series
// as the synthetic fallback.
func initializeIndicators(ctx context.Context, cfg *store.Config) *indicator.Engine {
	var live interfaces.MarketData
	switch cfg.Market.Provider {
	case "KITE":
		k, err := market.NewKite(market.KiteParams{
			APIKey:      os.Getenv("KITE_API_KEY"),
			AccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
			Exchange:    cfg.Market.Exchange,
		})
		if err != nil {
			logger.Warn(ctx, "Kite unavailable, falling back to Yahoo", "error", err)
			live = market.NewYahoo(cfg.MarketTimeout())
		} else {
			live = k
		}
	case "STATIC":
		logger.Warn(ctx, "Using STATIC price data - indicators are synthetic")
		live = market.NewStatic()
	default:
		live = market.NewYahoo(cfg.MarketTimeout())
	}

	return indicator.NewEngine(indicator.Params{
		RSIPeriod:    cfg.Indicators.RSIPeriod,
		EMAPeriod:    cfg.Indicators.EMAPeriod,
		LookbackDays: cfg.Market.LookbackDays,
		Timeout:      cfg.MarketTimeout(),
	}, marketobs.Wrap(live), market.NewStatic())
}

// initializeNewsSource chains the configured providers in order; the
// scraper is always the last resort.
func initializeNewsSource(ctx context.Context, cfg *store.Config) interfaces.NewsSource {
	timeout := cfg.NewsTimeout()
	var sources []interfaces.NewsSource
	scrape := false

	for _, p := range cfg.News.Providers {
		switch p {
		case "NEWSAPI":
			if key := os.Getenv("NEWS_API_KEY"); key != "" {
				sources = append(sources, newsobs.Wrap(news.NewNewsAPI(key, cfg.News.Language, timeout)))
			} else {
				logger.Warn(ctx, "NEWS_API_KEY not set, skipping NewsAPI")
			}
		case "FINNHUB":
			if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
				sources = append(sources, newsobs.Wrap(news.NewFinnHub(key, "")))
			} else {
				logger.Warn(ctx, "FINNHUB_API_KEY not set, skipping Finnhub")
			}
		case "ALPHAVANTAGE":
			if key := os.Getenv("ALPHA_VANTAGE_API_KEY"); key != "" {
				sources = append(sources, newsobs.Wrap(news.NewAlphaVantage(key, timeout)))
			} else {
				logger.Warn(ctx, "ALPHA_VANTAGE_API_KEY not set, skipping Alpha Vantage")
			}
		case "SCRAPE":
			scrape = true
		}
	}
	if scrape || len(sources) == 0 {
		sources = append(sources, newsobs.Wrap(news.NewScraper(timeout)))
	}
	if len(sources) == 1 {
		return sources[0]
	}
	return news.NewFallback(sources...)
}

func initializeCompleter(ctx context.Context, cfg *store.Config) (interfaces.Completer, error) {
	var (
		c   interfaces.Completer
		err error
	)
	switch cfg.LLM.Provider {
	case "OPENAI":
		c, err = openai.NewCompleter(openai.Params{
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
	case "CLAUDE":
		c, err = claude.NewCompleter(claude.Params{
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
	default:
		return noop.NewCompleter(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s completer: %w", cfg.LLM.Provider, err)
	}
	return llm.WithRateLimit(llmobs.Wrap(cfg.LLM.Provider, c), llm.PerMinute(cfg.LLM.RequestsPerMinute)), nil
}

// initializeClassifier falls back to the lexical strategy when the
// configured language model cannot be reached.
func initializeClassifier(ctx context.Context, cfg *store.Config) *sentiment.Classifier {
	opts := sentiment.Options{
		Workers:     cfg.Classifier.Workers,
		ItemTimeout: cfg.ItemTimeout(),
		Sanitize:    news.SanitizeText,
	}

	if cfg.Classifier.Strategy == "PROMPTED" {
		completer, err := initializeCompleter(ctx, cfg)
		if err == nil {
			return sentiment.NewClassifier(sentiment.NewPrompted(completer, cfg.LLM.TargetLanguage), opts)
		}
		logger.Warn(ctx, "Prompted classifier unavailable, using lexical scoring", "error", err)
	}
	return sentiment.NewClassifier(sentiment.NewLexical(), opts)
}

func initializeCache(ctx context.Context, cfg *store.Config) (interfaces.Cache, error) {
	if cfg.Cache.Backend == "REDIS" {
		r, err := cache.NewRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return r, nil
	}
	return cache.NewMemory(time.Minute), nil
}

func initializeRecorder(ctx context.Context, cfg *store.Config) (interfaces.Recorder, error) {
	var driver string
	switch cfg.Recorder.Driver {
	case "SQLITE":
		driver = recorder.DriverSQLite
	case "POSTGRES":
		driver = recorder.DriverPostgres
	default:
		return recorder.Noop{}, nil
	}
	r, err := recorder.Open(ctx, driver, cfg.Recorder.DSN)
	if err != nil {
		return nil, fmt.Errorf("news recorder: %w", err)
	}
	return r, nil
}
