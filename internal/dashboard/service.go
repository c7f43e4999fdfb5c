package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/news"
	"vibe-stock-dashboard/internal/types"
)

// ErrUnknownStock is returned for tickers missing from the catalogue.
var ErrUnknownStock = errors.New("unknown stock")

// Indicators produces the indicator half of a board. It never fails.
type Indicators interface {
	Analyze(ctx context.Context, ticker string) types.IndicatorResult
}

// NewsFeed produces the news half of a board.
type NewsFeed interface {
	Headlines(ctx context.Context, ticker string) news.Result
	History(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error)
}

type Config struct {
	Stocks []types.Stock
	// TTL bounds how long a cached board is served.
	TTL time.Duration
	// Bucket groups requests into time windows; each window gets its own
	// cache key so a board is rebuilt at least once per bucket.
	Bucket time.Duration
	// Concurrency caps how many stocks are built at once.
	Concurrency int
}

// Service implements interfaces.Dashboard. It owns the board cache and
// collapses concurrent builds of the same board.
type Service struct {
	cfg        Config
	indicators Indicators
	news       NewsFeed
	cache      interfaces.Cache
	now        func() time.Time

	mu       sync.Mutex
	inflight map[string]*call
}

type call struct {
	done  chan struct{}
	board types.Board
}

var _ interfaces.Dashboard = (*Service)(nil)

func NewService(cfg Config, indicators Indicators, feed NewsFeed, cache interfaces.Cache) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.Bucket <= 0 {
		cfg.Bucket = 10 * time.Minute
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Service{
		cfg:        cfg,
		indicators: indicators,
		news:       feed,
		cache:      cache,
		now:        time.Now,
		inflight:   make(map[string]*call),
	}
}

func (s *Service) Stocks(category types.Category) []types.Stock {
	out := []types.Stock{}
	for _, st := range s.cfg.Stocks {
		if category == "" || st.Category == category {
			out = append(out, st)
		}
	}
	return out
}

func (s *Service) lookup(ticker string) (types.Stock, error) {
	for _, st := range s.cfg.Stocks {
		if strings.EqualFold(st.Ticker, ticker) {
			return st, nil
		}
	}
	return types.Stock{}, fmt.Errorf("%w: %s", ErrUnknownStock, ticker)
}

func (s *Service) cacheKey(ticker string) string {
	bucket := s.now().Truncate(s.cfg.Bucket).Unix()
	return fmt.Sprintf("board:%s:%d", ticker, bucket)
}

// Board serves from cache when possible and otherwise builds and caches.
func (s *Service) Board(ctx context.Context, ticker string) (types.Board, error) {
	stock, err := s.lookup(ticker)
	if err != nil {
		return types.Board{}, err
	}

	key := s.cacheKey(stock.Ticker)
	if b, ok := s.cached(ctx, key); ok {
		logger.Debug(ctx, "Board served from cache", "ticker", stock.Ticker, "key", key)
		return b, nil
	}
	return s.buildOnce(ctx, key, stock), nil
}

// Refresh always rebuilds and overwrites the cached board.
func (s *Service) Refresh(ctx context.Context, ticker string) (types.Board, error) {
	stock, err := s.lookup(ticker)
	if err != nil {
		return types.Board{}, err
	}
	key := s.cacheKey(stock.Ticker)
	b := s.build(ctx, stock)
	s.store(ctx, key, b)
	return b, nil
}

// Boards builds every stock in category concurrently, preserving
// catalogue order.
func (s *Service) Boards(ctx context.Context, category types.Category) ([]types.Board, error) {
	stocks := s.Stocks(category)
	boards := make([]types.Board, len(stocks))
	errs := make([]error, len(stocks))

	s.forEach(ctx, stocks, func(i int, st types.Stock) {
		boards[i], errs[i] = s.Board(ctx, st.Ticker)
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return boards, nil
}

// RefreshAll rebuilds every configured board. It is the scheduler's task.
func (s *Service) RefreshAll(ctx context.Context) error {
	stocks := s.Stocks("")
	errs := make([]error, len(stocks))
	s.forEach(ctx, stocks, func(i int, st types.Stock) {
		_, errs[i] = s.Refresh(ctx, st.Ticker)
	})
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Service) History(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error) {
	stock, err := s.lookup(ticker)
	if err != nil {
		return nil, err
	}
	return s.news.History(ctx, stock.Ticker, limit)
}

func (s *Service) forEach(ctx context.Context, stocks []types.Stock, fn func(int, types.Stock)) {
	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup
	for i, st := range stocks {
		wg.Add(1)
		go func(i int, st types.Stock) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
			}
			fn(i, st)
		}(i, st)
	}
	wg.Wait()
}

// buildOnce shares a single build among concurrent callers for the same key.
func (s *Service) buildOnce(ctx context.Context, key string, stock types.Stock) types.Board {
	s.mu.Lock()
	if c, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		select {
		case <-c.done:
			return c.board
		case <-ctx.Done():
			return s.build(ctx, stock)
		}
	}
	c := &call{done: make(chan struct{})}
	s.inflight[key] = c
	s.mu.Unlock()

	c.board = s.build(ctx, stock)
	s.store(ctx, key, c.board)

	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
	close(c.done)
	return c.board
}

func (s *Service) build(ctx context.Context, stock types.Stock) types.Board {
	timer := logger.StartOperation(ctx, "dashboard.build", "ticker", stock.Ticker)
	ctx = timer.GetContext()

	var (
		wg   sync.WaitGroup
		ind  types.IndicatorResult
		feed news.Result
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ind = s.indicators.Analyze(ctx, stock.Ticker)
	}()
	go func() {
		defer wg.Done()
		feed = s.news.Headlines(ctx, stock.Ticker)
	}()
	wg.Wait()

	items := feed.Items
	if items == nil {
		items = []types.NewsItem{}
	}
	b := types.Board{
		Stock:       stock,
		Indicators:  ind,
		News:        items,
		GeneratedAt: s.now().UTC(),
		Partial:     feed.Partial,

		NewsUnavailable: feed.FetchErr != nil,
	}
	timer.End("synthetic", ind.Synthetic(), "news", len(items), "partial", feed.Partial, "news_unavailable", b.NewsUnavailable)
	return b
}

func (s *Service) cached(ctx context.Context, key string) (types.Board, bool) {
	if s.cache == nil {
		return types.Board{}, false
	}
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return types.Board{}, false
	}
	var b types.Board
	if err := json.Unmarshal(raw, &b); err != nil {
		logger.Warn(ctx, "Dropping undecodable cached board", "key", key, "error", err)
		_ = s.cache.Delete(ctx, key)
		return types.Board{}, false
	}
	return b, true
}

// store skips partial boards so an interrupted build is retried next time.
func (s *Service) store(ctx context.Context, key string, b types.Board) {
	// Incomplete boards are rebuilt on the next request.
	if s.cache == nil || b.Partial || b.NewsUnavailable {
		return
	}
	raw, err := json.Marshal(b)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to encode board", err, "ticker", b.Stock.Ticker)
		return
	}
	if err := s.cache.Set(context.WithoutCancel(ctx), key, raw, s.cfg.TTL); err != nil {
		logger.ErrorWithErr(ctx, "Failed to cache board", err, "ticker", b.Stock.Ticker)
	}
}
