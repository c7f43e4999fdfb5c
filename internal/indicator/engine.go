package indicator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/ta"
	"vibe-stock-dashboard/internal/trace"
	"vibe-stock-dashboard/internal/types"
)

type Params struct {
	RSIPeriod    int
	EMAPeriod    int
	LookbackDays int
	Timeout      time.Duration
}

// Engine turns a daily close history into an indicator snapshot and its
// recommendations.
type Engine struct {
	p        Params
	market   interfaces.MarketData
	fallback interfaces.MarketData
	now      func() time.Time
}

// NewEngine builds an engine over a primary price source. fallback supplies
// the placeholder series used when the primary cannot; its results are
// always tagged synthetic.
func NewEngine(p Params, market, fallback interfaces.MarketData) *Engine {
	if p.RSIPeriod <= 0 {
		p.RSIPeriod = 14
	}
	if p.EMAPeriod <= 0 {
		p.EMAPeriod = 20
	}
	if p.LookbackDays < p.minPoints() {
		p.LookbackDays = p.minPoints()
	}
	return &Engine{p: p, market: market, fallback: fallback, now: time.Now}
}

func (p Params) minPoints() int {
	return max(p.RSIPeriod, p.EMAPeriod) + 1
}

// MinPoints is the shortest series Compute accepts.
func (e *Engine) MinPoints() int {
	return e.p.minPoints()
}

// Compute derives RSI, EMA and the last change from a series. It fails with
// types.ErrDataUnavailable when the series is malformed or too short.
func (e *Engine) Compute(series types.PriceSeries) (types.IndicatorSnapshot, error) {
	if err := series.Validate(); err != nil {
		return types.IndicatorSnapshot{}, fmt.Errorf("%w: %v", types.ErrDataUnavailable, err)
	}
	if series.Len() < e.MinPoints() {
		return types.IndicatorSnapshot{}, fmt.Errorf("%w: %s has %d closes, need %d",
			types.ErrDataUnavailable, series.Ticker, series.Len(), e.MinPoints())
	}

	closes := series.Closes()
	snap := types.IndicatorSnapshot{
		Ticker:        series.Ticker,
		Price:         closes[len(closes)-1],
		RSI:           ta.RSI(closes, e.p.RSIPeriod),
		EMA:           ta.EMA(closes, e.p.EMAPeriod),
		ChangePercent: ta.ChangePercent(closes),
		ComputedAt:    e.now(),
	}
	if math.IsNaN(snap.RSI) || math.IsNaN(snap.EMA) || math.IsNaN(snap.ChangePercent) {
		return types.IndicatorSnapshot{}, fmt.Errorf("%w: %s indicators undefined", types.ErrDataUnavailable, series.Ticker)
	}
	return snap, nil
}

// Evaluate attaches recommendations to a snapshot.
func Evaluate(snap types.IndicatorSnapshot, source types.SnapshotSource, reason string) types.IndicatorResult {
	return types.IndicatorResult{
		Snapshot: snap,
		Source:   source,
		Reason:   reason,
		RSI:      RecommendRSI(snap.RSI),
		Trend:    RecommendTrend(snap.Price, snap.EMA),
	}
}

// Fetch loads the ticker's history under the engine timeout.
func (e *Engine) Fetch(ctx context.Context, ticker string) (types.PriceSeries, error) {
	if e.market == nil {
		return types.PriceSeries{}, fmt.Errorf("%w: no market data source", types.ErrDataUnavailable)
	}
	if e.p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.p.Timeout)
		defer cancel()
	}

	series, err := e.market.FetchDailyCloses(ctx, ticker, e.p.LookbackDays)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, types.ErrProviderTimeout) {
			return types.PriceSeries{}, fmt.Errorf("%w: %s: %v", types.ErrProviderTimeout, e.market.Name(), err)
		}
		return types.PriceSeries{}, err
	}
	return series, nil
}

// Analyze never fails: when live data is unavailable the result is built
// from the fallback source and tagged synthetic with the reason.
func (e *Engine) Analyze(ctx context.Context, ticker string) types.IndicatorResult {
	ctx, span := trace.StartSpan(ctx, "indicator.Analyze")
	defer span.End()

	series, err := e.Fetch(ctx, ticker)
	if err == nil {
		snap, cerr := e.Compute(series)
		if cerr == nil {
			res := Evaluate(snap, types.SourceLive, "")
			logger.Signal(ctx, ticker, string(res.RSI.Signal), string(res.Trend.Signal), false,
				"rsi", snap.RSI, "ema", snap.EMA, "price", snap.Price)
			return res
		}
		err = cerr
	}

	logger.Warn(ctx, "Live indicators unavailable, using synthetic data", "ticker", ticker, "error", err)
	res := e.synthetic(ctx, ticker, err)
	logger.Signal(ctx, ticker, string(res.RSI.Signal), string(res.Trend.Signal), true, "reason", res.Reason)
	return res
}

func (e *Engine) synthetic(ctx context.Context, ticker string, cause error) types.IndicatorResult {
	reason := "price data unavailable"
	if cause != nil {
		reason = cause.Error()
	}

	if e.fallback != nil {
		series, err := e.fallback.FetchDailyCloses(ctx, ticker, e.p.LookbackDays)
		if err == nil {
			if snap, err := e.Compute(series); err == nil {
				return Evaluate(snap, types.SourceSynthetic, reason)
			}
		}
	}

	// No usable fallback: an empty placeholder that still reads as synthetic.
	return types.IndicatorResult{
		Snapshot: types.IndicatorSnapshot{Ticker: ticker, RSI: 50, ComputedAt: e.now()},
		Source:   types.SourceSynthetic,
		Reason:   reason,
		RSI:      types.Recommendation{Signal: types.SignalNeutral, Text: "Indicators unavailable"},
		Trend:    types.Recommendation{Signal: types.TrendFlat, Text: "Indicators unavailable"},
	}
}
