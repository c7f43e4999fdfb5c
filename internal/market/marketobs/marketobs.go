package marketobs

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/trace"
	"vibe-stock-dashboard/internal/types"
)

// observableMarket wraps a MarketData source with logging and tracing
type observableMarket struct {
	market interfaces.MarketData
}

var _ interfaces.MarketData = (*observableMarket)(nil)

func Wrap(market interfaces.MarketData) interfaces.MarketData {
	return &observableMarket{market: market}
}

func (om *observableMarket) Name() string { return om.market.Name() }

func (om *observableMarket) FetchDailyCloses(ctx context.Context, ticker string, lookbackDays int) (types.PriceSeries, error) {
	ctx, span := trace.StartTickerSpan(ctx, "market.FetchDailyCloses", ticker, attribute.String("market.provider", om.market.Name()))
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching daily closes",
		"provider", om.market.Name(),
		"ticker", ticker,
		"lookback_days", lookbackDays,
	)

	series, err := om.market.FetchDailyCloses(ctx, ticker, lookbackDays)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch daily closes", err,
			"provider", om.market.Name(),
			"ticker", ticker,
		)
		return types.PriceSeries{}, err
	}

	logger.DebugSkip(ctx, 1, "Daily closes fetched",
		"provider", om.market.Name(),
		"ticker", ticker,
		"points", series.Len(),
	)
	return series, nil
}
