package interfaces

import (
	"context"

	"vibe-stock-dashboard/internal/types"
)

// MarketData supplies daily closing prices. Failures wrap
// types.ErrDataUnavailable or types.ErrProviderTimeout.
type MarketData interface {
	FetchDailyCloses(ctx context.Context, ticker string, lookbackDays int) (types.PriceSeries, error)
	Name() string
}
