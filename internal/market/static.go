package market

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/types"
)

// Static generates a deterministic random walk per ticker. It stands in for
// a real provider offline and backs the synthetic indicator fallback.
type Static struct {
	now func() time.Time
}

var _ interfaces.MarketData = (*Static)(nil)

func NewStatic() *Static {
	return &Static{now: time.Now}
}

func (s *Static) Name() string { return "static" }

func (s *Static) FetchDailyCloses(ctx context.Context, ticker string, lookbackDays int) (types.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return types.PriceSeries{}, err
	}
	return SyntheticSeries(ticker, lookbackDays, s.now()), nil
}

// SyntheticSeries returns n weekday closes ending on or before end. The same
// ticker and day always give the same series.
func SyntheticSeries(ticker string, n int, end time.Time) types.PriceSeries {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	day := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	days := make([]time.Time, 0, n)
	for len(days) < n {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, day)
		}
		day = day.AddDate(0, 0, -1)
	}

	base := 50 + rng.Float64()*450
	points := make([]types.PricePoint, n)
	price := base
	for i := 0; i < n; i++ {
		price *= 1 + (rng.Float64()-0.5)*0.04
		if price < 1 {
			price = 1
		}
		points[i] = types.PricePoint{Time: days[n-1-i], Close: price}
	}
	return types.PriceSeries{Ticker: ticker, Points: points}
}
