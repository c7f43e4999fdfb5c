package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"vibe-stock-dashboard/internal/api"
	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/types"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// Yahoo reads daily closes from the public Yahoo Finance chart endpoint.
type Yahoo struct {
	client    *api.Client
	symbolMap map[string]string
}

var _ interfaces.MarketData = (*Yahoo)(nil)

type YahooOption func(*Yahoo)

// WithYahooClient replaces the HTTP client; tests point it at httptest.
func WithYahooClient(c *api.Client) YahooOption {
	return func(y *Yahoo) { y.client = c }
}

// WithSymbolMap maps catalogue tickers onto Yahoo symbols (RELIANCE -> RELIANCE.NS).
func WithSymbolMap(m map[string]string) YahooOption {
	return func(y *Yahoo) {
		for k, v := range m {
			y.symbolMap[strings.ToUpper(k)] = v
		}
	}
}

func NewYahoo(timeout time.Duration, opts ...YahooOption) *Yahoo {
	y := &Yahoo{
		client: api.NewClient(
			api.WithBaseURL(yahooBaseURL),
			api.WithTimeout(timeout),
			api.WithHeaders(api.YahooFinanceHeaders()),
			api.WithLogging(true),
		),
		symbolMap: map[string]string{"SPX": "^GSPC", "SP500": "^GSPC"},
	}
	for _, o := range opts {
		o(y)
	}
	return y
}

func (y *Yahoo) Name() string { return "yahoo" }

func (y *Yahoo) symbol(ticker string) string {
	if s, ok := y.symbolMap[strings.ToUpper(ticker)]; ok {
		return s
	}
	return ticker
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooRange picks the smallest chart range that covers the lookback in
// trading days.
func yahooRange(days int) string {
	switch {
	case days <= 20:
		return "1mo"
	case days <= 60:
		return "3mo"
	case days <= 120:
		return "6mo"
	case days <= 250:
		return "1y"
	default:
		return "2y"
	}
}

func (y *Yahoo) FetchDailyCloses(ctx context.Context, ticker string, lookbackDays int) (types.PriceSeries, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("range", yahooRange(lookbackDays))

	resp, err := y.client.GETWithRetry(ctx, "/v8/finance/chart/"+url.PathEscape(y.symbol(ticker)), q, nil)
	if err != nil {
		return types.PriceSeries{}, classifyFetchError("yahoo", ticker, err)
	}

	var chart yahooChart
	if err := resp.ParseJSON(&chart); err != nil {
		return types.PriceSeries{}, fmt.Errorf("%w: yahoo %s: %v", types.ErrDataUnavailable, ticker, err)
	}
	if chart.Chart.Error != nil {
		return types.PriceSeries{}, fmt.Errorf("%w: yahoo %s: %s", types.ErrDataUnavailable, ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return types.PriceSeries{}, fmt.Errorf("%w: yahoo %s: no data returned", types.ErrDataUnavailable, ticker)
	}

	res := chart.Chart.Result[0]
	closes := res.Indicators.Quote[0].Close
	points := make([]types.PricePoint, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		// Holidays and the live bar come back as null closes.
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		points = append(points, types.PricePoint{Time: time.Unix(ts, 0).UTC(), Close: *closes[i]})
	}

	return buildSeries(ticker, points, lookbackDays)
}

// buildSeries sorts, de-duplicates by timestamp, trims to lookback and
// validates the result.
func buildSeries(ticker string, points []types.PricePoint, lookbackDays int) (types.PriceSeries, error) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	dedup := points[:0]
	for _, p := range points {
		if n := len(dedup); n > 0 && dedup[n-1].Time.Equal(p.Time) {
			dedup[n-1] = p
			continue
		}
		dedup = append(dedup, p)
	}

	series := types.PriceSeries{Ticker: ticker, Points: dedup}.Tail(lookbackDays)
	if series.Len() == 0 {
		return types.PriceSeries{}, fmt.Errorf("%w: %s: empty history", types.ErrDataUnavailable, ticker)
	}
	if err := series.Validate(); err != nil {
		return types.PriceSeries{}, fmt.Errorf("%w: %v", types.ErrDataUnavailable, err)
	}
	return series, nil
}

func classifyFetchError(provider, ticker string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s %s: %v", types.ErrProviderTimeout, provider, ticker, err)
	case api.IsStatus(err, http.StatusNotFound):
		return fmt.Errorf("%w: %s: unknown ticker %s", types.ErrDataUnavailable, provider, ticker)
	default:
		return fmt.Errorf("%w: %s %s: %v", types.ErrDataUnavailable, provider, ticker, err)
	}
}
