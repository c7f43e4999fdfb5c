package market

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/types"
)

type KiteParams struct {
	APIKey      string
	AccessToken string
	Exchange    string
}

// Kite reads daily closes for NSE/BSE listings through the Kite Connect
// historical data API.
type Kite struct {
	p       KiteParams
	kc      *kiteconnect.Client
	mapper  *instrumentMapper
	loadMu  sync.Mutex
	nowFunc func() time.Time
}

var _ interfaces.MarketData = (*Kite)(nil)

func NewKite(p KiteParams) (*Kite, error) {
	if p.APIKey == "" || p.AccessToken == "" {
		return nil, errors.New("missing Kite API key/access token")
	}
	if p.Exchange == "" {
		p.Exchange = "NSE"
	}
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	return &Kite{p: p, kc: kc, mapper: newInstrumentMapper(), nowFunc: time.Now}, nil
}

func (k *Kite) Name() string { return "kite" }

// loadInstruments fetches the exchange instrument dump once.
func (k *Kite) loadInstruments() error {
	k.loadMu.Lock()
	defer k.loadMu.Unlock()
	if k.mapper.size() > 0 {
		return nil
	}

	instruments, err := k.kc.GetInstrumentsByExchange(k.p.Exchange)
	if err != nil {
		return fmt.Errorf("failed to load %s instruments: %w", k.p.Exchange, err)
	}
	for _, in := range instruments {
		k.mapper.addMapping(in.Tradingsymbol, in.InstrumentToken)
	}
	return nil
}

type kiteResult struct {
	series types.PriceSeries
	err    error
}

func (k *Kite) FetchDailyCloses(ctx context.Context, ticker string, lookbackDays int) (types.PriceSeries, error) {
	// The SDK is not context aware, so the call races the context.
	done := make(chan kiteResult, 1)
	go func() {
		s, err := k.fetch(ticker, lookbackDays)
		done <- kiteResult{series: s, err: err}
	}()

	select {
	case <-ctx.Done():
		return types.PriceSeries{}, classifyFetchError("kite", ticker, ctx.Err())
	case r := <-done:
		return r.series, r.err
	}
}

func (k *Kite) fetch(ticker string, lookbackDays int) (types.PriceSeries, error) {
	if err := k.loadInstruments(); err != nil {
		return types.PriceSeries{}, fmt.Errorf("%w: kite: %v", types.ErrDataUnavailable, err)
	}
	token, ok := k.mapper.getToken(ticker)
	if !ok {
		return types.PriceSeries{}, fmt.Errorf("%w: kite: unknown symbol %s on %s", types.ErrDataUnavailable, ticker, k.p.Exchange)
	}

	to := k.nowFunc()
	// Calendar days: weekends and holidays eat roughly a third.
	from := to.AddDate(0, 0, -(lookbackDays*3/2 + 7))
	candles, err := k.kc.GetHistoricalData(token, "day", from, to, false, false)
	if err != nil {
		return types.PriceSeries{}, fmt.Errorf("%w: kite %s: %v", types.ErrDataUnavailable, ticker, err)
	}

	points := make([]types.PricePoint, 0, len(candles))
	for _, c := range candles {
		if c.Close <= 0 {
			continue
		}
		points = append(points, types.PricePoint{Time: c.Date.Time, Close: c.Close})
	}
	return buildSeries(ticker, points, lookbackDays)
}
