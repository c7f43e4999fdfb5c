package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"vibe-stock-dashboard/internal/dashboard"
	"vibe-stock-dashboard/internal/types"
)

type fakeDashboard struct {
	stocks    []types.Stock
	err       error
	refreshed []string
	limit     int
}

func (f *fakeDashboard) Stocks(category types.Category) []types.Stock {
	out := []types.Stock{}
	for _, s := range f.stocks {
		if category == "" || s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeDashboard) board(ticker string) (types.Board, error) {
	if f.err != nil {
		return types.Board{}, f.err
	}
	for _, s := range f.stocks {
		if s.Ticker == ticker {
			return sampleBoard(s), nil
		}
	}
	return types.Board{}, fmt.Errorf("%w: %s", dashboard.ErrUnknownStock, ticker)
}

func (f *fakeDashboard) Board(ctx context.Context, ticker string) (types.Board, error) {
	return f.board(ticker)
}

func (f *fakeDashboard) Refresh(ctx context.Context, ticker string) (types.Board, error) {
	f.refreshed = append(f.refreshed, ticker)
	return f.board(ticker)
}

func (f *fakeDashboard) Boards(ctx context.Context, category types.Category) ([]types.Board, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []types.Board{}
	for _, s := range f.Stocks(category) {
		out = append(out, sampleBoard(s))
	}
	return out, nil
}

func (f *fakeDashboard) History(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error) {
	f.limit = limit
	if _, err := f.board(ticker); err != nil {
		return nil, err
	}
	return []types.NewsItem{{Title: "Earlier headline", Sentiment: types.SentimentNeutral}}, nil
}

func sampleBoard(s types.Stock) types.Board {
	return types.Board{
		Stock: s,
		Indicators: types.IndicatorResult{
			Snapshot: types.IndicatorSnapshot{Ticker: s.Ticker, Price: 123.456, RSI: 66.666, EMA: 116.1449, ChangePercent: 1.005},
			Source:   types.SourceLive,
			RSI:      types.Recommendation{Signal: types.SignalMildSell, Text: "Approaching overbought"},
			Trend:    types.Recommendation{Signal: types.TrendStrongUp, Text: "Strong uptrend"},
		},
		News: []types.NewsItem{
			{Title: "Record quarter", URL: "https://x/1", Sentiment: types.SentimentPositive, Summary: "good"},
			{Title: "Recall announced", URL: "https://x/2", Sentiment: types.SentimentNegative, Summary: "bad"},
			{Title: "Shareholder meeting", URL: "https://x/3", Sentiment: types.SentimentNeutral, Summary: "meh",
				PublishedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
		},
		GeneratedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newTestRouter(dash *fakeDashboard, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(dash, opts)
}

func testDashboard() *fakeDashboard {
	return &fakeDashboard{stocks: []types.Stock{
		{Ticker: "AAPL", Name: "Apple Inc.", Category: types.CategoryPortfolio},
		{Ticker: "TSLA", Name: "Tesla Inc.", Category: types.CategoryWatchlist},
	}}
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetHealth(t *testing.T) {
	w := do(newTestRouter(testDashboard(), Options{}), "GET", "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetStocks_FilterByCategory(t *testing.T) {
	r := newTestRouter(testDashboard(), Options{})

	w := do(r, "GET", "/api/stocks?category=watchlist")
	assert.Equal(t, http.StatusOK, w.Code)

	var res StocksResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "TSLA", res.Stocks[0].Ticker)
}

func TestGetStocks_InvalidCategory(t *testing.T) {
	w := do(newTestRouter(testDashboard(), Options{}), "GET", "/api/stocks?category=favourites")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBoard_SplitsColumnsAndRounds(t *testing.T) {
	w := do(newTestRouter(testDashboard(), Options{}), "GET", "/api/stocks/aapl")
	assert.Equal(t, http.StatusOK, w.Code)

	var res BoardResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "AAPL", res.Ticker)
	assert.Equal(t, "123.46", res.Indicators.Price.String())
	assert.Equal(t, "66.67", res.Indicators.RSI.String())
	assert.Equal(t, "116.14", res.Indicators.EMA.String())
	assert.Equal(t, "mild-sell", res.Indicators.RSISignal.Signal)
	assert.Equal(t, false, res.Indicators.Synthetic)
	assert.Equal(t, 1, len(res.Positive))
	assert.Equal(t, 2, len(res.Other))
	assert.Equal(t, "Recall announced", res.Other[0].Title)
	assert.Equal(t, "2024-05-01T09:30:00Z", res.Other[1].PublishedAt)
	assert.Equal(t, 1, res.Counts["negative"])
}

func TestGetBoard_UnknownTicker(t *testing.T) {
	w := do(newTestRouter(testDashboard(), Options{}), "GET", "/api/stocks/MSFT")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBoard_ServiceError(t *testing.T) {
	dash := testDashboard()
	dash.err = errors.New("boom")
	w := do(newTestRouter(dash, Options{}), "GET", "/api/stocks/AAPL")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRefreshBoard(t *testing.T) {
	dash := testDashboard()
	w := do(newTestRouter(dash, Options{}), "POST", "/api/stocks/tsla/refresh")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"TSLA"}, dash.refreshed)
}

func TestGetBoards(t *testing.T) {
	w := do(newTestRouter(testDashboard(), Options{}), "GET", "/api/board?category=portfolio")
	assert.Equal(t, http.StatusOK, w.Code)

	var res BoardsResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "portfolio", res.Category)
	assert.Equal(t, "AAPL", res.Boards[0].Ticker)
}

func TestGetHistory_Limit(t *testing.T) {
	dash := testDashboard()
	r := newTestRouter(dash, Options{})

	w := do(r, "GET", "/api/stocks/AAPL/history?limit=500")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, maxHistoryLimit, dash.limit)

	w = do(r, "GET", "/api/stocks/AAPL/history?limit=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, "GET", "/api/stocks/MSFT/history")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPage_RendersBoards(t *testing.T) {
	w := do(newTestRouter(testDashboard(), Options{}), "GET", "/?category=portfolio")
	assert.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Equal(t, true, strings.Contains(body, "Apple Inc."))
	assert.Equal(t, true, strings.Contains(body, "Price 123.46"))
	assert.Equal(t, true, strings.Contains(body, "Record quarter"))
	assert.Equal(t, false, strings.Contains(body, "Tesla Inc."))
}

func TestAccessLogAndCORS(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newTestRouter(testDashboard(), Options{
		AccessLog:      zap.New(core),
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/stocks/MSFT", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	entries := logs.All()
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(404), entries[0].ContextMap()["status"])
}
