package server

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"vibe-stock-dashboard/internal/types"
)

type RecommendationResponse struct {
	Signal string `json:"signal"`
	Text   string `json:"text"`
}

type IndicatorResponse struct {
	Price         decimal.Decimal        `json:"price"`
	RSI           decimal.Decimal        `json:"rsi"`
	EMA           decimal.Decimal        `json:"ema"`
	ChangePercent decimal.Decimal        `json:"change_percent"`
	RSISignal     RecommendationResponse `json:"rsi_recommendation"`
	TrendSignal   RecommendationResponse `json:"ema_recommendation"`
	Synthetic     bool                   `json:"synthetic"`
	Reason        string                 `json:"reason,omitempty"`
}

type NewsResponse struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at,omitempty"`
	Sentiment   string `json:"sentiment"`
	Summary     string `json:"summary"`
	Strategy    string `json:"strategy"`
}

// BoardResponse is the board as shown on the page: good news in Positive,
// everything else in Other.
type BoardResponse struct {
	Ticker          string            `json:"ticker"`
	Name            string            `json:"name"`
	Category        string            `json:"category"`
	Indicators      IndicatorResponse `json:"indicators"`
	Positive        []NewsResponse    `json:"positive"`
	Other           []NewsResponse    `json:"other"`
	Counts          map[string]int    `json:"sentiment_counts"`
	Partial         bool              `json:"partial"`
	NewsUnavailable bool              `json:"news_unavailable"`
	GeneratedAt     string            `json:"generated_at"`
}

type BoardsResponse struct {
	Category string          `json:"category,omitempty"`
	Boards   []BoardResponse `json:"boards"`
	Total    int             `json:"total"`
}

type StocksResponse struct {
	Stocks []types.Stock `json:"stocks"`
	Total  int           `json:"total"`
}

type HistoryResponse struct {
	Ticker string         `json:"ticker"`
	Items  []NewsResponse `json:"items"`
}

// round keeps two decimals; non-finite values render as zero.
func round(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}

func toNews(items []types.NewsItem) []NewsResponse {
	out := make([]NewsResponse, 0, len(items))
	for _, it := range items {
		n := NewsResponse{
			Title:     it.Title,
			URL:       it.URL,
			Source:    it.Source,
			Sentiment: string(it.Sentiment),
			Summary:   it.Summary,
			Strategy:  it.Strategy,
		}
		if !it.PublishedAt.IsZero() {
			n.PublishedAt = it.PublishedAt.Format(time.RFC3339)
		}
		out = append(out, n)
	}
	return out
}

func toBoard(b types.Board) BoardResponse {
	snap := b.Indicators.Snapshot
	positive, other := types.Columns(b.News)

	counts := map[string]int{}
	for s, items := range types.GroupBySentiment(b.News) {
		counts[string(s)] = len(items)
	}

	return BoardResponse{
		Ticker:   b.Stock.Ticker,
		Name:     b.Stock.Name,
		Category: string(b.Stock.Category),
		Indicators: IndicatorResponse{
			Price:         round(snap.Price),
			RSI:           round(snap.RSI),
			EMA:           round(snap.EMA),
			ChangePercent: round(snap.ChangePercent),
			RSISignal:     RecommendationResponse{Signal: string(b.Indicators.RSI.Signal), Text: b.Indicators.RSI.Text},
			TrendSignal:   RecommendationResponse{Signal: string(b.Indicators.Trend.Signal), Text: b.Indicators.Trend.Text},
			Synthetic:     b.Indicators.Synthetic(),
			Reason:        b.Indicators.Reason,
		},
		Positive:        toNews(positive),
		Other:           toNews(other),
		Counts:          counts,
		Partial:         b.Partial,
		NewsUnavailable: b.NewsUnavailable,
		GeneratedAt:     b.GeneratedAt.Format(time.RFC3339),
	}
}

func toBoards(category types.Category, boards []types.Board) BoardsResponse {
	out := BoardsResponse{Category: string(category), Boards: make([]BoardResponse, 0, len(boards))}
	for _, b := range boards {
		out.Boards = append(out.Boards, toBoard(b))
	}
	out.Total = len(out.Boards)
	return out
}
