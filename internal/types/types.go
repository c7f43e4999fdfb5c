package types

import (
	"fmt"
	"strings"
	"time"
)

type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// PriceSeries is the chronological close history of one ticker.
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// Validate rejects series that are out of order, contain duplicate
// timestamps or non-positive closes.
func (s PriceSeries) Validate() error {
	for i, p := range s.Points {
		if p.Close <= 0 {
			return fmt.Errorf("%s: non-positive close %.4f at %s", s.Ticker, p.Close, p.Time.Format(time.DateOnly))
		}
		if i == 0 {
			continue
		}
		prev := s.Points[i-1].Time
		if p.Time.Equal(prev) {
			return fmt.Errorf("%s: duplicate timestamp %s", s.Ticker, p.Time.Format(time.RFC3339))
		}
		if p.Time.Before(prev) {
			return fmt.Errorf("%s: points out of order at %s", s.Ticker, p.Time.Format(time.RFC3339))
		}
	}
	return nil
}

func (s PriceSeries) Len() int { return len(s.Points) }

func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Tail returns the last n points (or all of them when n exceeds the length).
func (s PriceSeries) Tail(n int) PriceSeries {
	if n <= 0 || n >= len(s.Points) {
		return s
	}
	return PriceSeries{Ticker: s.Ticker, Points: s.Points[len(s.Points)-n:]}
}

type IndicatorSnapshot struct {
	Ticker        string    `json:"ticker"`
	Price         float64   `json:"price"`
	RSI           float64   `json:"rsi"`
	EMA           float64   `json:"ema"`
	ChangePercent float64   `json:"change_percent"`
	ComputedAt    time.Time `json:"computed_at"`
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// ParseSentiment maps a free-text label onto one of the three sentiments.
// The second return is false when the label is not recognised.
func ParseSentiment(label string) (Sentiment, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.TrimSpace(strings.Trim(l, ".,;:!\"'*_#`()[]"))
	switch l {
	case "positive", "bullish", "pos":
		return SentimentPositive, true
	case "negative", "bearish", "neg":
		return SentimentNegative, true
	case "neutral", "mixed", "neu":
		return SentimentNeutral, true
	}
	return SentimentNeutral, false
}

// RawArticle is an article as delivered by a news provider, before
// classification.
type RawArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

type NewsItem struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Sentiment   Sentiment `json:"sentiment"`
	Summary     string    `json:"summary"`
	Strategy    string    `json:"strategy"`
}

type Category string

const (
	CategoryPortfolio Category = "portfolio"
	CategoryWatchlist Category = "watchlist"
)

func (c Category) Valid() bool {
	return c == CategoryPortfolio || c == CategoryWatchlist
}

type Stock struct {
	Ticker   string   `yaml:"ticker" json:"ticker"`
	Name     string   `yaml:"name" json:"name"`
	Category Category `yaml:"category" json:"category"`
}
