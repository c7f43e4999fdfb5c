package types

import "time"

// SnapshotSource tags where an indicator snapshot came from. Synthetic
// snapshots are placeholders and must be presented as such.
type SnapshotSource string

const (
	SourceLive      SnapshotSource = "live"
	SourceSynthetic SnapshotSource = "synthetic"
)

type Signal string

const (
	SignalStrongBuy  Signal = "strong-buy"
	SignalMildBuy    Signal = "mild-buy"
	SignalNeutral    Signal = "neutral"
	SignalMildSell   Signal = "mild-sell"
	SignalStrongSell Signal = "strong-sell"

	TrendStrongUp   Signal = "strong-uptrend"
	TrendMildUp     Signal = "mild-uptrend"
	TrendFlat       Signal = "flat"
	TrendMildDown   Signal = "mild-downtrend"
	TrendStrongDown Signal = "strong-downtrend"
)

type Recommendation struct {
	Signal Signal `json:"signal"`
	Text   string `json:"text"`
}

type IndicatorResult struct {
	Snapshot IndicatorSnapshot `json:"snapshot"`
	Source   SnapshotSource    `json:"source"`
	// Reason explains why a synthetic snapshot was substituted.
	Reason string         `json:"reason,omitempty"`
	RSI    Recommendation `json:"rsi_recommendation"`
	Trend  Recommendation `json:"ema_recommendation"`
}

func (r IndicatorResult) Synthetic() bool { return r.Source == SourceSynthetic }

// Board is everything the dashboard shows for one stock.
type Board struct {
	Stock       Stock           `json:"stock"`
	Indicators  IndicatorResult `json:"indicators"`
	News        []NewsItem      `json:"news"`
	GeneratedAt time.Time       `json:"generated_at"`
	// Partial is set when the news batch was cut short.
	Partial bool `json:"partial,omitempty"`
	// NewsUnavailable is set when the news provider failed outright.
	NewsUnavailable bool `json:"news_unavailable,omitempty"`
}

// GroupBySentiment buckets items by label, keeping input order within each
// bucket.
func GroupBySentiment(items []NewsItem) map[Sentiment][]NewsItem {
	out := map[Sentiment][]NewsItem{
		SentimentPositive: {},
		SentimentNegative: {},
		SentimentNeutral:  {},
	}
	for _, it := range items {
		out[it.Sentiment] = append(out[it.Sentiment], it)
	}
	return out
}

// Columns splits items into the two dashboard columns: good news on the
// left, everything else on the right.
func Columns(items []NewsItem) (positive, other []NewsItem) {
	positive, other = []NewsItem{}, []NewsItem{}
	for _, it := range items {
		if it.Sentiment == SentimentPositive {
			positive = append(positive, it)
		} else {
			other = append(other, it)
		}
	}
	return positive, other
}
