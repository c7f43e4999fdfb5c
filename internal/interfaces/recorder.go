package interfaces

import (
	"context"

	"vibe-stock-dashboard/internal/types"
)

// Recorder keeps a history of classified headlines per ticker.
type Recorder interface {
	RecordNews(ctx context.Context, ticker string, items []types.NewsItem) error
	RecentNews(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error)
	Close() error
}
