package recorder

import (
	"context"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/types"
)

// Noop discards everything; used when recorder.driver is NONE.
type Noop struct{}

var _ interfaces.Recorder = Noop{}

func (Noop) RecordNews(context.Context, string, []types.NewsItem) error { return nil }

func (Noop) RecentNews(context.Context, string, int) ([]types.NewsItem, error) {
	return []types.NewsItem{}, nil
}

func (Noop) Close() error { return nil }
