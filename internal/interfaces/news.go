package interfaces

import (
	"context"

	"vibe-stock-dashboard/internal/types"
)

type NewsSource interface {
	FetchArticles(ctx context.Context, ticker string, maxCount int) ([]types.RawArticle, error)
	Name() string
}
