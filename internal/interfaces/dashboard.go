package interfaces

import (
	"context"

	"vibe-stock-dashboard/internal/types"
)

// Dashboard builds the per-stock boards served to the UI. An empty category
// means every configured stock.
type Dashboard interface {
	Stocks(category types.Category) []types.Stock
	Board(ctx context.Context, ticker string) (types.Board, error)
	Refresh(ctx context.Context, ticker string) (types.Board, error)
	Boards(ctx context.Context, category types.Category) ([]types.Board, error)
	History(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error)
}
