package interfaces

import (
	"context"

	"vibe-stock-dashboard/internal/types"
)

// Strategy classifies one article. Implementations never see empty bodies.
type Strategy interface {
	Classify(ctx context.Context, title, body string) (types.Sentiment, string, error)
	Name() string
}
