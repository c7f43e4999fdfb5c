package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"vibe-stock-dashboard/internal/types"
)

func openTestDB(t *testing.T) *SQLRecorder {
	t.Helper()
	r, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "news.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordAndRecentNews(t *testing.T) {
	ctx := context.Background()
	r := openTestDB(t)

	day := time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)
	items := []types.NewsItem{
		{Title: "Older", Body: "b1", URL: "https://x/1", Source: "wire", PublishedAt: day.Add(-time.Hour), Sentiment: types.SentimentPositive, Summary: "s1", Strategy: "lexical"},
		{Title: "Newer", Body: "b2", URL: "https://x/2", Source: "wire", PublishedAt: day, Sentiment: types.SentimentNegative, Summary: "s2", Strategy: "lexical"},
	}
	assert.Equal(t, nil, r.RecordNews(ctx, "AAPL", items))
	assert.Equal(t, nil, r.RecordNews(ctx, "TSLA", items[:1]))

	got, err := r.RecentNews(ctx, "AAPL", 10)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(got))
	assert.Equal(t, "Newer", got[0].Title)
	assert.Equal(t, types.SentimentNegative, got[0].Sentiment)
	assert.Equal(t, true, day.Equal(got[0].PublishedAt))
	assert.Equal(t, "Older", got[1].Title)

	got, err = r.RecentNews(ctx, "AAPL", 1)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(got))
}

func TestRecordNewsUpsertsByURL(t *testing.T) {
	ctx := context.Background()
	r := openTestDB(t)

	item := types.NewsItem{Title: "Headline", URL: "https://x/1", Sentiment: types.SentimentNeutral, Summary: "first", Strategy: "lexical"}
	assert.Equal(t, nil, r.RecordNews(ctx, "AAPL", []types.NewsItem{item}))

	item.Sentiment = types.SentimentPositive
	item.Summary = "second"
	item.Strategy = "prompted"
	assert.Equal(t, nil, r.RecordNews(ctx, "AAPL", []types.NewsItem{item}))

	got, err := r.RecentNews(ctx, "AAPL", 10)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, types.SentimentPositive, got[0].Sentiment)
	assert.Equal(t, "second", got[0].Summary)
	assert.Equal(t, true, got[0].PublishedAt.IsZero())
}

func TestRebind(t *testing.T) {
	pg := &SQLRecorder{driver: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &SQLRecorder{driver: DriverSQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	assert.NotEqual(t, nil, err)
}
