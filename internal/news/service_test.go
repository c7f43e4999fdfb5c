package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"vibe-stock-dashboard/internal/sentiment"
	"vibe-stock-dashboard/internal/types"
)

type fakeSource struct {
	name     string
	articles []types.RawArticle
	err      error
	block    bool
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchArticles(ctx context.Context, ticker string, maxCount int) ([]types.RawArticle, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.articles, f.err
}

type memRecorder struct {
	mu    sync.Mutex
	items map[string][]types.NewsItem
}

func (m *memRecorder) RecordNews(ctx context.Context, ticker string, items []types.NewsItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = map[string][]types.NewsItem{}
	}
	m.items[ticker] = append(m.items[ticker], items...)
	return nil
}

func (m *memRecorder) RecentNews(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[ticker], nil
}

func (m *memRecorder) Close() error { return nil }

func testClassifier() *sentiment.Classifier {
	return sentiment.NewClassifier(sentiment.NewLexical(), sentiment.Options{Workers: 2, Sanitize: SanitizeText})
}

func TestServiceHeadlinesClassifiesInOrder(t *testing.T) {
	src := &fakeSource{name: "fake", articles: []types.RawArticle{
		{Title: "Up", Description: "Record profit and strong growth", URL: "u1"},
		{Title: "Down", Description: "Shares plunge on weak outlook", URL: "u2"},
		{Title: "Empty", Description: "", URL: "u3"},
		{Title: "Extra", Description: "excellent", URL: "u4"},
	}}
	rec := &memRecorder{}
	svc := NewService(src, testClassifier(), rec, &ServiceConfig{MaxArticles: 3, FetchTimeout: time.Second, Enabled: true})

	res := svc.Headlines(context.Background(), "AAPL")

	assert.Equal(t, nil, res.FetchErr)
	assert.Equal(t, false, res.Partial)
	assert.Equal(t, 3, len(res.Items))
	assert.Equal(t, types.SentimentPositive, res.Items[0].Sentiment)
	assert.Equal(t, types.SentimentNegative, res.Items[1].Sentiment)
	assert.Equal(t, types.SentimentNeutral, res.Items[2].Sentiment)

	history, err := svc.History(context.Background(), "AAPL", 10)
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(history))
}

func TestServiceHeadlinesDegradesOnProviderFailure(t *testing.T) {
	tests := []struct {
		name    string
		src     *fakeSource
		timeout bool
	}{
		{"error", &fakeSource{name: "down", err: errors.New("503")}, false},
		{"timeout", &fakeSource{name: "slow", block: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.src, testClassifier(), nil, &ServiceConfig{MaxArticles: 3, FetchTimeout: 20 * time.Millisecond, Enabled: true})
			res := svc.Headlines(context.Background(), "TSLA")

			assert.NotEqual(t, nil, res.FetchErr)
			assert.Equal(t, 0, len(res.Items))
			assert.Equal(t, tt.timeout, errors.Is(res.FetchErr, types.ErrProviderTimeout))
		})
	}
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(&fakeSource{name: "x"}, testClassifier(), nil, &ServiceConfig{Enabled: false})
	res := svc.Headlines(context.Background(), "MSFT")
	assert.Equal(t, 0, len(res.Items))
	assert.Equal(t, nil, res.FetchErr)
}

func TestFallbackUsesFirstNonEmpty(t *testing.T) {
	f := NewFallback(
		&fakeSource{name: "broken", err: errors.New("boom")},
		&fakeSource{name: "empty"},
		&fakeSource{name: "good", articles: []types.RawArticle{{Title: "t", URL: "u"}}},
	)
	articles, err := f.FetchArticles(context.Background(), "AAPL", 3)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(articles))

	f = NewFallback(&fakeSource{name: "a", err: errors.New("x")}, &fakeSource{name: "b", err: errors.New("y")})
	_, err = f.FetchArticles(context.Background(), "AAPL", 3)
	assert.NotEqual(t, nil, err)
}

const quotePage = `<html><body>
<table class="fullview-news-outer">
  <tr><td>2024-05-02</td><td><a class="tab-link-news" href="/news/1">Nvidia <b>rallies</b> on AI demand</a></td></tr>
  <tr><td>2 hours ago</td><td><a class="tab-link-news" href="https://other.example/2">Chip stocks slump</a></td></tr>
  <tr><td></td><td>no link here</td></tr>
</table>
</body></html>`

func TestScraperFetchArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") != "NVDA" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(quotePage))
	}))
	defer srv.Close()

	s := NewScraper(time.Second, Site{
		Name:       "Quotes",
		BaseURL:    srv.URL,
		SearchPath: "/quote?t={symbol}",
		Selectors: ArticleSelectors{
			ArticleContainer: "table.fullview-news-outer tr",
			Title:            "a.tab-link-news",
			URL:              "a.tab-link-news",
			PublishedAt:      "td:first-child",
		},
	})

	articles, err := s.FetchArticles(context.Background(), "NVDA", 5)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(articles))
	assert.Equal(t, "Nvidia rallies on AI demand", articles[0].Title)
	assert.Equal(t, srv.URL+"/news/1", articles[0].URL)
	assert.Equal(t, 2024, articles[0].PublishedAt.Year())
	assert.Equal(t, true, articles[1].PublishedAt.IsZero())
	assert.Equal(t, "Quotes", articles[1].Source)
}
