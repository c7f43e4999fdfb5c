package news

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"vibe-stock-dashboard/internal/api"
	"vibe-stock-dashboard/internal/types"
)

func TestNewsAPIFetchArticles(t *testing.T) {
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-Api-Key")
		w.Write([]byte(`{"status":"ok","articles":[
		  {"source":{"name":"Reuters"},"title":"Apple beats estimates","description":"<p>Revenue <b>rose</b> 8%</p>","url":"https://r.com/1","publishedAt":"2024-05-02T20:30:00Z"},
		  {"source":{"name":"Yahoo"},"title":"[Removed]","description":"","url":"https://removed.com","publishedAt":"2024-05-02T19:00:00Z"},
		  {"source":{"name":"CNBC"},"title":"Apple supply chain","description":"","content":"Suppliers said ... [+2150 chars]","url":"https://c.com/2","publishedAt":"2024-05-02T18:00:00Z"},
		  {"source":{"name":"CNBC"},"title":"Apple supply chain dup","description":"x","url":"https://c.com/2","publishedAt":"2024-05-02T17:00:00Z"},
		  {"source":{"name":"WSJ"},"title":"Fourth","description":"d","url":"https://w.com/4","publishedAt":"2024-05-02T16:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	n := NewNewsAPI("test-key", "en", time.Second, api.WithBaseURL(srv.URL))
	articles, err := n.FetchArticles(context.Background(), "AAPL", 2)

	assert.Equal(t, nil, err)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "language=en&pageSize=4&q=AAPL&sortBy=publishedAt", gotQuery)
	assert.Equal(t, 2, len(articles))
	assert.Equal(t, "Revenue rose 8%", articles[0].Description)
	assert.Equal(t, "Reuters", articles[0].Source)
	assert.Equal(t, "Suppliers said ...", articles[1].Description)
}

func TestNewsAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid"}`))
	}))
	defer srv.Close()

	n := NewNewsAPI("bad", "en", time.Second, api.WithBaseURL(srv.URL))
	_, err := n.FetchArticles(context.Background(), "AAPL", 3)
	assert.NotEqual(t, nil, err)
	assert.Equal(t, true, api.IsStatus(err, http.StatusUnauthorized))
}

func TestNewsAPITimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	n := NewNewsAPI("k", "en", time.Second, api.WithBaseURL(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := n.FetchArticles(ctx, "AAPL", 3)
	assert.Equal(t, true, errors.Is(err, types.ErrProviderTimeout))
}

// rewriteTransport redirects all requests to a fixed base URL (test server).
type rewriteTransport struct {
	base  string
	inner http.RoundTripper
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	parsed, _ := http.NewRequest("GET", rt.base, nil)
	req2.URL.Host = parsed.URL.Host
	req2.URL.Scheme = parsed.URL.Scheme
	return rt.inner.RoundTrip(req2)
}

func TestAlphaVantageFetchArticles(t *testing.T) {
	payload := map[string]interface{}{
		"feed": []map[string]interface{}{
			{
				"title":          "Tesla deliveries slump",
				"summary":        "Tesla delivered fewer vehicles than expected.",
				"url":            "https://example.com/tsla",
				"source":         "Benzinga",
				"time_published": "20240402T133000",
			},
		},
	}
	var gotTickers string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTickers = r.URL.Query().Get("tickers")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	c := NewAlphaVantage("test-key", time.Second,
		api.WithTransport(&rewriteTransport{base: srv.URL, inner: http.DefaultTransport}))
	articles, err := c.FetchArticles(context.Background(), "TSLA", 3)

	assert.Equal(t, nil, err)
	assert.Equal(t, "TSLA", gotTickers)
	assert.Equal(t, 1, len(articles))
	assert.Equal(t, "Tesla deliveries slump", articles[0].Title)
	assert.Equal(t, "Benzinga", articles[0].Source)
	assert.Equal(t, 2024, articles[0].PublishedAt.Year())
	assert.Equal(t, 13, articles[0].PublishedAt.Hour())
}

func TestAlphaVantageRateLimitNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Information":"Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer srv.Close()

	c := NewAlphaVantage("test-key", time.Second,
		api.WithTransport(&rewriteTransport{base: srv.URL, inner: http.DefaultTransport}))
	_, err := c.FetchArticles(context.Background(), "TSLA", 3)
	assert.NotEqual(t, nil, err)
}

func TestFinnHubFetchArticles(t *testing.T) {
	var gotSymbol, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("symbol")
		gotToken = r.Header.Get("X-Finnhub-Token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
		  {"headline":"Older","summary":"s1","url":"https://f.com/1","source":"MarketWatch","datetime":1714600000},
		  {"headline":"Newer","summary":"s2","url":"https://f.com/2","source":"Yahoo","datetime":1714700000}
		]`))
	}))
	defer srv.Close()

	c := NewFinnHub("fh-key", srv.URL)
	articles, err := c.FetchArticles(context.Background(), "NVDA", 5)

	assert.Equal(t, nil, err)
	assert.Equal(t, "NVDA", gotSymbol)
	assert.Equal(t, "fh-key", gotToken)
	assert.Equal(t, 2, len(articles))
	assert.Equal(t, "Newer", articles[0].Title)
	assert.Equal(t, "Older", articles[1].Title)
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  plain   text \n here ", "plain text here"},
		{"<p>Shares <em>jumped</em></p><script>x()</script>", "Shares jumped"},
		{"AT&amp;T earnings", "AT&T earnings"},
		{"Body text… [+1834 chars]", "Body text…"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeText(tt.in))
	}
}

func TestScraperHeadlineAsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("t"))
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><table class="news">
		  <tr><td>2024-05-02</td><td><a class="headline" href="/news/1">Apple beats estimates</a></td></tr>
		  <tr><td>2024-05-01</td><td><a class="headline" href="https://other.example/2">Apple cuts prices</a></td></tr>
		</table></body></html>`))
	}))
	defer srv.Close()

	site := Site{
		Name:       "Listing",
		BaseURL:    srv.URL,
		SearchPath: "/quote?t={symbol}",
		Selectors: ArticleSelectors{
			ArticleContainer: "table.news tr",
			Title:            "a.headline",
			URL:              "a.headline",
			PublishedAt:      "td:first-child",
		},
	}

	articles, err := NewScraper(time.Second, site).FetchArticles(context.Background(), "AAPL", 5)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(articles))
	assert.Equal(t, "", articles[0].Description)
	assert.Equal(t, srv.URL+"/news/1", articles[0].URL)

	site.HeadlineAsBody = true
	articles, err = NewScraper(time.Second, site).FetchArticles(context.Background(), "AAPL", 5)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Apple beats estimates", articles[0].Description)
	assert.Equal(t, "Apple cuts prices", articles[1].Description)
	assert.Equal(t, 2024, articles[0].PublishedAt.Year())
}

func TestDefaultSitesCarryBodies(t *testing.T) {
	for _, site := range defaultSites() {
		if site.Selectors.Content == "" && !site.HeadlineAsBody {
			t.Errorf("site %s yields articles without a body", site.Name)
		}
	}
}
