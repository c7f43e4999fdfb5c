package news

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"vibe-stock-dashboard/internal/api"
	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/types"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantage reads the NEWS_SENTIMENT feed filtered to one ticker. Only
// the articles are used; labels are assigned by our own classifier.
type AlphaVantage struct {
	apiKey string
	client *api.Client
}

var _ interfaces.NewsSource = (*AlphaVantage)(nil)

func NewAlphaVantage(apiKey string, timeout time.Duration, opts ...api.ClientOption) *AlphaVantage {
	base := []api.ClientOption{
		api.WithBaseURL(alphaVantageBaseURL),
		api.WithTimeout(timeout),
		api.WithLogging(true),
	}
	return &AlphaVantage{apiKey: apiKey, client: api.NewClient(append(base, opts...)...)}
}

func (c *AlphaVantage) Name() string { return "alphavantage" }

type avResponse struct {
	Feed []avFeedItem `json:"feed"`
	// Rate limit and key errors come back as 200 with one of these set.
	Information  string `json:"Information"`
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
}

type avFeedItem struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	TimePublished string `json:"time_published"`
}

func (c *AlphaVantage) FetchArticles(ctx context.Context, ticker string, maxCount int) ([]types.RawArticle, error) {
	if c.apiKey == "" {
		return nil, errors.New("alphavantage: missing API key")
	}
	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	q.Set("tickers", ticker)
	q.Set("sort", "LATEST")
	q.Set("limit", strconv.Itoa(max(maxCount*2, 10)))
	q.Set("apikey", c.apiKey)

	resp, err := c.client.GET(ctx, "/query", q)
	if err != nil {
		return nil, wrapFetchError(c.Name(), err)
	}

	var raw avResponse
	if err := resp.ParseJSON(&raw); err != nil {
		return nil, err
	}
	for _, msg := range []string{raw.ErrorMessage, raw.Note, raw.Information} {
		if msg != "" && len(raw.Feed) == 0 {
			return nil, fmt.Errorf("alphavantage: %s", msg)
		}
	}

	articles := make([]types.RawArticle, 0, len(raw.Feed))
	for _, item := range raw.Feed {
		publishedAt, err := time.Parse("20060102T150405", item.TimePublished)
		if err != nil {
			publishedAt = time.Time{}
		}
		articles = append(articles, types.RawArticle{
			Title:       item.Title,
			Description: item.Summary,
			URL:         item.URL,
			Source:      item.Source,
			PublishedAt: publishedAt,
		})
	}
	return normalize(articles, maxCount), nil
}
