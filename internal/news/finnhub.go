package news

import (
	"context"
	"sort"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/types"
)

// FinnHub lists company news for a US ticker over the past week.
type FinnHub struct {
	client *finnhub.DefaultApiService
	window time.Duration
	now    func() time.Time
}

var _ interfaces.NewsSource = (*FinnHub)(nil)

// NewFinnHub builds a client; serverURL overrides the API host when set.
func NewFinnHub(apiKey, serverURL string) *FinnHub {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	if serverURL != "" {
		cfg.Servers = finnhub.ServerConfigurations{{URL: serverURL}}
	}
	return &FinnHub{
		client: finnhub.NewAPIClient(cfg).DefaultApi,
		window: 7 * 24 * time.Hour,
		now:    time.Now,
	}
}

func (c *FinnHub) Name() string { return "finnhub" }

func (c *FinnHub) FetchArticles(ctx context.Context, ticker string, maxCount int) ([]types.RawArticle, error) {
	to := c.now()
	from := to.Add(-c.window)

	res, _, err := c.client.CompanyNews(ctx).
		Symbol(ticker).
		From(from.Format(time.DateOnly)).
		To(to.Format(time.DateOnly)).
		Execute()
	if err != nil {
		return nil, wrapFetchError(c.Name(), err)
	}

	articles := make([]types.RawArticle, 0, len(res))
	for _, n := range res {
		a := types.RawArticle{}
		if n.Headline != nil {
			a.Title = *n.Headline
		}
		if n.Summary != nil {
			a.Description = *n.Summary
		}
		if n.Url != nil {
			a.URL = *n.Url
		}
		if n.Source != nil {
			a.Source = *n.Source
		}
		if n.Datetime != nil {
			a.PublishedAt = time.Unix(*n.Datetime, 0).UTC()
		}
		articles = append(articles, a)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	return normalize(articles, maxCount), nil
}
