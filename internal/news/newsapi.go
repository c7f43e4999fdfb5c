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

const newsAPIBaseURL = "https://newsapi.org"

// NewsAPI searches newsapi.org for the ticker, newest first.
type NewsAPI struct {
	apiKey   string
	language string
	client   *api.Client
}

var _ interfaces.NewsSource = (*NewsAPI)(nil)

func NewNewsAPI(apiKey, language string, timeout time.Duration, opts ...api.ClientOption) *NewsAPI {
	if language == "" {
		language = "en"
	}
	base := []api.ClientOption{
		api.WithBaseURL(newsAPIBaseURL),
		api.WithTimeout(timeout),
		api.WithLogging(true),
	}
	return &NewsAPI{
		apiKey:   apiKey,
		language: language,
		client:   api.NewClient(append(base, opts...)...),
	}
}

func (n *NewsAPI) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Content     string    `json:"content"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (n *NewsAPI) FetchArticles(ctx context.Context, ticker string, maxCount int) ([]types.RawArticle, error) {
	if n.apiKey == "" {
		return nil, errors.New("newsapi: missing API key")
	}
	q := url.Values{}
	q.Set("q", ticker)
	q.Set("language", n.language)
	q.Set("sortBy", "publishedAt")
	// Over-fetch a little: removed and duplicate articles are dropped.
	q.Set("pageSize", strconv.Itoa(maxCount*2))

	resp, err := n.client.GET(ctx, "/v2/everything", q, map[string]string{"X-Api-Key": n.apiKey})
	if err != nil {
		return nil, wrapFetchError(n.Name(), err)
	}

	var body newsAPIResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, err
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", body.Code, body.Message)
	}

	articles := make([]types.RawArticle, 0, len(body.Articles))
	for _, a := range body.Articles {
		desc := a.Description
		if desc == "" {
			desc = a.Content
		}
		articles = append(articles, types.RawArticle{
			Title:       a.Title,
			Description: desc,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}
	return normalize(articles, maxCount), nil
}

func wrapFetchError(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", types.ErrProviderTimeout, provider, err)
	}
	return fmt.Errorf("%s: %w", provider, err)
}
