package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"vibe-stock-dashboard/internal/api"
	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/types"
)

// Scraper reads headlines from public quote pages. It is the keyless
// fallback when no news API is configured or all of them fail.
type Scraper struct {
	sites   []Site
	timeout time.Duration
}

var _ interfaces.NewsSource = (*Scraper)(nil)

// Site describes where a page lists headlines for a ticker.
type Site struct {
	Name       string
	BaseURL    string
	SearchPath string // e.g. "/quote.ashx?t={symbol}"
	Selectors  ArticleSelectors
	// HeadlineAsBody uses the title as the body when a row has no summary
	// text, so headline-only listings can still be classified.
	HeadlineAsBody bool
}

type ArticleSelectors struct {
	ArticleContainer string
	Title            string
	URL              string
	Content          string
	PublishedAt      string
}

func NewScraper(timeout time.Duration, sites ...Site) *Scraper {
	if len(sites) == 0 {
		sites = defaultSites()
	}
	return &Scraper{sites: sites, timeout: timeout}
}

func defaultSites() []Site {
	return []Site{
		{
			Name:       "Finviz",
			BaseURL:    "https://finviz.com",
			SearchPath: "/quote.ashx?t={symbol}",
			Selectors: ArticleSelectors{
				ArticleContainer: "table.fullview-news-outer tr",
				Title:            "a.tab-link-news",
				URL:              "a.tab-link-news",
				PublishedAt:      "td:first-child",
			},
			HeadlineAsBody: true,
		},
		{
			Name:       "MarketWatch",
			BaseURL:    "https://www.marketwatch.com",
			SearchPath: "/investing/stock/{symbol}",
			Selectors: ArticleSelectors{
				ArticleContainer: "div.article__content",
				Title:            "h3.article__headline a",
				URL:              "h3.article__headline a",
				Content:          "p.article__summary",
				PublishedAt:      "span.article__timestamp",
			},
		},
	}
}

func (s *Scraper) Name() string { return "scraper" }

// FetchArticles tries each site in turn until one yields headlines.
func (s *Scraper) FetchArticles(ctx context.Context, ticker string, maxCount int) ([]types.RawArticle, error) {
	var lastErr error
	for _, site := range s.sites {
		if err := ctx.Err(); err != nil {
			return nil, wrapFetchError(s.Name(), err)
		}
		articles, err := s.scrapeSite(ctx, site, ticker, maxCount)
		if err != nil {
			logger.Warn(ctx, "Failed to scrape site", "site", site.Name, "ticker", ticker, "error", err)
			lastErr = err
			continue
		}
		if len(articles) > 0 {
			return articles, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return []types.RawArticle{}, nil
}

func (s *Scraper) scrapeSite(ctx context.Context, site Site, ticker string, maxCount int) ([]types.RawArticle, error) {
	articles := []types.RawArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(site.BaseURL)),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		for k, v := range api.BrowserHeaders() {
			r.Headers.Set(k, v)
		}
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
	})

	c.OnHTML(site.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(articles) >= maxCount {
			return
		}
		title := strings.TrimSpace(e.ChildText(site.Selectors.Title))
		link := e.ChildAttr(site.Selectors.URL, "href")
		if title == "" || link == "" {
			return
		}
		if !strings.HasPrefix(link, "http") {
			link = site.BaseURL + link
		}

		var content string
		if site.Selectors.Content != "" {
			content = strings.TrimSpace(e.ChildText(site.Selectors.Content))
		}
		if content == "" && site.HeadlineAsBody {
			content = title
		}
		articles = append(articles, types.RawArticle{
			Title:       title,
			Description: content,
			URL:         link,
			Source:      site.Name,
			PublishedAt: parseScrapedTime(strings.TrimSpace(e.ChildText(site.Selectors.PublishedAt))),
		})
	})

	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("%s returned %d: %w", site.Name, r.StatusCode, err)
	})

	searchURL := site.BaseURL + strings.ReplaceAll(site.SearchPath, "{symbol}", url.QueryEscape(ticker))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	if scrapeErr != nil && len(articles) == 0 {
		return nil, scrapeErr
	}
	return normalize(articles, maxCount), nil
}

// parseScrapedTime understands the few absolute formats quote pages use and
// returns the zero time for relative ones ("2 hours ago").
func parseScrapedTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "Jan-02-06 03:04PM", "Jan. 2, 2006 at 3:04 p.m. ET", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
