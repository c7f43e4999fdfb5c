package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"vibe-stock-dashboard/internal/types"
)

type Config struct {
	Stocks []types.Stock `yaml:"stocks"`

	Market struct {
		Provider     string `yaml:"provider"` // YAHOO, KITE, STATIC
		Exchange     string `yaml:"exchange"`
		TimeoutSecs  int    `yaml:"timeout_seconds"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"market"`

	News struct {
		Providers   []string `yaml:"providers"` // NEWSAPI, FINNHUB, ALPHAVANTAGE, SCRAPE
		Language    string   `yaml:"language"`
		TimeoutSecs int      `yaml:"timeout_seconds"`
	} `yaml:"news"`

	Classifier struct {
		Strategy        string `yaml:"strategy"` // LEXICAL or PROMPTED
		MaxArticles     int    `yaml:"max_articles"`
		Workers         int    `yaml:"workers"`
		ItemTimeoutSecs int    `yaml:"item_timeout_seconds"`
	} `yaml:"classifier"`

	Dashboard struct {
		Concurrency int `yaml:"concurrency"` // stocks built at once
	} `yaml:"dashboard"`

	Indicators struct {
		RSIPeriod int `yaml:"rsi_period"`
		EMAPeriod int `yaml:"ema_period"`
	} `yaml:"indicators"`

	LLM struct {
		Provider          string  `yaml:"provider"` // OPENAI, CLAUDE, NONE
		Model             string  `yaml:"model"`
		MaxTokens         int     `yaml:"max_tokens"`
		Temperature       float64 `yaml:"temperature"`
		TargetLanguage    string  `yaml:"target_language"`
		RequestsPerMinute int     `yaml:"requests_per_minute"`
	} `yaml:"llm"`

	Cache struct {
		Backend      string `yaml:"backend"` // MEMORY or REDIS
		BoardTTLMins int    `yaml:"board_ttl_minutes"`
		BucketMins   int    `yaml:"bucket_minutes"`
		RedisURL     string `yaml:"redis_url"`
	} `yaml:"cache"`

	Recorder struct {
		Driver string `yaml:"driver"` // NONE, SQLITE, POSTGRES
		DSN    string `yaml:"dsn"`
	} `yaml:"recorder"`

	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
}

func (c *Config) Validate() error {
	if len(c.Stocks) == 0 {
		return errors.New("stocks cannot be empty")
	}
	seen := map[string]bool{}
	for i, s := range c.Stocks {
		if s.Ticker == "" {
			return fmt.Errorf("stocks[%d]: ticker is required", i)
		}
		if seen[s.Ticker] {
			return fmt.Errorf("stocks[%d]: duplicate ticker %s", i, s.Ticker)
		}
		seen[s.Ticker] = true
		if !s.Category.Valid() {
			return fmt.Errorf("stocks[%d]: invalid category '%s': must be 'portfolio' or 'watchlist'", i, s.Category)
		}
	}
	switch c.Market.Provider {
	case "YAHOO", "KITE", "STATIC":
	default:
		return fmt.Errorf("invalid market.provider '%s': must be 'YAHOO', 'KITE' or 'STATIC'", c.Market.Provider)
	}
	for _, p := range c.News.Providers {
		switch p {
		case "NEWSAPI", "FINNHUB", "ALPHAVANTAGE", "SCRAPE":
		default:
			return fmt.Errorf("invalid news provider '%s'", p)
		}
	}
	if c.Classifier.Strategy != "LEXICAL" && c.Classifier.Strategy != "PROMPTED" {
		return fmt.Errorf("invalid classifier.strategy '%s': must be 'LEXICAL' or 'PROMPTED'", c.Classifier.Strategy)
	}
	if c.Classifier.Strategy == "PROMPTED" && c.LLM.Provider == "NONE" {
		return errors.New("classifier.strategy PROMPTED requires llm.provider")
	}
	if c.Indicators.RSIPeriod <= 0 || c.Indicators.EMAPeriod <= 0 {
		return fmt.Errorf("indicator periods must be positive, got rsi=%d ema=%d", c.Indicators.RSIPeriod, c.Indicators.EMAPeriod)
	}
	if need := c.MinHistory(); c.Market.LookbackDays < need {
		return fmt.Errorf("market.lookback_days must be at least %d, got %d", need, c.Market.LookbackDays)
	}
	if c.Dashboard.Concurrency < 1 {
		return fmt.Errorf("dashboard.concurrency must be positive, got %d", c.Dashboard.Concurrency)
	}
	if c.Cache.Backend != "MEMORY" && c.Cache.Backend != "REDIS" {
		return fmt.Errorf("invalid cache.backend '%s': must be 'MEMORY' or 'REDIS'", c.Cache.Backend)
	}
	switch c.Recorder.Driver {
	case "NONE", "SQLITE", "POSTGRES":
	default:
		return fmt.Errorf("invalid recorder.driver '%s'", c.Recorder.Driver)
	}
	return nil
}

// MinHistory is the number of closes the indicator windows need.
func (c *Config) MinHistory() int {
	return max(c.Indicators.RSIPeriod, c.Indicators.EMAPeriod) + 1
}

func (c *Config) MarketTimeout() time.Duration {
	return time.Duration(c.Market.TimeoutSecs) * time.Second
}

func (c *Config) NewsTimeout() time.Duration {
	return time.Duration(c.News.TimeoutSecs) * time.Second
}

func (c *Config) ItemTimeout() time.Duration {
	return time.Duration(c.Classifier.ItemTimeoutSecs) * time.Second
}

func (c *Config) BoardTTL() time.Duration {
	return time.Duration(c.Cache.BoardTTLMins) * time.Minute
}

func (c *Config) CacheBucket() time.Duration {
	return time.Duration(c.Cache.BucketMins) * time.Minute
}

// FindStock looks a ticker up in the configured catalogue.
func (c *Config) FindStock(ticker string) (types.Stock, bool) {
	for _, s := range c.Stocks {
		if strings.EqualFold(s.Ticker, ticker) {
			return s, true
		}
	}
	return types.Stock{}, false
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// ParseConfig applies defaults and environment overrides to raw YAML.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)
	applyEnv(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	for i := range c.Stocks {
		c.Stocks[i].Ticker = strings.ToUpper(strings.TrimSpace(c.Stocks[i].Ticker))
		if c.Stocks[i].Name == "" {
			c.Stocks[i].Name = c.Stocks[i].Ticker
		}
		if c.Stocks[i].Category == "" {
			c.Stocks[i].Category = types.CategoryWatchlist
		}
	}

	if c.Market.Provider == "" {
		c.Market.Provider = "YAHOO"
	}
	if c.Market.Exchange == "" {
		c.Market.Exchange = "NSE"
	}
	if c.Market.TimeoutSecs == 0 {
		c.Market.TimeoutSecs = 10
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.EMAPeriod == 0 {
		c.Indicators.EMAPeriod = 20
	}
	if c.Market.LookbackDays == 0 {
		c.Market.LookbackDays = 60
	}

	if len(c.News.Providers) == 0 {
		c.News.Providers = []string{"NEWSAPI"}
	}
	if c.News.Language == "" {
		c.News.Language = "en"
	}
	if c.News.TimeoutSecs == 0 {
		c.News.TimeoutSecs = 10
	}

	if c.Classifier.Strategy == "" {
		c.Classifier.Strategy = "LEXICAL"
	}
	if c.Classifier.MaxArticles == 0 {
		c.Classifier.MaxArticles = 3
	}
	if c.Classifier.Workers == 0 {
		c.Classifier.Workers = 4
	}
	if c.Classifier.ItemTimeoutSecs == 0 {
		c.Classifier.ItemTimeoutSecs = 20
	}

	if c.Dashboard.Concurrency == 0 {
		c.Dashboard.Concurrency = 4
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "NONE"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 400
	}
	if c.LLM.TargetLanguage == "" {
		c.LLM.TargetLanguage = "Thai"
	}
	if c.LLM.RequestsPerMinute == 0 {
		c.LLM.RequestsPerMinute = 30
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = "MEMORY"
	}
	if c.Cache.BoardTTLMins == 0 {
		c.Cache.BoardTTLMins = 15
	}
	if c.Cache.BucketMins == 0 {
		c.Cache.BucketMins = 10
	}

	if c.Recorder.Driver == "" {
		c.Recorder.Driver = "NONE"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 */15 * * * *"
	}
}

// applyEnv lets deployment settings come from the environment. API keys are
// never read from YAML.
func applyEnv(c *Config) {
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Recorder.DSN = v
	}
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, v)
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToUpper(v)
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
}
