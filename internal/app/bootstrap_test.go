package app

import (
	"context"
	"path/filepath"
	"testing"

	"vibe-stock-dashboard/internal/recorder"
	"vibe-stock-dashboard/internal/store"
)

func testConfig(t *testing.T, yaml string) *store.Config {
	t.Helper()
	cfg, err := store.ParseConfig([]byte(yaml))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	return cfg
}

func TestNewsSourceWithoutKeysUsesScraper(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "")
	t.Setenv("FINNHUB_API_KEY", "")
	cfg := testConfig(t, "stocks:\n  - ticker: AAPL\nnews:\n  providers: [NEWSAPI, FINNHUB]\n")

	src := initializeNewsSource(context.Background(), cfg)
	if src.Name() != "scraper" {
		t.Errorf("source = %s, want scraper", src.Name())
	}
}

func TestNewsSourceChainsConfiguredProviders(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "k1")
	t.Setenv("FINNHUB_API_KEY", "k2")
	cfg := testConfig(t, "stocks:\n  - ticker: AAPL\nnews:\n  providers: [NEWSAPI, FINNHUB]\n")

	src := initializeNewsSource(context.Background(), cfg)
	if src.Name() != "fallback" {
		t.Errorf("source = %s, want fallback", src.Name())
	}
}

func TestClassifierFallsBackToLexical(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := testConfig(t, "stocks:\n  - ticker: AAPL\nclassifier:\n  strategy: PROMPTED\nllm:\n  provider: OPENAI\n")

	c := initializeClassifier(context.Background(), cfg)
	if c.StrategyName() != "lexical" {
		t.Errorf("strategy = %s, want lexical", c.StrategyName())
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	c = initializeClassifier(context.Background(), cfg)
	if c.StrategyName() != "prompted" {
		t.Errorf("strategy = %s, want prompted", c.StrategyName())
	}
}

func TestBuildWithSQLiteRecorder(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dsn := filepath.Join(t.TempDir(), "news.db")
	cfg := testConfig(t, "stocks:\n  - ticker: AAPL\n    category: portfolio\nmarket:\n  provider: STATIC\nrecorder:\n  driver: SQLITE\n  dsn: "+dsn+"\n")

	a, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	if _, ok := a.Recorder.(*recorder.SQLRecorder); !ok {
		t.Errorf("recorder is %T, want *recorder.SQLRecorder", a.Recorder)
	}
	if got := len(a.Dashboard.Stocks("portfolio")); got != 1 {
		t.Errorf("portfolio stocks = %d, want 1", got)
	}
}

func TestRecorderNeedsDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cfg := testConfig(t, "stocks:\n  - ticker: AAPL\nrecorder:\n  driver: POSTGRES\n")
	if _, err := initializeRecorder(context.Background(), cfg); err == nil {
		t.Fatal("expected error without DSN")
	}
}
