// Command snapshot builds boards once and prints them as JSON.
//
//	snapshot [-config config.yaml] [-category portfolio] [TICKER...]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vibe-stock-dashboard/internal/app"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/store"
	"vibe-stock-dashboard/internal/types"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config")
	category := flag.String("category", "", "only stocks in this category (portfolio or watchlist)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall time limit")
	flag.Parse()

	_ = godotenv.Load()
	if err := logger.InitWithConfig(logger.LogConfig{Level: "WARN", Format: "text", Output: os.Stderr}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(*configPath, types.Category(strings.ToLower(*category)), flag.Args(), *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "snapshot:", err)
		os.Exit(1)
	}
}

func run(configPath string, category types.Category, tickers []string, timeout time.Duration) error {
	if category != "" && !category.Valid() {
		return fmt.Errorf("invalid category %q", category)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg, err := store.LoadConfig(configPath)
	if err != nil {
		return err
	}
	a, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var boards []types.Board
	if len(tickers) == 0 {
		boards, err = a.Dashboard.Boards(ctx, category)
		if err != nil {
			return err
		}
	} else {
		for _, t := range tickers {
			b, err := a.Dashboard.Board(ctx, t)
			if err != nil {
				return err
			}
			boards = append(boards, b)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(boards)
}
