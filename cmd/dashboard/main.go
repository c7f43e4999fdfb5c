package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vibe-stock-dashboard/internal/app"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/scheduler"
	"vibe-stock-dashboard/internal/server"
	"vibe-stock-dashboard/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem(context.Background()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	must(err)

	a, err := app.Build(ctx, cfg)
	must(err)
	defer a.Close()

	sched := scheduler.NewScheduler(ctx, a.Dashboard, 5*time.Minute)
	must(sched.RegisterRefresh(cfg.Schedule.RefreshCron))
	sched.Start()
	if os.Getenv("REFRESH_ON_START") == "true" {
		go sched.RunNow()
	}

	accessLog, err := newAccessLogger()
	must(err)
	defer accessLog.Sync()

	srv := server.New(a.Dashboard, server.Options{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AccessLog:      accessLog,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Start(ctx) }()

	select {
	case err := <-errc:
		if err != nil {
			logger.ErrorWithErr(ctx, "HTTP server failed", err)
		}
	case <-ctx.Done():
		logger.Info(context.Background(), "Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(shutdownCtx, "HTTP shutdown failed", err)
	}
	sched.Stop(shutdownCtx)
	if err := trace.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(shutdownCtx, "Tracer shutdown failed", err)
	}
}
