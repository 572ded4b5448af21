package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bingbr/league-timeline/internal/app"
	"github.com/bingbr/league-timeline/internal/config"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.Parse()
	if err != nil {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
		logger.Error("config error", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	if err := app.Execute(ctx, cfg, os.Args[1:]); err != nil {
		logger.Error("application error", "error", err)
		stop()
		os.Exit(1)
	}
}
