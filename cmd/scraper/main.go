package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-intern-harvester/internal/app"
	"go-intern-harvester/internal/config"
	"go-intern-harvester/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default "+config.DefaultPath+")")
	timeout := flag.Duration("timeout", 10*time.Minute, "upper bound for the whole run")
	dev := flag.Bool("dev", false, "human-readable console logs")
	flag.Parse()

	//load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	l, err := logger.New(cfg.LogLevel, *dev)
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	//setup context with timeout, cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	l.Info("Starting intern harvester",
		logger.String("bucket", cfg.Bucket),
		logger.String("prefix", cfg.Prefix),
		logger.Bool("headless", cfg.Headless))

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Error("Failed to init harvester", logger.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	res, err := a.RunOnce(ctx)
	s := res.Stats
	fields := []logger.Field{
		logger.String("outcome", string(s.Outcome)),
		logger.Int("pages", s.Pages),
		logger.Int("harvested", s.Harvested),
		logger.Int("known", s.Known),
		logger.Int("no_id", s.NoID),
		logger.Int("duplicates", s.Duplicates),
		logger.Int("failed", s.Failed),
		logger.Int("new", s.New),
		logger.Duration("elapsed", s.Elapsed),
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			l.Warn("Run interrupted, partial result published", append(fields, logger.Error(err))...)
			return
		}
		l.Error("Run failed", append(fields, logger.Error(err))...)
		a.Close()
		os.Exit(1)
	}
	l.Info("Execution finished", fields...)
}
