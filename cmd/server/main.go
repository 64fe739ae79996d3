package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-intern-harvester/internal/app"
	"go-intern-harvester/internal/config"
	"go-intern-harvester/internal/logger"
	"go-intern-harvester/internal/scheduler"
)

const runTimeout = 30 * time.Minute

func main() {
	configPath := flag.String("config", "", "path to YAML config (default "+config.DefaultPath+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	l, err := logger.New(cfg.LogLevel, false)
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Error("Failed to init harvester", logger.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	sched := scheduler.New(cfg.Schedule, runTimeout, func(ctx context.Context) error {
		_, err := a.RunOnce(ctx)
		if errors.Is(err, app.ErrRunInProgress) {
			return errors.Join(scheduler.ErrSkipped, err)
		}
		return err
	}, l.With(logger.String("component", "scheduler")))
	if err := sched.Start(ctx); err != nil {
		l.Error("Failed to start scheduler", logger.Error(err))
		os.Exit(1)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(a.Runner, l),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Info("Server listening", logger.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("Server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	l.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Warn("Server shutdown failed", logger.Error(err))
	}
}
