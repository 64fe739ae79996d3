package app

import (
	"context"

	"go-intern-harvester/internal/browser"
	"go-intern-harvester/internal/config"
	"go-intern-harvester/internal/database"
	"go-intern-harvester/internal/dedup"
	"go-intern-harvester/internal/logger"
	"go-intern-harvester/internal/reporter"
	"go-intern-harvester/internal/scraper"
	"go-intern-harvester/internal/storage"

	"github.com/playwright-community/playwright-go"
)

// App is the production wiring of a Runner plus the resources it must release.
type App struct {
	*Runner
	closers []func() error
	log     logger.Logger
}

// New builds every collaborator from cfg. Optional sinks (database, Telegram)
// are only created when configured.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{log: log}

	store, err := storage.NewMinioStore(storage.Config{
		Endpoint:  cfg.Endpoint,
		Region:    cfg.Region,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	sinks := []Sink{s3Sink{writer: storage.NewResultWriter(store, cfg.Bucket, cfg.Prefix), log: log}}

	if cfg.DatabaseURL != "" {
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { repo.Close(); return nil })
		if err := repo.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		sinks = append(sinks, dbSink{repo: repo, log: log})
	}

	if cfg.TelegramEnabled() {
		tg, err := reporter.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			a.Close()
			return nil, err
		}
		sinks = append(sinks, telegramSink{tg: tg})
	}

	shots, err := browser.NewScreenshotDebugger(cfg.ScreenshotDir, log.With(logger.String("component", "screenshot")))
	if err != nil {
		a.Close()
		return nil, err
	}

	pm, err := browser.NewPlaywright(ctx, browser.Options{Headless: cfg.Headless, NavTimeout: cfg.NavTimeout})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, pm.Close)

	a.Runner = NewRunner(Deps{
		Scope:       dedup.Scope{Bucket: cfg.Bucket, Prefix: cfg.Prefix},
		Store:       store,
		OpenSession: playwrightOpener(pm, cfg.CookiesPath, log),
		Sinks:       sinks,
		WaitTimeout: cfg.WaitTimeout,
		DelayMinMs:  cfg.DelayMinMs,
		DelayMaxMs:  cfg.DelayMaxMs,
		Screenshots: shots,
		Log:         log,
	})
	return a, nil
}

// Close releases resources in reverse creation order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("Closing resource failed", logger.Error(err))
		}
	}
	a.closers = nil
}

func playwrightOpener(pm *browser.PlaywrightManager, cookiesPath string, log logger.Logger) SessionOpener {
	return func(ctx context.Context) (browser.Session, func() error, error) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		var cookies []playwright.OptionalCookie
		if cookiesPath != "" {
			loaded, err := browser.LoadCookies(cookiesPath)
			if err != nil {
				log.Warn("Could not load cookies, continuing without", logger.String("path", cookiesPath), logger.Error(err))
			} else {
				cookies = loaded
				log.Info("Cookies loaded", logger.Int("count", len(cookies)))
			}
		}
		return pm.NewSession(cookies)
	}
}

type s3Sink struct {
	writer *storage.ResultWriter
	log    logger.Logger
}

func (s s3Sink) Name() string { return "s3" }

func (s s3Sink) Publish(ctx context.Context, postings []scraper.Posting) error {
	key, err := s.writer.Save(ctx, postings)
	if err != nil {
		return err
	}
	s.log.Info("Crawl result stored", logger.String("key", key))
	return nil
}

type dbSink struct {
	repo *database.Repository
	log  logger.Logger
}

func (s dbSink) Name() string { return "postgres" }

func (s dbSink) Publish(ctx context.Context, postings []scraper.Posting) error {
	inserted, err := s.repo.SavePostings(ctx, postings)
	if err != nil {
		return err
	}
	if skipped := len(postings) - inserted; skipped > 0 {
		s.log.Warn("Postings already stored, history was incomplete", logger.Int("skipped", skipped))
	}
	return nil
}

type telegramSink struct {
	tg *reporter.TelegramReporter
}

func (s telegramSink) Name() string { return "telegram" }

func (s telegramSink) Publish(_ context.Context, postings []scraper.Posting) error {
	return s.tg.SendPostings(postings)
}
