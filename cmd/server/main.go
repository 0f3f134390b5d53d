package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/baxromumarov/job-watcher/internal/api"
	"github.com/baxromumarov/job-watcher/internal/config"
	"github.com/baxromumarov/job-watcher/internal/core"
	"github.com/baxromumarov/job-watcher/internal/httpx"
	"github.com/baxromumarov/job-watcher/internal/notify"
	"github.com/baxromumarov/job-watcher/internal/observability"
	"github.com/baxromumarov/job-watcher/internal/scraper"
	"github.com/baxromumarov/job-watcher/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	logger, logCloser := observability.SetupLogger(cfg.Log)
	defer logCloser.Close()

	if err := run(cfg, logger); err != nil {
		logger.Error("job watcher stopped", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	jobStore, err := store.NewStore(cfg.Storage.HashesPath, cfg.Storage.JobsPath)
	if err != nil {
		return err
	}

	fetcher := httpx.NewCollyFetcher(cfg.Scrape.UserAgent, cfg.Scrape.Timeout)
	extractor := scraper.NewExtractor(scraper.KeywordsFromConfig(cfg.Keywords))
	siteScraper := scraper.NewScraper(fetcher, extractor, logger.With("component", "scraper"))
	notifier := notify.NewEmailNotifier(cfg.Email, logger.With("component", "notifier"))

	checker := core.NewChecker(*cfg, siteScraper, jobStore, notifier, logger.With("component", "checker"))
	scheduler := core.NewScheduler(checker, cfg.Scrape.Interval, logger.With("component", "scheduler"))
	srv := api.NewServer(cfg.Server, jobStore, checker, logger.With("component", "api"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("job watcher starting",
		"sites", len(cfg.Sites),
		"interval", cfg.Scrape.Interval.String(),
		"email_enabled", cfg.Email.Enabled,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
