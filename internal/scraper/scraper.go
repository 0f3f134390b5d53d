package scraper

import (
	"context"
	"log/slog"

	"github.com/baxromumarov/job-watcher/internal/config"
	"github.com/baxromumarov/job-watcher/internal/observability"
)

// Scraper fetches one site and filters its listings. Fetch failures are
// logged and reported as an empty result.
type Scraper struct {
	fetcher   ElementFetcher
	extractor *Extractor
	logger    *slog.Logger
}

func NewScraper(fetcher ElementFetcher, extractor *Extractor, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		fetcher:   fetcher,
		extractor: extractor,
		logger:    logger,
	}
}

func (s *Scraper) Scrape(ctx context.Context, site config.Site) []JobPosting {
	elements, err := s.fetcher.FetchElements(ctx, site)
	if err != nil {
		kind := observability.ClassifyScrapeError(err)
		observability.IncError(kind, "fetcher")
		observability.IncPagesCrawled("error")
		s.logger.Warn("fetch failed", "url", site.URL, "kind", kind, "error", err)
		return nil
	}
	observability.IncPagesCrawled("ok")

	jobs := s.extractor.Extract(site.URL, elements)
	observability.AddPostingsKept(len(jobs))
	s.logger.Debug("site scraped",
		"url", site.URL,
		"elements", len(elements),
		"kept", len(jobs),
	)
	return jobs
}
