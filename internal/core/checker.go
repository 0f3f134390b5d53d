package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baxromumarov/job-watcher/internal/checksum"
	"github.com/baxromumarov/job-watcher/internal/config"
	"github.com/baxromumarov/job-watcher/internal/notify"
	"github.com/baxromumarov/job-watcher/internal/observability"
	"github.com/baxromumarov/job-watcher/internal/scraper"
	"github.com/baxromumarov/job-watcher/internal/store"
)

// SiteScraper returns the filtered postings of one site, or none when the
// fetch failed.
type SiteScraper interface {
	Scrape(ctx context.Context, site config.Site) []scraper.JobPosting
}

// CycleReport summarises one pass over the configured sites.
type CycleReport struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Sites     int           `json:"sites"`
	Scraped   int           `json:"scraped"`
	Skipped   int           `json:"skipped"`
	Changed   int           `json:"changed"`
	Initial   int           `json:"initial"`
}

// Checker runs scrape cycles. Calls to Run are serialised, so the scheduler
// and manual refreshes never write the stores concurrently.
type Checker struct {
	mu sync.Mutex

	sites             []config.Site
	scraper           SiteScraper
	store             *store.Store
	notifier          notify.Notifier
	notifyOnFirstSeen bool
	logger            *slog.Logger
	now               func() time.Time
}

func NewChecker(cfg config.Config, scr SiteScraper, st *store.Store, n notify.Notifier, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	sites := make([]config.Site, len(cfg.Sites))
	copy(sites, cfg.Sites)
	return &Checker{
		sites:             sites,
		scraper:           scr,
		store:             st,
		notifier:          n,
		notifyOnFirstSeen: cfg.NotifyOnFirstSeen,
		logger:            logger,
		now:               time.Now,
	}
}

// Run checks every site in order and persists both stores. Sites that yield
// no postings keep their previous hash and job entries.
func (c *Checker) Run(ctx context.Context) (*CycleReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	started := c.now()
	report := &CycleReport{
		ID:        uuid.NewString(),
		StartedAt: started,
		Sites:     len(c.sites),
	}
	log := c.logger.With("cycle", report.ID)

	hashes, err := c.store.LoadHashes()
	if err != nil {
		observability.IncError(observability.ErrorStore, "checker")
		return nil, err
	}
	jobs, err := c.store.LoadJobs()
	if err != nil {
		observability.IncError(observability.ErrorStore, "checker")
		return nil, err
	}

	var runErr error
	for _, site := range c.sites {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		found := c.scraper.Scrape(ctx, site)
		if len(found) == 0 {
			report.Skipped++
			log.Info("no matching jobs", "url", site.URL)
			continue
		}

		fp, err := checksum.Fingerprint(found)
		if err != nil {
			report.Skipped++
			observability.IncError(observability.ErrorParsing, "checker")
			log.Error("fingerprint failed", "url", site.URL, "error", err)
			continue
		}
		report.Scraped++

		prev, seen := hashes[site.URL]
		switch {
		case !seen:
			report.Initial++
			log.Info("initial fetch", "url", site.URL, "jobs", len(found))
			if c.notifyOnFirstSeen {
				c.notifier.Notify(ctx, notify.Subject(site.URL), notify.Preview(found))
			}
		case !checksum.Equal(prev, fp):
			report.Changed++
			observability.IncChangeDetected()
			log.Info("jobs changed", "url", site.URL, "jobs", len(found))
			c.notifier.Notify(ctx, notify.Subject(site.URL), notify.Preview(found))
		default:
			log.Debug("jobs unchanged", "url", site.URL)
		}

		hashes[site.URL] = fp
		jobs[site.URL] = found
	}

	// Jobs go first: a fingerprint is only recorded once its postings are.
	if err := c.store.SaveJobs(jobs); err != nil {
		observability.IncError(observability.ErrorStore, "checker")
		return nil, err
	}
	if err := c.store.SaveHashes(hashes); err != nil {
		observability.IncError(observability.ErrorStore, "checker")
		return nil, err
	}

	report.Duration = c.now().Sub(started)
	observability.ObserveCycleDuration(report.Duration.Seconds())
	log.Info("cycle finished",
		"sites", report.Sites,
		"scraped", report.Scraped,
		"skipped", report.Skipped,
		"changed", report.Changed,
		"initial", report.Initial,
		"duration", report.Duration.String(),
	)

	if runErr != nil {
		return report, fmt.Errorf("cycle interrupted: %w", runErr)
	}
	return report, nil
}
