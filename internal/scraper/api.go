package scraper

import (
	"context"
	"time"

	"golang.org/x/net/html"

	"github.com/baxromumarov/job-watcher/internal/config"
)

// JobPosting is a listing that passed the remote and full-stack filters.
type JobPosting struct {
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	Technologies []string  `json:"technologies"`
	IsRemote     bool      `json:"is_remote"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// ElementFetcher returns the listing elements a site's selector matches.
type ElementFetcher interface {
	FetchElements(ctx context.Context, site config.Site) ([]*html.Node, error)
}

// Keywords are the lower-cased vocabularies used by the filter.
type Keywords struct {
	Remote       []string
	FullStack    []string
	Technologies []string
}

func KeywordsFromConfig(k config.KeywordsConfig) Keywords {
	return Keywords{
		Remote:       k.Remote,
		FullStack:    k.FullStack,
		Technologies: k.Technologies,
	}
}
