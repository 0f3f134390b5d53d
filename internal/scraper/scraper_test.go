package scraper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/baxromumarov/job-watcher/internal/config"
)

type stubFetcher struct {
	nodes []*html.Node
	err   error
}

func (s stubFetcher) FetchElements(context.Context, config.Site) ([]*html.Node, error) {
	return s.nodes, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScrapeFetchErrorYieldsNothing(t *testing.T) {
	s := NewScraper(stubFetcher{err: errors.New("connection refused")}, newTestExtractor(), quietLogger())

	jobs := s.Scrape(context.Background(), config.Site{URL: "https://example.com", Selector: "li"})
	assert.Empty(t, jobs)
}

func TestScrapeFiltersFetchedElements(t *testing.T) {
	page := `<ul>
		<li><h2>Remote Full Stack Engineer</h2><a href="/jobs/1">x</a><p>Python and FastAPI</p></li>
		<li><h2>Data Analyst</h2><p>remote</p></li>
	</ul>`
	s := NewScraper(stubFetcher{nodes: elements(t, page, "li")}, newTestExtractor(), quietLogger())

	jobs := s.Scrape(context.Background(), config.Site{URL: "https://example.com/careers", Selector: "li"})
	require.Len(t, jobs, 1)
	assert.Equal(t, "https://example.com/careers/jobs/1", jobs[0].Link)
	assert.Equal(t, []string{"fastapi", "python"}, jobs[0].Technologies)
}

func TestMatchingKeywordsKeepsVocabularyOrder(t *testing.T) {
	got := MatchingKeywords("python, react and typescript", []string{"react", "typescript", "go", "python"})
	assert.Equal(t, []string{"react", "typescript", "python"}, got)
	assert.NotNil(t, MatchingKeywords("nothing", []string{"react"}))
	assert.False(t, MatchesKeywords("anything", []string{""}))
}
