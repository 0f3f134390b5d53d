package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/job-watcher/internal/config"
	"github.com/baxromumarov/job-watcher/internal/scraper"
	"github.com/baxromumarov/job-watcher/internal/store"
)

const (
	siteA = "https://a.example.com/careers"
	siteB = "https://b.example.com/jobs"
)

type fakeScraper struct {
	mu      sync.Mutex
	results map[string][]scraper.JobPosting
	calls   int
}

func (f *fakeScraper) Scrape(_ context.Context, site config.Site) []scraper.JobPosting {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.results[site.URL]
}

func (f *fakeScraper) set(url string, jobs []scraper.JobPosting) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[url] = jobs
}

type sentMail struct {
	subject, body string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeNotifier) Notify(_ context.Context, subject, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{subject, body})
}

func posting(title string, at time.Time) scraper.JobPosting {
	return scraper.JobPosting{
		Title:        title,
		Link:         "https://a.example.com/careers/" + title,
		Technologies: []string{"react"},
		IsRemote:     true,
		ScrapedAt:    at,
	}
}

type harness struct {
	checker  *Checker
	scraper  *fakeScraper
	notifier *fakeNotifier
	store    *store.Store
}

func newHarness(t *testing.T, notifyOnFirstSeen bool) *harness {
	t.Helper()
	dir := t.TempDir()
	return newHarnessAt(t, filepath.Join(dir, "job_hashes.json"), filepath.Join(dir, "jobs.json"), notifyOnFirstSeen)
}

func newHarnessAt(t *testing.T, hashesPath, jobsPath string, notifyOnFirstSeen bool) *harness {
	t.Helper()
	st, err := store.NewStore(hashesPath, jobsPath)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Sites = []config.Site{{URL: siteA, Selector: "div.job"}, {URL: siteB, Selector: "li"}}
	cfg.NotifyOnFirstSeen = notifyOnFirstSeen

	scr := &fakeScraper{results: map[string][]scraper.JobPosting{}}
	n := &fakeNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &harness{
		checker:  NewChecker(*cfg, scr, st, n, logger),
		scraper:  scr,
		notifier: n,
		store:    st,
	}
}

func TestFirstRunSendsNoEmail(t *testing.T) {
	h := newHarness(t, false)
	now := time.Now()
	h.scraper.set(siteA, []scraper.JobPosting{posting("Remote Full Stack Engineer", now)})

	report, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.notifier.sent)
	assert.Equal(t, 1, report.Initial)
	assert.Equal(t, 1, report.Scraped)
	assert.Equal(t, 1, report.Skipped)
	assert.NotEmpty(t, report.ID)

	hashes, err := h.store.LoadHashes()
	require.NoError(t, err)
	assert.Contains(t, hashes, siteA)
	assert.NotContains(t, hashes, siteB)

	jobs, err := h.store.LoadJobs()
	require.NoError(t, err)
	assert.Len(t, jobs[siteA], 1)
}

func TestFirstRunNotifiesWhenConfigured(t *testing.T) {
	h := newHarness(t, true)
	h.scraper.set(siteA, []scraper.JobPosting{posting("Remote Full Stack Engineer", time.Now())})

	_, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, "New Full Stack Jobs on "+siteA, h.notifier.sent[0].subject)
}

func TestIdenticalSecondRunSendsNoEmail(t *testing.T) {
	h := newHarness(t, false)
	first := time.Now()
	h.scraper.set(siteA, []scraper.JobPosting{posting("Remote Full Stack Engineer", first)})
	_, err := h.checker.Run(context.Background())
	require.NoError(t, err)

	// Same postings, later scrape time.
	h.scraper.set(siteA, []scraper.JobPosting{posting("Remote Full Stack Engineer", first.Add(30*time.Minute))})
	report, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.notifier.sent)
	assert.Equal(t, 0, report.Changed)
}

func TestNewPostingSendsEmailAndReplacesList(t *testing.T) {
	h := newHarness(t, false)
	now := time.Now()
	h.scraper.set(siteA, []scraper.JobPosting{posting("one", now)})
	_, err := h.checker.Run(context.Background())
	require.NoError(t, err)

	updated := []scraper.JobPosting{
		posting("two", now),
		posting("three", now),
		posting("four", now),
		posting("five", now),
	}
	h.scraper.set(siteA, updated)
	report, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)

	require.Len(t, h.notifier.sent, 1)
	body := h.notifier.sent[0].body
	assert.Contains(t, body, `"title": "two"`)
	assert.Contains(t, body, `"title": "four"`)
	assert.NotContains(t, body, `"title": "five"`)

	jobs, err := h.store.LoadJobs()
	require.NoError(t, err)
	require.Len(t, jobs[siteA], 4)
	for _, j := range jobs[siteA] {
		assert.NotEqual(t, "one", j.Title)
	}
}

func TestFailedSiteKeepsPreviousEntries(t *testing.T) {
	h := newHarness(t, false)
	now := time.Now()
	h.scraper.set(siteA, []scraper.JobPosting{posting("one", now)})
	h.scraper.set(siteB, []scraper.JobPosting{posting("two", now)})
	_, err := h.checker.Run(context.Background())
	require.NoError(t, err)

	before, err := h.store.LoadHashes()
	require.NoError(t, err)

	h.scraper.set(siteB, nil)
	report, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)

	after, err := h.store.LoadHashes()
	require.NoError(t, err)
	assert.Equal(t, before[siteB], after[siteB])

	jobs, err := h.store.LoadJobs()
	require.NoError(t, err)
	require.Len(t, jobs[siteB], 1)
	assert.Equal(t, "two", jobs[siteB][0].Title)

	// The kept hash still suppresses a notification when the site returns.
	h.scraper.set(siteB, []scraper.JobPosting{posting("two", now)})
	_, err = h.checker.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.notifier.sent)
}

func TestCanceledRunStopsEarly(t *testing.T) {
	h := newHarness(t, false)
	h.scraper.set(siteA, []scraper.JobPosting{posting("one", time.Now())})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.checker.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, h.scraper.calls)
}

func TestConcurrentRunsAreSerialised(t *testing.T) {
	h := newHarness(t, false)
	h.scraper.set(siteA, []scraper.JobPosting{posting("one", time.Now())})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.checker.Run(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Empty(t, h.notifier.sent)
	jobs, err := h.store.LoadJobs()
	require.NoError(t, err)
	assert.Len(t, jobs[siteA], 1)
}

func TestCorruptHashStoreAbortsCycle(t *testing.T) {
	dir := t.TempDir()
	hashesPath := filepath.Join(dir, "job_hashes.json")
	require.NoError(t, os.WriteFile(hashesPath, []byte("{not json"), 0o644))

	h := newHarnessAt(t, hashesPath, filepath.Join(dir, "jobs.json"), true)
	h.scraper.set(siteA, []scraper.JobPosting{posting("one", time.Now())})

	report, err := h.checker.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load hashes")
	assert.Nil(t, report)
	assert.Equal(t, 0, h.scraper.calls)
	assert.Empty(t, h.notifier.sent)

	_, statErr := os.Stat(filepath.Join(dir, "jobs.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestJobSaveFailureIsReturned(t *testing.T) {
	dir := t.TempDir()
	hashesPath := filepath.Join(dir, "job_hashes.json")
	jobsDir := filepath.Join(dir, "jobs")
	h := newHarnessAt(t, hashesPath, filepath.Join(jobsDir, "jobs.json"), false)
	h.scraper.set(siteA, []scraper.JobPosting{posting("one", time.Now())})

	// Loading an absent file still succeeds; writing into a missing dir fails.
	require.NoError(t, os.RemoveAll(jobsDir))

	report, err := h.checker.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save jobs")
	assert.Nil(t, report)

	// The fingerprint is not recorded when its postings could not be saved.
	hashes, err := h.store.LoadHashes()
	require.NoError(t, err)
	assert.NotContains(t, hashes, siteA)
}

type countingRunner struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRunner) Run(context.Context) (*CycleReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return &CycleReport{}, nil
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	r := &countingRunner{}
	s := NewScheduler(r, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return r.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
