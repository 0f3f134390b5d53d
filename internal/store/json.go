package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/baxromumarov/job-watcher/internal/scraper"
)

// Hashes maps a site URL to the fingerprint of its last posting set.
type Hashes map[string]string

// Jobs maps a site URL to its latest known postings.
type Jobs map[string][]scraper.JobPosting

// Store keeps the hash and job maps in two pretty-printed JSON files.
type Store struct {
	mu         sync.RWMutex
	hashesPath string
	jobsPath   string
}

func NewStore(hashesPath, jobsPath string) (*Store, error) {
	if hashesPath == "" || jobsPath == "" {
		return nil, errors.New("store paths must not be empty")
	}
	for _, p := range []string{hashesPath, jobsPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store dir: %w", err)
		}
	}
	return &Store{hashesPath: hashesPath, jobsPath: jobsPath}, nil
}

func (s *Store) LoadHashes() (Hashes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hashes := Hashes{}
	if err := readJSON(s.hashesPath, &hashes); err != nil {
		return nil, fmt.Errorf("failed to load hashes: %w", err)
	}
	return hashes, nil
}

func (s *Store) SaveHashes(hashes Hashes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hashes == nil {
		hashes = Hashes{}
	}
	if err := writeJSON(s.hashesPath, hashes); err != nil {
		return fmt.Errorf("failed to save hashes: %w", err)
	}
	return nil
}

func (s *Store) LoadJobs() (Jobs, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := Jobs{}
	if err := readJSON(s.jobsPath, &jobs); err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	for url, list := range jobs {
		if list == nil {
			jobs[url] = []scraper.JobPosting{}
		}
	}
	return jobs, nil
}

func (s *Store) SaveJobs(jobs Jobs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if jobs == nil {
		jobs = Jobs{}
	}
	if err := writeJSON(s.jobsPath, jobs); err != nil {
		return fmt.Errorf("failed to save jobs: %w", err)
	}
	return nil
}

// readJSON leaves v untouched when the file does not exist.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// writeJSON replaces path atomically: the data goes to a temp file in the same
// directory which is then renamed over the target.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
