package checksum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/baxromumarov/job-watcher/internal/scraper"
)

// excludedFields never take part in the fingerprint. scraped_at changes on
// every cycle.
var excludedFields = []string{"scraped_at"}

// Fingerprint returns a 16 hex char digest of a site's posting set. The
// result does not depend on record order or on field order within a record.
func Fingerprint(jobs []scraper.JobPosting) (string, error) {
	canonical, err := canonicalize(jobs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(canonical)), nil
}

// canonicalize renders jobs as a JSON array of key-sorted records, sorted by
// their own encoding.
func canonicalize(jobs []scraper.JobPosting) ([]byte, error) {
	records := make([][]byte, 0, len(jobs))
	for i, job := range jobs {
		rec, err := canonicalRecord(job)
		if err != nil {
			return nil, fmt.Errorf("canonical record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return bytes.Compare(records[i], records[j]) < 0
	})

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(rec)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// canonicalRecord round-trips through a map so encoding/json emits keys in
// sorted order.
func canonicalRecord(job scraper.JobPosting) ([]byte, error) {
	raw, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for _, k := range excludedFields {
		delete(fields, k)
	}
	return json.Marshal(fields)
}

// Equal reports whether two fingerprints name the same posting set. An empty
// previous value never matches.
func Equal(previous, current string) bool {
	return previous != "" && previous == current
}

// valid reports whether s looks like a fingerprint produced by this package.
func valid(s string) bool {
	if len(s) != 16 {
		return false
	}
	_, err := strconv.ParseUint(s, 16, 64)
	return err == nil
}
