package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Site is a page to poll and the CSS selector that locates listing elements on it.
type Site struct {
	URL      string `yaml:"url"`
	Selector string `yaml:"selector"`
}

type Config struct {
	Server            ServerConfig   `yaml:"server"`
	Scrape            ScrapeConfig   `yaml:"scrape"`
	Sites             []Site         `yaml:"sites"`
	Storage           StorageConfig  `yaml:"storage"`
	Email             EmailConfig    `yaml:"email"`
	Keywords          KeywordsConfig `yaml:"keywords"`
	NotifyOnFirstSeen bool           `yaml:"notify_on_first_seen"`
	Log               LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type ScrapeConfig struct {
	Interval  time.Duration `yaml:"interval"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type StorageConfig struct {
	JobsPath   string `yaml:"jobs_path"`
	HashesPath string `yaml:"hashes_path"`
}

type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

type KeywordsConfig struct {
	Remote       []string `yaml:"remote"`
	FullStack    []string `yaml:"full_stack"`
	Technologies []string `yaml:"technologies"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Default returns the built-in settings used when no config file overrides them.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Scrape: ScrapeConfig{
			Interval:  30 * time.Minute,
			Timeout:   15 * time.Second,
			UserAgent: DefaultUserAgent,
		},
		Sites: []Site{
			{URL: "https://www.linkedin.com/jobs/search/?keywords=full%20stack%20engineer&location=Remote", Selector: "li.jobs-search-results__list-item"},
			{URL: "https://remote.co/remote-jobs/developer/", Selector: "div.job-listing"},
			{URL: "https://weworkremotely.com/categories/remote-full-stack-programming-jobs", Selector: "li.feature"},
			{URL: "https://careers.google.com/jobs/results/?distance=50&employment_type=FULL_TIME&q=full%20stack%20engineer", Selector: "div.job-listing"},
			{URL: "https://www.amazon.jobs/en/search?base_query=full+stack+engineer", Selector: "div.job"},
		},
		Storage: StorageConfig{
			JobsPath:   "filtered_job_postings.json",
			HashesPath: "website_hashes.json",
		},
		// Sending stays off until a sender and recipient are configured.
		Email: EmailConfig{
			Host: "smtp.gmail.com",
			Port: 465,
		},
		Keywords: KeywordsConfig{
			Remote:       []string{"remote", "work from home", "wfh", "telecommute"},
			FullStack:    []string{"full stack", "full-stack", "software engineer", "web developer"},
			Technologies: []string{"react", "node.js", "next.js", "fastapi", "express", "typescript", "javascript", "python"},
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

func (c *Config) Validate() error {
	if len(c.Sites) == 0 {
		return fmt.Errorf("sites: at least one site is required")
	}
	for i, s := range c.Sites {
		if strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("sites[%d].url is required", i)
		}
		if strings.TrimSpace(s.Selector) == "" {
			return fmt.Errorf("sites[%d].selector is required", i)
		}
		if _, err := cascadia.Compile(s.Selector); err != nil {
			return fmt.Errorf("sites[%d].selector %q is invalid: %w", i, s.Selector, err)
		}
	}
	if c.Scrape.Interval <= 0 {
		return fmt.Errorf("scrape.interval must be > 0")
	}
	if c.Scrape.Timeout <= 0 {
		return fmt.Errorf("scrape.timeout must be > 0")
	}
	if c.Storage.JobsPath == "" {
		return fmt.Errorf("storage.jobs_path is required")
	}
	if c.Storage.HashesPath == "" {
		return fmt.Errorf("storage.hashes_path is required")
	}
	if len(c.Keywords.Remote) == 0 {
		return fmt.Errorf("keywords.remote must not be empty")
	}
	if len(c.Keywords.FullStack) == 0 {
		return fmt.Errorf("keywords.full_stack must not be empty")
	}
	if c.Email.Enabled {
		if c.Email.Host == "" {
			return fmt.Errorf("email.host is required when email.enabled is true")
		}
		if c.Email.Port <= 0 {
			return fmt.Errorf("email.port must be > 0")
		}
		if c.Email.From == "" {
			return fmt.Errorf("email.from is required when email.enabled is true")
		}
		if c.Email.To == "" {
			return fmt.Errorf("email.to is required when email.enabled is true")
		}
	}
	return nil
}

// normalize lower-cases vocabularies with the same folding the scraper applies
// to page text.
func (c *Config) normalize() {
	c.Keywords.Remote = lowerAll(c.Keywords.Remote)
	c.Keywords.FullStack = lowerAll(c.Keywords.FullStack)
	c.Keywords.Technologies = lowerAll(c.Keywords.Technologies)
	for i := range c.Sites {
		c.Sites[i].URL = strings.TrimSpace(c.Sites[i].URL)
		c.Sites[i].Selector = strings.TrimSpace(c.Sites[i].Selector)
	}
}

func lowerAll(in []string) []string {
	caser := cases.Lower(language.Und)
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = caser.String(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
