package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load builds the runtime config: defaults, then the YAML file at path (if it
// exists), then environment variables. A .env file in the working directory
// is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Warn("config file not found, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v, ok := os.LookupEnv("JOBWATCH_ADDR"); ok && v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := os.LookupEnv("JOBWATCH_JOBS_PATH"); ok && v != "" {
		cfg.Storage.JobsPath = v
	}
	if v, ok := os.LookupEnv("JOBWATCH_HASHES_PATH"); ok && v != "" {
		cfg.Storage.HashesPath = v
	}
	if v, ok := os.LookupEnv("JOBWATCH_SCRAPE_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JOBWATCH_SCRAPE_INTERVAL: %w", err)
		}
		cfg.Scrape.Interval = d
	}
	if v, ok := os.LookupEnv("JOBWATCH_SEND_EMAILS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid JOBWATCH_SEND_EMAILS: %w", err)
		}
		cfg.Email.Enabled = b
	}
	if v, ok := os.LookupEnv("JOBWATCH_EMAIL_USERNAME"); ok && v != "" {
		cfg.Email.Username = v
	}
	if v, ok := os.LookupEnv("JOBWATCH_EMAIL_PASSWORD"); ok && v != "" {
		cfg.Email.Password = v
	}
	if v, ok := os.LookupEnv("JOBWATCH_EMAIL_FROM"); ok && v != "" {
		cfg.Email.From = v
	}
	if v, ok := os.LookupEnv("JOBWATCH_EMAIL_TO"); ok && v != "" {
		cfg.Email.To = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = v
	}
	// The account address doubles as the sender, as with most SMTP relays.
	if cfg.Email.From == "" {
		cfg.Email.From = cfg.Email.Username
	}
	return nil
}
