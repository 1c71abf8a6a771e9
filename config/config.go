package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingUserAgent is returned when SEC_USER_AGENT is not set. The remote facts service
// rejects requests without a contact string, so the pipeline refuses to start.
var ErrMissingUserAgent = errors.New("SEC_USER_AGENT environment variable is required")

// Config holds application configuration loaded from environment variables
type Config struct {
	UserAgent      string
	PGURL          string
	Port           string
	LogLevel       string
	Concurrency    int
	RequestDelay   time.Duration
	RunTimeout     time.Duration
	CacheTTL       time.Duration
	StaleDays      int
	StaleWarnDays  int
	IdentitiesPath string
	OutputPath     string
	AuditPath      string
	ArchiveDir     string
}

// Load reads configuration for a pipeline run. SEC_USER_AGENT is required.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.UserAgent == "" {
		return nil, ErrMissingUserAgent
	}
	return cfg, nil
}

// LoadServe reads configuration for the read API, which never contacts the remote service
func LoadServe() (*Config, error) {
	return load()
}

func load() (*Config, error) {
	// Variables already set in the shell win over .env
	_ = godotenv.Load()

	cfg := &Config{
		UserAgent:      os.Getenv("SEC_USER_AGENT"),
		PGURL:          os.Getenv("PG_URL"),
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		IdentitiesPath: getEnv("IDENTITIES_PATH", "data/identities.json"),
		OutputPath:     getEnv("OUTPUT_PATH", "data/banks.json"),
		AuditPath:      getEnv("AUDIT_PATH", "data/audit.json"),
		ArchiveDir:     getEnv("ARCHIVE_DIR", "data/companyfacts"),
	}

	var err error
	if cfg.Concurrency, err = getInt("CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.Concurrency < 1 {
		return nil, fmt.Errorf("CONCURRENCY must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.StaleDays, err = getInt("STALE_DAYS", 150); err != nil {
		return nil, err
	}
	if cfg.StaleWarnDays, err = getInt("STALE_WARN_DAYS", 120); err != nil {
		return nil, err
	}
	if cfg.StaleDays < 1 || cfg.StaleWarnDays < 1 {
		return nil, fmt.Errorf("STALE_DAYS and STALE_WARN_DAYS must be at least 1, got %d and %d", cfg.StaleDays, cfg.StaleWarnDays)
	}
	if cfg.RequestDelay, err = getDuration("REQUEST_DELAY", 110*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.RunTimeout, err = getDuration("RUN_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
