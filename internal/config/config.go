// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names — single source of truth for collection and retrieval
// --------------------------------------------------------------------------

const (
	PlayersTable     = "players"
	TeamsTable       = "teams"
	PlayerStatsTable = "player_stats"
	TeamStatsTable   = "team_stats"
)

// Storage backend kinds.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// DefaultSeasonCount is how many recent seasons (including the current
// one) the dataset covers when none are specified.
const DefaultSeasonCount = 3

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

// LLMConfig selects and configures the chat model provider.
type LLMConfig struct {
	Provider string // openai, anthropic, ollama
	Model    string // empty means provider default
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// Config holds all runtime settings.
type Config struct {
	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Dataset storage
	StorageBackend string // local or s3
	DataDir        string // local backend root
	DatasetPrefix  string // logical dataset name under the backend

	// Object storage (s3 backend)
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3Secure     bool
	S3BucketBase string // actual bucket is {base}-{environment}

	// LLM
	LLM LLMConfig

	// Stats provider
	BDLAPIKey string

	// Seasons
	DefaultSeason string
	SeasonsList   []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	backend := strings.ToLower(envOr("STORAGE_BACKEND", BackendLocal))
	if backend != BackendLocal && backend != BackendS3 {
		return nil, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendLocal, BackendS3, backend)
	}

	return &Config{
		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		StorageBackend: backend,
		DataDir:        envOr("DATA_DIR", "data"),
		DatasetPrefix:  envOr("DATASET_PREFIX", "nba-data"),

		S3Endpoint:   envOr("S3_ENDPOINT", ""),
		S3AccessKey:  envOr("S3_ACCESS_KEY", ""),
		S3SecretKey:  envOr("S3_SECRET_KEY", ""),
		S3Secure:     envBool("S3_SECURE", true),
		S3BucketBase: envOr("S3_BUCKET_BASE", "hooplens-data"),

		LLM: LLMConfig{
			Provider: strings.ToLower(envOr("LLM_PROVIDER", "openai")),
			Model:    envOr("LLM_MODEL", ""),
			APIKey:   envOr("LLM_API_KEY", ""),
			BaseURL:  envOr("LLM_BASE_URL", ""),
			Timeout:  time.Duration(envInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
		},

		BDLAPIKey: envOr("BALLDONTLIE_API_KEY", ""),

		DefaultSeason: envOr("DEFAULT_SEASON", CurrentSeason(time.Now())),
		SeasonsList:   envList("SEASONS_LIST", RecentSeasons(time.Now(), DefaultSeasonCount)),
	}, nil
}

// BucketName returns the object-storage bucket for this environment,
// named by convention {base}-{environment}.
func (c *Config) BucketName() string {
	return fmt.Sprintf("%s-%s", c.S3BucketBase, c.Environment)
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Season helpers
// --------------------------------------------------------------------------

// CurrentSeason returns the season identifier in "YYYY-YY" form for the
// given instant. NBA seasons begin in October: October or later belongs to
// the season starting that calendar year, earlier months to the season
// started the previous year.
func CurrentSeason(now time.Time) string {
	start := now.Year()
	if now.Month() < time.October {
		start--
	}
	return FormatSeason(start)
}

// FormatSeason renders a start year as a "YYYY-YY" season identifier.
func FormatSeason(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// SeasonStartYear parses the start year from a "YYYY-YY" identifier.
func SeasonStartYear(season string) (int, error) {
	left, _, ok := strings.Cut(season, "-")
	if !ok {
		return 0, fmt.Errorf("invalid season %q: want YYYY-YY", season)
	}
	year, err := strconv.Atoi(left)
	if err != nil {
		return 0, fmt.Errorf("invalid season %q: %w", season, err)
	}
	return year, nil
}

// RecentSeasons returns the n most recent seasons including the current
// one, in chronological order.
func RecentSeasons(now time.Time, n int) []string {
	current := now.Year()
	if now.Month() < time.October {
		current--
	}
	seasons := make([]string, 0, n)
	for start := current - n + 1; start <= current; start++ {
		seasons = append(seasons, FormatSeason(start))
	}
	return seasons
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
