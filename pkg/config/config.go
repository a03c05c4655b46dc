package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application. Environment variables
// are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis (optional response cache)
	Redis RedisConfig

	// External data vendors
	FMP   FMPConfig
	Yahoo YahooConfig

	// Pipeline defaults
	Ingestion IngestionConfig
	Ranking   RankingConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration. Disabled by default; the cache
// degrades to a no-op when disabled.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// FMPConfig holds Financial Modeling Prep API configuration. An empty API
// key leaves the provider returning empty results.
type FMPConfig struct {
	APIKey  string
	BaseURL string
}

// YahooConfig holds Yahoo Finance endpoint configuration. The constituents
// URLs feed the tiered universe fallback (CSV first, then HTML scrape).
type YahooConfig struct {
	ChartBaseURL        string
	QuoteSummaryBaseURL string
	ConstituentsCSVURL  string
	ConstituentsHTMLURL string
}

// IngestionConfig holds ingestion pipeline defaults.
type IngestionConfig struct {
	PriceYears      int
	BenchmarkSymbol string
	RequestsPerSec  float64 // vendor request rate limit
}

// RankingConfig holds ranking pipeline defaults.
type RankingConfig struct {
	EvaluationHorizonDays   int
	MinRatingsForConfidence int
}

// Load reads configuration from environment variables, consulting .env
// files in the locations the deployment lays them out.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		FMP: FMPConfig{
			APIKey:  getEnv("FMP_API_KEY", ""),
			BaseURL: getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
		},

		Yahoo: YahooConfig{
			ChartBaseURL:        getEnv("YAHOO_CHART_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
			QuoteSummaryBaseURL: getEnv("YAHOO_QUOTE_SUMMARY_BASE_URL", "https://query1.finance.yahoo.com/v10/finance/quoteSummary"),
			ConstituentsCSVURL:  getEnv("UNIVERSE_CSV_URL", "https://raw.githubusercontent.com/datasets/s-and-p-500-companies/main/data/constituents.csv"),
			ConstituentsHTMLURL: getEnv("UNIVERSE_HTML_URL", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"),
		},

		Ingestion: IngestionConfig{
			PriceYears:      getEnvAsInt("INGEST_PRICE_YEARS", 5),
			BenchmarkSymbol: getEnv("BENCHMARK_SYMBOL", "SPY"),
			RequestsPerSec:  getEnvAsFloat("VENDOR_REQUESTS_PER_SEC", 5),
		},

		Ranking: RankingConfig{
			EvaluationHorizonDays:   getEnvAsInt("RANK_EVALUATION_HORIZON_DAYS", 90),
			MinRatingsForConfidence: getEnvAsInt("RANK_MIN_RATINGS", 5),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Ranking.EvaluationHorizonDays <= 0 {
		return fmt.Errorf("RANK_EVALUATION_HORIZON_DAYS must be positive")
	}
	if c.Ranking.MinRatingsForConfidence <= 0 {
		return fmt.Errorf("RANK_MIN_RATINGS must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
