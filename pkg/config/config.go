package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Instrument
	Instrument InstrumentConfig

	// Rules file (YAML). Empty means built-in defaults.
	RulesFile string

	// External provider
	Eastmoney EastmoneyConfig

	// Cache TTLs per data kind
	Cache CacheConfig

	// Redis (optional cache backend)
	Redis RedisConfig

	// Archive (optional PostgreSQL mirror of provider data)
	Archive ArchiveConfig

	// Scheduler (cache janitor / archive sync)
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// InstrumentConfig identifies the tracked ETF.
type InstrumentConfig struct {
	ID     string // fund code, e.g. 159941
	Market int    // secid prefix: 0 = Shenzhen, 1 = Shanghai
	Name   string // display name
}

// SecID returns the Eastmoney security id, e.g. "0.159941".
func (i InstrumentConfig) SecID() string {
	return fmt.Sprintf("%d.%s", i.Market, i.ID)
}

// EastmoneyConfig holds Eastmoney endpoint configuration.
type EastmoneyConfig struct {
	QuoteBaseURL    string // push2 realtime quote
	KlineBaseURL    string // push2his history klines
	FundAPIBaseURL  string // api.fund f10 endpoints (NAV history)
	EstimateBaseURL string // fundgz valuation estimate
	FundPageBaseURL string // fund page, HTML estimate fallback
	UserAgent       string
	Timeout         time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	RatePerSec      float64 // local token-bucket limit
}

// CacheConfig holds per-kind cache TTLs.
type CacheConfig struct {
	QuoteTTL     time.Duration
	ValuationTTL time.Duration
	HistoryTTL   time.Duration
	NavTTL       time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ArchiveConfig holds PostgreSQL archive configuration.
type ArchiveConfig struct {
	Enabled bool
	URL     string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// SchedulerConfig holds background maintenance job configuration.
// Report computation is never scheduled; refresh stays user-triggered.
type SchedulerConfig struct {
	Enabled         bool
	JanitorSchedule string // cron spec for cache cleanup
	SyncSchedule    string // cron spec for archive sync (needs archive)
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Instrument: InstrumentConfig{
			ID:     getEnv("ETF_CODE", "159941"),
			Market: getEnvAsInt("ETF_MARKET", 0),
			Name:   getEnv("ETF_NAME", "纳指ETF"),
		},

		RulesFile: getEnv("RULES_FILE", ""),

		Eastmoney: EastmoneyConfig{
			QuoteBaseURL:    getEnv("EM_QUOTE_BASE_URL", "https://push2.eastmoney.com"),
			KlineBaseURL:    getEnv("EM_KLINE_BASE_URL", "https://push2his.eastmoney.com"),
			FundAPIBaseURL:  getEnv("EM_FUND_API_BASE_URL", "https://api.fund.eastmoney.com"),
			EstimateBaseURL: getEnv("EM_ESTIMATE_BASE_URL", "https://fundgz.1234567.com.cn"),
			FundPageBaseURL: getEnv("EM_FUND_PAGE_BASE_URL", "https://fund.eastmoney.com"),
			UserAgent:       getEnv("EM_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"),
			Timeout:         getEnvAsDuration("EM_TIMEOUT", "10s"),
			MaxRetries:      getEnvAsInt("EM_MAX_RETRIES", 3),
			RetryDelay:      getEnvAsDuration("EM_RETRY_DELAY", "500ms"),
			RatePerSec:      getEnvAsFloat("EM_RATE_PER_SEC", 5.0),
		},

		Cache: CacheConfig{
			QuoteTTL:     getEnvAsDuration("CACHE_QUOTE_TTL", "1m"),
			ValuationTTL: getEnvAsDuration("CACHE_VALUATION_TTL", "1m"),
			HistoryTTL:   getEnvAsDuration("CACHE_HISTORY_TTL", "5m"),
			NavTTL:       getEnvAsDuration("CACHE_NAV_TTL", "1h"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Archive: ArchiveConfig{
			Enabled:         getEnvAsBool("ARCHIVE_ENABLED", false),
			URL:             getEnv("ARCHIVE_DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("ARCHIVE_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("ARCHIVE_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("ARCHIVE_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("ARCHIVE_MAX_CONN_IDLE_TIME", "30m"),
		},

		Scheduler: SchedulerConfig{
			Enabled:         getEnvAsBool("SCHEDULER_ENABLED", false),
			JanitorSchedule: getEnv("SCHEDULER_JANITOR_CRON", "@hourly"),
			SyncSchedule:    getEnv("SCHEDULER_SYNC_CRON", "0 30 15 * * MON-FRI"),
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
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if len(c.Instrument.ID) != 6 {
		return fmt.Errorf("ETF_CODE must be a 6-digit fund code, got %q", c.Instrument.ID)
	}
	for _, r := range c.Instrument.ID {
		if r < '0' || r > '9' {
			return fmt.Errorf("ETF_CODE must be numeric, got %q", c.Instrument.ID)
		}
	}

	if c.Instrument.Market != 0 && c.Instrument.Market != 1 {
		return fmt.Errorf("ETF_MARKET must be 0 (Shenzhen) or 1 (Shanghai)")
	}

	if c.Archive.Enabled && c.Archive.URL == "" {
		return fmt.Errorf("ARCHIVE_DATABASE_URL is required when ARCHIVE_ENABLED=true")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
