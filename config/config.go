package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		// a missing .env is fine, the process environment is enough
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	GO_ENV string
	PORT   int
	// Database
	DATABASE_URL string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	// JWT Configuration
	JWT_SECRET             string
	JWT_ISSUER             string
	JWT_ACCESS_EXPIRES_IN  time.Duration
	JWT_REFRESH_EXPIRES_IN time.Duration
	// Redis Configuration
	REDIS_URL string
	CACHE_TTL time.Duration
	// HTTP
	CORS_ORIGINS        string
	RATE_LIMIT_REQUESTS int
	// Background queue
	QUEUE_MAX_RETRIES     int
	QUEUE_INITIAL_BACKOFF time.Duration
	// Scheduler
	CRON_ENABLED bool
	// File storage
	FILE_STORAGE       string
	UPLOAD_DIR         string
	DO_SPACES_KEY      string
	DO_SPACES_SECRET   string
	DO_SPACES_BUCKET   string
	DO_SPACES_REGION   string
	DO_SPACES_ENDPOINT string
	DO_SPACES_CDN_URL  string
	// Mail
	SMTP_HOST     string
	SMTP_PORT     int
	SMTP_USERNAME string
	SMTP_PASSWORD string
	SMTP_FROM     string
	APP_URL       string
	// Seed
	ADMIN_EMAIL    string
	ADMIN_PASSWORD string
}

// IsProduction reports whether GO_ENV is production
func (e *EnviornmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

// DSN builds the postgres connection string
func (e *EnviornmentVariable) DSN() string {
	if e.DATABASE_URL != "" {
		return e.DATABASE_URL
	}
	sslMode := e.DB_SSL_MODE
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		e.DB_HOST, e.DB_USER_NAME, e.DB_PASSWORD, e.DB_NAME, e.DB_PORT, sslMode,
	)
}

func Get() (*EnviornmentVariable, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	goEnv := os.Getenv("GO_ENV")
	if jwtSecret == "" {
		if goEnv == "production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		jwtSecret = "dev-secret-change-me"
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       goEnv,
		PORT:         intOrDefault("PORT", 8080),
		DATABASE_URL: os.Getenv("DATABASE_URL"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      stringOrDefault("DB_HOST", "localhost"),
		DB_PORT:      stringOrDefault("DB_PORT", "5432"),
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),
		// JWT
		JWT_SECRET:             jwtSecret,
		JWT_ISSUER:             stringOrDefault("JWT_ISSUER", "edu-platform-api"),
		JWT_ACCESS_EXPIRES_IN:  ParseDuration(os.Getenv("JWT_ACCESS_EXPIRES_IN"), 2*time.Hour),
		JWT_REFRESH_EXPIRES_IN: ParseDuration(os.Getenv("JWT_REFRESH_EXPIRES_IN"), 7*24*time.Hour),
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		CACHE_TTL: ParseDuration(os.Getenv("CACHE_TTL"), time.Hour),
		// HTTP
		CORS_ORIGINS:        os.Getenv("CORS_ORIGINS"),
		RATE_LIMIT_REQUESTS: intOrDefault("RATE_LIMIT_REQUESTS", 120),
		// Queue
		QUEUE_MAX_RETRIES:     intOrDefault("QUEUE_MAX_RETRIES", 3),
		QUEUE_INITIAL_BACKOFF: ParseDuration(os.Getenv("QUEUE_INITIAL_BACKOFF"), time.Second),
		// Cron defaults to enabled
		CRON_ENABLED: os.Getenv("CRON_ENABLED") != "false",
		// Files
		FILE_STORAGE:       stringOrDefault("FILE_STORAGE", "disk"),
		UPLOAD_DIR:         stringOrDefault("UPLOAD_DIR", "uploads"),
		DO_SPACES_KEY:      os.Getenv("DO_SPACES_KEY"),
		DO_SPACES_SECRET:   os.Getenv("DO_SPACES_SECRET"),
		DO_SPACES_BUCKET:   os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:   stringOrDefault("DO_SPACES_REGION", "nyc3"),
		DO_SPACES_ENDPOINT: os.Getenv("DO_SPACES_ENDPOINT"),
		DO_SPACES_CDN_URL:  os.Getenv("DO_SPACES_CDN_URL"),
		// Mail
		SMTP_HOST:     stringOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTP_PORT:     intOrDefault("SMTP_PORT", 587),
		SMTP_USERNAME: os.Getenv("SMTP_USERNAME"),
		SMTP_PASSWORD: os.Getenv("SMTP_PASSWORD"),
		SMTP_FROM:     stringOrDefault("SMTP_FROM", "noreply@edu-platform.local"),
		APP_URL:       stringOrDefault("APP_URL", "http://localhost:3000"),
		// Seed
		ADMIN_EMAIL:    os.Getenv("ADMIN_EMAIL"),
		ADMIN_PASSWORD: os.Getenv("ADMIN_PASSWORD"),
	}

	return envVariables, nil
}

var shortDuration = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseDuration accepts "90s", "15m", "2h", "7d" and any time.ParseDuration
// string. Empty or malformed input yields def.
func ParseDuration(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	if m := shortDuration.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return def
		}
		unit := map[string]time.Duration{
			"s": time.Second,
			"m": time.Minute,
			"h": time.Hour,
			"d": 24 * time.Hour,
		}[m[2]]
		return time.Duration(n) * unit
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return def
}

func stringOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intOrDefault(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
