package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Server
	ApiPort        string
	ServiceApiPort string

	// Admin gate for /leads and /analytics
	AdminUsername string
	AdminPassword string

	// Ollama text generation
	OllamaServerURL string
	OllamaModel     string
	GenerateTimeout time.Duration

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string

	// Lead scoring / messaging
	ClampScores        bool
	IncludeBookingLink bool
	BookingLinkURL     string
	SignOffName        string

	// Follow-up sweep
	SweepInterval time.Duration

	// License seeding ("client:key" pairs, comma separated)
	LicenseSeed string

	// App Defaults
	AppName string

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	// Load basic string values
	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "leadflow")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.AdminUsername, err = getRequiredEnv("ADMIN_USERNAME")
	if err != nil {
		return nil, err
	}
	cfg.AdminPassword, err = getRequiredEnv("ADMIN_PASSWORD")
	if err != nil {
		return nil, err
	}
	cfg.OllamaServerURL = getEnv("OLLAMA_SERVER_URL", "http://localhost:11434")
	cfg.OllamaModel = getEnv("OLLAMA_MODEL", "gemma:2b")
	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@tribalconversions.example.com")
	cfg.BookingLinkURL = getEnv("BOOKING_LINK_URL", "https://calendly.com/tribalconversions/30min")
	cfg.SignOffName = getEnv("SIGN_OFF_NAME", "Temple from Tribal Conversions")
	cfg.LicenseSeed = getEnv("LICENSE_SEED", "")
	cfg.AppName = getEnv("APP_NAME", "Leadflow")

	// Load numeric and time duration values with defaults and parsing
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	generateTimeoutSeconds, err := strconv.ParseInt(getEnv("GENERATE_TIMEOUT_SECONDS", "15"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATE_TIMEOUT_SECONDS: %w", err)
	}
	cfg.GenerateTimeout = time.Duration(generateTimeoutSeconds) * time.Second

	sweepIntervalHours, err := strconv.ParseInt(getEnv("SWEEP_INTERVAL_HOURS", "24"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL_HOURS: %w", err)
	}
	cfg.SweepInterval = time.Duration(sweepIntervalHours) * time.Hour

	cfg.ClampScores, err = strconv.ParseBool(getEnv("CLAMP_SCORES", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLAMP_SCORES: %w", err)
	}

	cfg.IncludeBookingLink, err = strconv.ParseBool(getEnv("INCLUDE_BOOKING_LINK", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid INCLUDE_BOOKING_LINK: %w", err)
	}

	// Rate Limiting
	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
