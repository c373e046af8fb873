package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// GHLConfig holds credentials and identifiers for the CRM platform.
type GHLConfig struct {
	APIKey         string
	LocationID     string
	CalendarID     string
	AssignedUserID string
	RetryAttempts  int
	RetryBackoff   time.Duration
}

// RetellConfig holds the voice provider credentials.
type RetellConfig struct {
	APIKey  string
	AgentID string
}

// FirecrawlConfig holds the content-extraction credentials.
type FirecrawlConfig struct {
	APIKey string
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port                string
	GHL                 GHLConfig
	Retell              RetellConfig
	Firecrawl           FirecrawlConfig
	DefaultPhoneRegion  string
	EnrichTimeout       time.Duration
	LookaheadDays       int
	SlotCap             int
	AppointmentDuration time.Duration
	SkipSlotValidation  bool
	HTTPTimeout         time.Duration
	RateLimitCall       RateLimitConfig
	StaticDir           string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "3000"),
		GHL: GHLConfig{
			APIKey:         os.Getenv("GHL_API_KEY"),
			LocationID:     os.Getenv("GHL_LOCATION_ID"),
			CalendarID:     os.Getenv("GHL_CALENDAR_ID"),
			AssignedUserID: getEnv("GHL_ASSIGNED_USER_ID", "4aMJQN6dJQHbu031eZ7F"),
			RetryAttempts:  parseInt(getEnv("CRM_RETRY_ATTEMPTS", "3"), 3),
			RetryBackoff:   parseDuration(getEnv("CRM_RETRY_BACKOFF", "1s"), time.Second),
		},
		Retell: RetellConfig{
			APIKey:  os.Getenv("RETELL_API_KEY"),
			AgentID: os.Getenv("RETELL_AGENT_ID"),
		},
		Firecrawl: FirecrawlConfig{
			APIKey: os.Getenv("FIRECRAWL_API_KEY"),
		},
		DefaultPhoneRegion:  strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "US")),
		EnrichTimeout:       parseDuration(getEnv("ENRICH_TIMEOUT", "8s"), 8*time.Second),
		LookaheadDays:       parseInt(getEnv("LOOKAHEAD_DAYS", "14"), 14),
		SlotCap:             parseInt(getEnv("SLOT_CAP", "12"), 12),
		AppointmentDuration: parseDuration(getEnv("APPOINTMENT_DURATION", "30m"), 30*time.Minute),
		SkipSlotValidation:  parseBool(getEnv("SKIP_SLOT_VALIDATION", "true"), true),
		HTTPTimeout:         parseDuration(getEnv("HTTP_TIMEOUT", "15s"), 15*time.Second),
		StaticDir:           getEnv("STATIC_DIR", "public"),
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_CALL", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_CALL value: %w", err)
	}
	cfg.RateLimitCall = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(input string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseBool(input string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(input))
	if err != nil {
		return fallback
	}
	return b
}
