package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GHL_API_KEY", "ghl-key")
	t.Setenv("GHL_LOCATION_ID", "loc-1")
	t.Setenv("GHL_CALENDAR_ID", "cal-1")
	t.Setenv("GHL_ASSIGNED_USER_ID", "user-1")
	t.Setenv("RETELL_API_KEY", "retell-key")
	t.Setenv("RETELL_AGENT_ID", "agent-1")
	t.Setenv("FIRECRAWL_API_KEY", "fc-key")
	t.Setenv("DEFAULT_PHONE_REGION", "gb")
	t.Setenv("ENRICH_TIMEOUT", "5s")
	t.Setenv("LOOKAHEAD_DAYS", "7")
	t.Setenv("SLOT_CAP", "6")
	t.Setenv("APPOINTMENT_DURATION", "45m")
	t.Setenv("SKIP_SLOT_VALIDATION", "false")
	t.Setenv("RATE_LIMIT_CALL", "20/min")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.GHL.APIKey != "ghl-key" || cfg.GHL.LocationID != "loc-1" || cfg.GHL.CalendarID != "cal-1" || cfg.GHL.AssignedUserID != "user-1" {
		t.Fatalf("unexpected GHL config: %+v", cfg.GHL)
	}
	if cfg.Retell.APIKey != "retell-key" || cfg.Retell.AgentID != "agent-1" {
		t.Fatalf("unexpected Retell config: %+v", cfg.Retell)
	}
	if cfg.Firecrawl.APIKey != "fc-key" {
		t.Fatalf("unexpected Firecrawl config: %+v", cfg.Firecrawl)
	}
	if cfg.DefaultPhoneRegion != "GB" {
		t.Fatalf("expected region uppercased, got %s", cfg.DefaultPhoneRegion)
	}
	if cfg.EnrichTimeout != 5*time.Second {
		t.Fatalf("expected enrich timeout 5s, got %s", cfg.EnrichTimeout)
	}
	if cfg.LookaheadDays != 7 || cfg.SlotCap != 6 {
		t.Fatalf("unexpected window config: days=%d cap=%d", cfg.LookaheadDays, cfg.SlotCap)
	}
	if cfg.AppointmentDuration != 45*time.Minute {
		t.Fatalf("expected duration 45m, got %s", cfg.AppointmentDuration)
	}
	if cfg.SkipSlotValidation {
		t.Fatalf("expected skip-slot-validation disabled")
	}
	if cfg.RateLimitCall.Requests != 20 || cfg.RateLimitCall.Interval != time.Minute {
		t.Fatalf("unexpected rate limit config: %+v", cfg.RateLimitCall)
	}

	// invalid rate limit should error
	os.Unsetenv("RATE_LIMIT_CALL")
	t.Setenv("RATE_LIMIT_CALL", "xyz")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid rate limit")
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "GHL_ASSIGNED_USER_ID", "DEFAULT_PHONE_REGION", "ENRICH_TIMEOUT",
		"LOOKAHEAD_DAYS", "SLOT_CAP", "APPOINTMENT_DURATION", "SKIP_SLOT_VALIDATION",
		"RATE_LIMIT_CALL", "HTTP_TIMEOUT", "CRM_RETRY_ATTEMPTS", "CRM_RETRY_BACKOFF",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "3000" || cfg.DefaultPhoneRegion != "US" {
		t.Fatalf("unexpected defaults: port=%s region=%s", cfg.Port, cfg.DefaultPhoneRegion)
	}
	if cfg.EnrichTimeout != 8*time.Second || cfg.LookaheadDays != 14 || cfg.SlotCap != 12 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AppointmentDuration != 30*time.Minute || !cfg.SkipSlotValidation {
		t.Fatalf("unexpected booking defaults: %+v", cfg)
	}
	if cfg.GHL.RetryAttempts != 3 || cfg.GHL.RetryBackoff != time.Second {
		t.Fatalf("unexpected retry defaults: %+v", cfg.GHL)
	}
}

func TestParseRateLimit(t *testing.T) {
	cfg, err := parseRateLimit("5/sec")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Requests != 5 || cfg.Interval != time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := parseRateLimit("bad-format"); err == nil {
		t.Fatalf("expected error for malformed value")
	}
	if _, err := parseRateLimit("0/min"); err == nil {
		t.Fatalf("expected error for zero requests")
	}
	if _, err := parseRateLimit("5/day"); err == nil {
		t.Fatalf("expected error for unsupported unit")
	}
}

func TestGetEnv(t *testing.T) {
	os.Unsetenv("FOO")
	if val := getEnv("FOO", "fallback"); val != "fallback" {
		t.Fatalf("expected fallback, got %s", val)
	}
	t.Setenv("FOO", "value")
	if val := getEnv("FOO", "fallback"); val != "value" {
		t.Fatalf("expected env value, got %s", val)
	}
}

func TestParseHelpers(t *testing.T) {
	if parseDuration("3h", time.Second) != 3*time.Hour {
		t.Fatalf("expected 3h duration")
	}
	if parseDuration("invalid", 9*time.Second) != 9*time.Second {
		t.Fatalf("expected fallback duration")
	}
	if parseInt("12", 5) != 12 || parseInt("-1", 5) != 5 || parseInt("x", 5) != 5 {
		t.Fatalf("unexpected parseInt behaviour")
	}
	if parseBool("false", true) || !parseBool("junk", true) {
		t.Fatalf("unexpected parseBool behaviour")
	}
}
