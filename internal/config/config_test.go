package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TTL != 5*time.Minute {
		t.Errorf("TTL = %v, want 5m", cfg.TTL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if cfg.RefreshInterval != 10*time.Minute {
		t.Errorf("RefreshInterval = %v, want 10m", cfg.RefreshInterval)
	}
	if cfg.Units != "metric" {
		t.Errorf("Units = %q, want metric", cfg.Units)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.MaxLocations != 64 {
		t.Errorf("MaxLocations = %d, want 64", cfg.MaxLocations)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error without OPENWEATHER_API_KEY")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "test-key")
	t.Setenv("WEATHER_TTL", "90s")
	t.Setenv("WEATHER_UNITS", "imperial")
	t.Setenv("CACHE_MAX_LOCATIONS", "8")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TTL != 90*time.Second {
		t.Errorf("TTL = %v, want 90s", cfg.TTL)
	}
	if cfg.Units != "imperial" {
		t.Errorf("Units = %q, want imperial", cfg.Units)
	}
	if cfg.MaxLocations != 8 {
		t.Errorf("MaxLocations = %d, want 8", cfg.MaxLocations)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"malformed ttl", "WEATHER_TTL", "five minutes"},
		{"unknown units", "WEATHER_UNITS", "kelvin"},
		{"malformed tracked entry", "TRACKED_LOCATIONS", "59.334"},
		{"non-numeric latitude", "TRACKED_LOCATIONS", "north,18.063"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENWEATHER_API_KEY", "test-key")
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestParseTrackedLocations(t *testing.T) {
	locs, err := ParseTrackedLocations("59.334,18.063,Stockholm; 40.713,-74.006,New York ;35.676,139.650")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 3 {
		t.Fatalf("expected 3 locations, got %d", len(locs))
	}
	if locs[0].Name != "Stockholm" || locs[0].Lat != 59.334 {
		t.Errorf("first = %+v", locs[0])
	}
	if locs[1].Name != "New York" || locs[1].Lon != -74.006 {
		t.Errorf("second = %+v", locs[1])
	}
	if locs[2].Name != "" {
		t.Errorf("nameless entry got name %q", locs[2].Name)
	}
}

func TestParseTrackedLocationsEmpty(t *testing.T) {
	locs, err := ParseTrackedLocations("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locs != nil {
		t.Errorf("expected nil for empty input, got %v", locs)
	}
}
