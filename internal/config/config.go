package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/avasiliev/weathercache/internal/weather"
)

var validate = validator.New()

// AppConfig holds all runtime configuration, read from environment.
type AppConfig struct {
	OpenWeatherAPIKey string `validate:"required"`
	GeocoderAPIKey    string

	// TTL bounds how long a fetched bundle counts as fresh.
	TTL time.Duration `validate:"gt=0"`

	// HTTPTimeout applies to outbound provider calls.
	HTTPTimeout time.Duration `validate:"gt=0"`

	Units string `validate:"oneof=standard metric imperial"`
	Lang  string

	// RefreshInterval controls the warm-refresh scheduler.
	RefreshInterval time.Duration `validate:"gt=0"`

	// MaxLocations bounds the cache; 0 means unbounded.
	MaxLocations int `validate:"gte=0"`

	// Tracked locations are kept fresh by the scheduler.
	Tracked []weather.Location

	Port        string
	MetricsPort string // empty disables the metrics listener
	LogLevel    slog.Level
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found", "error", err)
	}

	cfg := &AppConfig{
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		Units:             getenvDefault("WEATHER_UNITS", "metric"),
		Lang:              os.Getenv("WEATHER_LANG"),
		Port:              getenvDefault("PORT", "8080"),
		MetricsPort:       os.Getenv("METRICS_PORT"),
		MaxLocations:      getenvInt("CACHE_MAX_LOCATIONS", 64),
		LogLevel:          parseLogLevel(getenvDefault("LOG_LEVEL", "info")),
	}

	var err error
	if cfg.TTL, err = getenvDuration("WEATHER_TTL", 5*time.Minute); err != nil {
		return nil, fmt.Errorf("invalid WEATHER_TTL: %w", err)
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 10*time.Minute); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}

	if cfg.Tracked, err = ParseTrackedLocations(os.Getenv("TRACKED_LOCATIONS")); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ParseTrackedLocations parses the TRACKED_LOCATIONS format: semicolon-
// separated entries of "lat,lon[,name]", e.g.
// "59.334,18.063,Stockholm;40.713,-74.006,New York".
func ParseTrackedLocations(raw string) ([]weather.Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var locs []weather.Location
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ",", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid TRACKED_LOCATIONS entry %q: want lat,lon[,name]", entry)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in TRACKED_LOCATIONS entry %q", entry)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in TRACKED_LOCATIONS entry %q", entry)
		}
		loc := weather.Location{Lat: lat, Lon: lon}
		if len(parts) == 3 {
			loc.Name = strings.TrimSpace(parts[2])
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
