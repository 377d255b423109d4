package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/avasiliev/weathercache/internal/api/http"
	"github.com/avasiliev/weathercache/internal/cache"
	"github.com/avasiliev/weathercache/internal/config"
	"github.com/avasiliev/weathercache/internal/geo"
	"github.com/avasiliev/weathercache/internal/resilience"
	"github.com/avasiliev/weathercache/internal/scheduler"
	"github.com/avasiliev/weathercache/internal/telemetry"
	"github.com/avasiliev/weathercache/internal/weather"
	"github.com/avasiliev/weathercache/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// Telemetry: structured logs always, Prometheus when a metrics port is set.
	var sink telemetry.Sink = telemetry.NewLogSink(log)
	if cfg.MetricsPort != "" {
		sink = telemetry.MultiSink{sink, telemetry.NewPromSink("weathercache", nil)}

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(":"+cfg.MetricsPort, metricsMux); err != nil {
				log.Error("metrics listener stopped", "error", err)
			}
		}()
	}

	client := providers.NewOpenWeatherClient(httpClient, cfg.OpenWeatherAPIKey, cfg.Units, cfg.Lang)
	service := weather.NewService(client, sink)
	weatherCache := cache.New(service, cfg.TTL, cfg.MaxLocations)

	refresher := resilience.NewRefresher(weatherCache.EnsureCurrent, resilience.DefaultBackoff)

	sched := scheduler.New(cfg.Tracked, cfg.RefreshInterval, refresher, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weathercache",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weathercache",
		})
	})

	search := geo.NewSearchService(cfg.GeocoderAPIKey)
	httpapi.RegisterRoutes(app, weatherCache, search)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
