package weather

import (
	"context"
	"time"

	"github.com/avasiliev/weathercache/internal/telemetry"
	"github.com/avasiliev/weathercache/internal/weather/owm"
)

const bundleOperation = "bundle_onecall"

// RawBundleClient fetches the provider-shaped bundle document.
type RawBundleClient interface {
	FetchRawBundle(ctx context.Context, loc Location) (*owm.Bundle, error)
}

// Service turns raw provider documents into normalized bundles and emits
// telemetry around every fetch. It implements BundleFetcher for the cache.
//
// Failure policy: a current-conditions contract violation fails the whole
// bundle, since without it no slot is worth updating. Forecast and alert
// normalization problems degrade to empty output with a DataDegraded event
// instead, so partial provider drift does not blank the working parts.
type Service struct {
	client RawBundleClient
	sink   telemetry.Sink
}

// NewService creates a Service. A nil sink degrades to the no-op sink.
func NewService(client RawBundleClient, sink telemetry.Sink) *Service {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	return &Service{client: client, sink: sink}
}

// FetchBundle performs one combined fetch for all three resource kinds.
func (s *Service) FetchBundle(ctx context.Context, loc Location) (Bundle, error) {
	started := time.Now()
	event := telemetry.NewEvent(providerName, bundleOperation, loc.Lat, loc.Lon, loc.Name)
	s.sink.RequestStarted(event)

	raw, err := s.client.FetchRawBundle(ctx, loc)
	if err != nil {
		return Bundle{}, s.fail(event, started, err)
	}

	current, err := NormalizeCurrent(raw, loc)
	if err != nil {
		return Bundle{}, s.fail(event, started, err)
	}

	forecasts, err := NormalizeForecast(raw, loc)
	if err != nil {
		s.sink.DataDegraded(telemetry.DegradedEvent{
			Provider:  providerName,
			Operation: bundleOperation,
			Aspect:    "forecast_fine",
			Reason:    Classify(err).Message,
			HadInput:  len(raw.Hourly) > 0 || len(raw.Daily) > 0,
			HasOutput: false,
			Timestamp: time.Now().UTC(),
		})
		forecasts = []ForecastTimeline{}
	} else if len(forecasts) == 0 && len(raw.Hourly) == 0 && len(raw.Daily) == 0 {
		s.sink.DataDegraded(telemetry.DegradedEvent{
			Provider:  providerName,
			Operation: bundleOperation,
			Aspect:    "forecast_daily",
			Reason:    "provider returned no forecast series",
			HadInput:  false,
			HasOutput: false,
			Timestamp: time.Now().UTC(),
		})
	}
	if forecasts == nil {
		forecasts = []ForecastTimeline{}
	}

	alerts, err := NormalizeAlerts(raw, loc)
	if err != nil {
		s.sink.DataDegraded(telemetry.DegradedEvent{
			Provider:  providerName,
			Operation: bundleOperation,
			Aspect:    "alerts",
			Reason:    Classify(err).Message,
			HadInput:  len(raw.Alerts) > 0,
			HasOutput: false,
			Timestamp: time.Now().UTC(),
		})
		alerts = []WeatherAlert{}
	}

	s.sink.RequestSucceeded(telemetry.SuccessEvent{
		Event:    event,
		Duration: time.Since(started),
	})

	return Bundle{
		Current:   current,
		Forecasts: forecasts,
		Alerts:    alerts,
	}, nil
}

func (s *Service) fail(event telemetry.Event, started time.Time, err error) *Error {
	werr := Classify(err)
	s.sink.RequestFailed(telemetry.ErrorEvent{
		Event:      event,
		Duration:   time.Since(started),
		ErrorKind:  string(werr.Kind),
		Message:    werr.Message,
		StatusCode: werr.StatusCode,
	})
	return werr
}
