package weather

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/avasiliev/weathercache/internal/telemetry"
	"github.com/avasiliev/weathercache/internal/weather/owm"
)

type stubClient struct {
	bundle *owm.Bundle
	err    error
	calls  int
}

func (c *stubClient) FetchRawBundle(ctx context.Context, loc Location) (*owm.Bundle, error) {
	c.calls++
	return c.bundle, c.err
}

type recordingSink struct {
	mu        sync.Mutex
	started   []telemetry.Event
	succeeded []telemetry.SuccessEvent
	failed    []telemetry.ErrorEvent
	degraded  []telemetry.DegradedEvent
}

func (r *recordingSink) RequestStarted(e telemetry.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, e)
}

func (r *recordingSink) RequestSucceeded(e telemetry.SuccessEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded = append(r.succeeded, e)
}

func (r *recordingSink) RequestFailed(e telemetry.ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, e)
}

func (r *recordingSink) DataDegraded(e telemetry.DegradedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.degraded = append(r.degraded, e)
}

func fullBundle() *owm.Bundle {
	b := currentBundle()
	b.Hourly = []owm.Hourly{hourlyEntry(1764500400, 10), hourlyEntry(1764511200, 12)}
	b.Alerts = []owm.AlertEntry{stormAlert()}
	return b
}

func TestServiceFetchBundle(t *testing.T) {
	sink := &recordingSink{}
	svc := NewService(&stubClient{bundle: fullBundle()}, sink)

	got, err := svc.FetchBundle(context.Background(), testLocation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Current.TemperatureC != 4.2 {
		t.Errorf("current = %+v", got.Current)
	}
	if len(got.Forecasts) == 0 {
		t.Error("expected forecast timelines")
	}
	if len(got.Alerts) != 1 {
		t.Errorf("expected 1 alert, got %d", len(got.Alerts))
	}

	if len(sink.started) != 1 || len(sink.succeeded) != 1 {
		t.Errorf("telemetry started=%d succeeded=%d, want 1/1", len(sink.started), len(sink.succeeded))
	}
	if len(sink.failed) != 0 || len(sink.degraded) != 0 {
		t.Errorf("unexpected failure or degradation events: %d/%d", len(sink.failed), len(sink.degraded))
	}
	if sink.started[0].Lat != 59.33 {
		t.Errorf("telemetry latitude %v not coarsened", sink.started[0].Lat)
	}
}

func TestServiceFetchBundleClientErrorKeepsKind(t *testing.T) {
	sink := &recordingSink{}
	cause := &Error{Kind: ErrRateLimit, Message: "quota exhausted", StatusCode: 429}
	svc := NewService(&stubClient{err: cause}, sink)

	_, err := svc.FetchBundle(context.Background(), testLocation)
	if err == nil {
		t.Fatal("expected error")
	}
	var werr *Error
	if !errors.As(err, &werr) {
		t.Fatalf("error %T is not *Error", err)
	}
	if werr.Kind != ErrRateLimit || werr.StatusCode != 429 {
		t.Errorf("kind/status = %q/%d, want rate_limit/429", werr.Kind, werr.StatusCode)
	}
	if len(sink.failed) != 1 {
		t.Fatalf("expected 1 failure event, got %d", len(sink.failed))
	}
	if sink.failed[0].ErrorKind != string(ErrRateLimit) {
		t.Errorf("failure event kind = %q", sink.failed[0].ErrorKind)
	}
	if len(sink.succeeded) != 0 {
		t.Error("failed fetch must not emit a success event")
	}
}

func TestServiceFetchBundleCurrentFailureFailsWhole(t *testing.T) {
	b := fullBundle()
	b.Current = nil
	svc := NewService(&stubClient{bundle: b}, &recordingSink{})

	_, err := svc.FetchBundle(context.Background(), testLocation)
	expectContract(t, err, "current block")
}

func TestServiceFetchBundleDegradesForecast(t *testing.T) {
	b := fullBundle()
	b.Hourly = []owm.Hourly{{}, {}, {}} // present but unusable
	sink := &recordingSink{}
	svc := NewService(&stubClient{bundle: b}, sink)

	got, err := svc.FetchBundle(context.Background(), testLocation)
	if err != nil {
		t.Fatalf("forecast trouble must not fail the bundle: %v", err)
	}
	if got.Current.TemperatureC != 4.2 {
		t.Error("current conditions lost during degradation")
	}
	if got.Forecasts == nil || len(got.Forecasts) != 0 {
		t.Errorf("degraded forecasts should be empty non-nil, got %#v", got.Forecasts)
	}
	if len(sink.degraded) != 1 {
		t.Fatalf("expected 1 degradation event, got %d", len(sink.degraded))
	}
	d := sink.degraded[0]
	if d.Aspect != "forecast_fine" || !d.HadInput || d.HasOutput {
		t.Errorf("degradation event = %+v", d)
	}
	if len(sink.succeeded) != 1 {
		t.Error("degraded bundle still counts as a successful fetch")
	}
}

func TestServiceFetchBundleEmptySeriesReportsDegradation(t *testing.T) {
	b := fullBundle()
	b.Hourly = nil
	b.Daily = nil
	sink := &recordingSink{}
	svc := NewService(&stubClient{bundle: b}, sink)

	got, err := svc.FetchBundle(context.Background(), testLocation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Forecasts == nil || len(got.Forecasts) != 0 {
		t.Errorf("forecasts = %#v, want empty non-nil", got.Forecasts)
	}
	if len(sink.degraded) != 1 || sink.degraded[0].Aspect != "forecast_daily" {
		t.Errorf("degradation events = %+v", sink.degraded)
	}
}

func TestServiceNilSink(t *testing.T) {
	svc := NewService(&stubClient{bundle: fullBundle()}, nil)
	if _, err := svc.FetchBundle(context.Background(), testLocation); err != nil {
		t.Fatalf("unexpected error with nil sink: %v", err)
	}
}
