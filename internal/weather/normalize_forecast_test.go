package weather

import (
	"testing"
	"time"

	"github.com/avasiliev/weathercache/internal/weather/owm"
)

func hourlyEntry(dt int64, temp float64) owm.Hourly {
	return owm.Hourly{
		Dt:   i64(dt),
		Temp: f64(temp),
		Weather: []owm.WeatherEntry{
			{ID: 800, Main: "Clear", Description: "clear sky"},
		},
	}
}

func forecastBundle(hourly []owm.Hourly, daily []owm.Daily) *owm.Bundle {
	return &owm.Bundle{
		Lat:      f64(59.334),
		Lon:      f64(18.063),
		Timezone: "Europe/Stockholm",
		Hourly:   hourly,
		Daily:    daily,
	}
}

func timelineByGranularity(t *testing.T, timelines []ForecastTimeline, g Granularity) ForecastTimeline {
	t.Helper()
	for _, tl := range timelines {
		if tl.Granularity == g {
			return tl
		}
	}
	t.Fatalf("no %q timeline in %d timelines", g, len(timelines))
	return ForecastTimeline{}
}

func TestNormalizeForecastDownsamplesHourly(t *testing.T) {
	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC).Unix()
	var hourly []owm.Hourly
	for i := 0; i < 12; i++ {
		hourly = append(hourly, hourlyEntry(base+int64(i)*3600, 10+float64(i)))
	}

	timelines, err := NormalizeForecast(forecastBundle(hourly, nil), testLocation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fine := timelineByGranularity(t, timelines, GranularityFine)
	if len(fine.Slices) != 4 {
		t.Fatalf("expected every third hourly entry (4 of 12), got %d", len(fine.Slices))
	}
	for i := 1; i < len(fine.Slices); i++ {
		if !fine.Slices[i-1].Timestamp.Before(fine.Slices[i].Timestamp) {
			t.Errorf("fine slices not strictly ascending at %d", i)
		}
		if step := fine.Slices[i].Timestamp.Sub(fine.Slices[i-1].Timestamp); step != 3*time.Hour {
			t.Errorf("fine step = %v, want 3h", step)
		}
	}
}

func TestNormalizeForecastDerivesDailyWithoutNativeSeries(t *testing.T) {
	base := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC).Unix()
	hourly := []owm.Hourly{
		hourlyEntry(base, 15),
		hourlyEntry(base+9*3600, 22),
	}

	timelines, err := NormalizeForecast(forecastBundle(hourly, nil), testLocation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(timelines) != 2 {
		t.Fatalf("expected fine + derived daily timelines, got %d", len(timelines))
	}

	daily := timelineByGranularity(t, timelines, GranularityDaily)
	if len(daily.Slices) != 1 {
		t.Fatalf("expected 1 derived daily slice, got %d", len(daily.Slices))
	}
	s := daily.Slices[0]
	if *s.MinTemperatureC != 15 || *s.MaxTemperatureC != 22 || s.TemperatureC != 18.5 {
		t.Errorf("derived daily = min %v max %v temp %v, want 15/22/18.5",
			*s.MinTemperatureC, *s.MaxTemperatureC, s.TemperatureC)
	}
}

func TestNormalizeForecastPrefersNativeDaily(t *testing.T) {
	dt := time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC).Unix()
	daily := []owm.Daily{
		{
			Dt: i64(dt),
			Temp: &owm.DailyTemp{
				Day: f64(17),
				Min: f64(9),
				Max: f64(21),
			},
			Pop:       f64(0.35),
			WindSpeed: f64(10),
			Weather: []owm.WeatherEntry{
				{ID: 803, Main: "Clouds", Description: "broken clouds"},
			},
		},
	}

	timelines, err := NormalizeForecast(forecastBundle(nil, daily), testLocation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tl := timelineByGranularity(t, timelines, GranularityDaily)
	if len(tl.Slices) != 1 {
		t.Fatalf("expected 1 native daily slice, got %d", len(tl.Slices))
	}
	s := tl.Slices[0]
	if s.TemperatureC != 17 || *s.MinTemperatureC != 9 || *s.MaxTemperatureC != 21 {
		t.Errorf("native daily slice not mapped: %+v", s)
	}
	if s.PrecipProbabilityPct == nil || *s.PrecipProbabilityPct != 35 {
		t.Errorf("pop = %v, want 0.35 scaled to 35", s.PrecipProbabilityPct)
	}
	if s.WindSpeedKmh == nil || *s.WindSpeedKmh != 36 {
		t.Errorf("wind = %v, want 10 m/s converted to 36 km/h", s.WindSpeedKmh)
	}
}

func TestNormalizeForecastClampsPrecipProbability(t *testing.T) {
	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC).Unix()
	entry := hourlyEntry(base, 12)
	entry.Pop = f64(1.4)

	timelines, err := NormalizeForecast(forecastBundle([]owm.Hourly{entry}, nil), testLocation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fine := timelineByGranularity(t, timelines, GranularityFine)
	if got := *fine.Slices[0].PrecipProbabilityPct; got != 100 {
		t.Errorf("pop clamped to %v, want 100", got)
	}
	if fine.DataQuality == nil || !hasFlag(fine.DataQuality.Flags, QualityOutOfRange) {
		t.Errorf("expected OUT_OF_RANGE flag after clamping, got %+v", fine.DataQuality)
	}
}

func TestNormalizeForecastSkipsUnusableEntries(t *testing.T) {
	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC).Unix()
	broken := owm.Hourly{Dt: i64(base + 3*3600)} // no temperature
	hourly := []owm.Hourly{
		hourlyEntry(base, 12),
		{}, // skipped by stride anyway
		{},
		broken,
		{},
		{},
		hourlyEntry(base+6*3600, 14),
	}

	timelines, err := NormalizeForecast(forecastBundle(hourly, nil), testLocation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fine := timelineByGranularity(t, timelines, GranularityFine)
	if len(fine.Slices) != 2 {
		t.Fatalf("expected 2 usable fine slices, got %d", len(fine.Slices))
	}
	if fine.DataQuality == nil || !hasFlag(fine.DataQuality.Flags, QualityPartial) {
		t.Errorf("expected PARTIAL flag for skipped entries, got %+v", fine.DataQuality)
	}
}

func TestNormalizeForecastEmptyInput(t *testing.T) {
	timelines, err := NormalizeForecast(forecastBundle(nil, nil), testLocation)
	if err != nil {
		t.Fatalf("empty forecast input must not fail: %v", err)
	}
	if len(timelines) != 0 {
		t.Errorf("expected no timelines, got %d", len(timelines))
	}
}

func TestNormalizeForecastNothingUsableIsContractError(t *testing.T) {
	hourly := []owm.Hourly{{}, {}, {}}
	_, err := NormalizeForecast(forecastBundle(hourly, nil), testLocation)
	expectContract(t, err, "no usable")
}

func TestNormalizeForecastMissingCoordinates(t *testing.T) {
	b := forecastBundle([]owm.Hourly{hourlyEntry(1764500400, 10)}, nil)
	b.Lon = nil
	_, err := NormalizeForecast(b, testLocation)
	expectContract(t, err, "coordinates")
}
