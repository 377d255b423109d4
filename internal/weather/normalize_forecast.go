package weather

import (
	"math"

	"github.com/avasiliev/weathercache/internal/weather/owm"
)

// fineStepHours is the downsampling stride applied to the provider's hourly
// series to produce the "fine" (3-hour) timeline.
const fineStepHours = 3

// NormalizeForecast validates a raw One Call document and produces up to two
// timelines: a fine-grained one downsampled from the hourly series and a
// daily one, mapped natively when the provider supplies a daily series and
// otherwise derived from the fine slices via AggregateDaily. An empty input
// yields no timelines and no error; input that exists but produces nothing
// usable is a contract violation.
func NormalizeForecast(raw *owm.Bundle, requested Location) ([]ForecastTimeline, error) {
	if err := validateEnvelope(raw); err != nil {
		return nil, err
	}

	loc := envelopeLocation(raw, requested)
	meta := buildProviderMetadata()
	timelines := make([]ForecastTimeline, 0, 2)

	fine, fineQuality := mapFineSlices(raw.Hourly)
	if len(fine) > 0 {
		timelines = append(timelines, ForecastTimeline{
			Location:    loc,
			Granularity: GranularityFine,
			Slices:      fine,
			Provider:    meta,
			DataQuality: fineQuality,
		})
	}

	var daily []ForecastSlice
	var dailyQuality *DataQuality
	if len(raw.Daily) > 0 {
		daily, dailyQuality = mapDailySlices(raw.Daily)
	} else {
		daily = AggregateDaily(fine)
	}
	if len(daily) > 0 {
		timelines = append(timelines, ForecastTimeline{
			Location:    loc,
			Granularity: GranularityDaily,
			Slices:      daily,
			Provider:    meta,
			DataQuality: dailyQuality,
		})
	}

	if len(timelines) == 0 && (len(raw.Hourly) > 0 || len(raw.Daily) > 0) {
		return nil, ContractError("invalid payload: no usable hourly or daily forecast data")
	}
	return timelines, nil
}

// mapFineSlices downsamples the hourly series to 3-hour steps and normalizes
// each usable entry. Skipped entries surface as a PARTIAL quality flag rather
// than failing the whole timeline.
func mapFineSlices(hourly []owm.Hourly) ([]ForecastSlice, *DataQuality) {
	if len(hourly) == 0 {
		return nil, nil
	}

	var flags []DataQualityFlag
	skipped := false
	clamped := false

	slices := make([]ForecastSlice, 0, (len(hourly)+fineStepHours-1)/fineStepHours)
	for i, entry := range hourly {
		if i%fineStepHours != 0 {
			continue
		}
		if entry.Dt == nil || entry.Temp == nil || math.IsNaN(*entry.Temp) {
			skipped = true
			continue
		}

		cond, label := conditionFrom(entry.Weather)
		s := ForecastSlice{
			Timestamp:      unixToUTC(*entry.Dt),
			TemperatureC:   *entry.Temp,
			FeelsLikeC:     entry.FeelsLike,
			Condition:      cond,
			ConditionLabel: label,
		}
		if pct, wasClamped, ok := popToPct(entry.Pop); ok {
			s.PrecipProbabilityPct = &pct
			clamped = clamped || wasClamped
		}
		if entry.WindSpeed != nil {
			kmh := mpsToKmh(*entry.WindSpeed)
			s.WindSpeedKmh = &kmh
		}
		s.WindDirectionDeg = entry.WindDeg
		slices = append(slices, s)
	}

	if skipped {
		flags = append(flags, QualityPartial)
	}
	if clamped {
		flags = append(flags, QualityOutOfRange)
	}
	if len(flags) > 0 {
		return slices, &DataQuality{
			Flags:   flags,
			Message: "some hourly forecast entries were unusable or clamped",
		}
	}
	return slices, nil
}

func mapDailySlices(daily []owm.Daily) ([]ForecastSlice, *DataQuality) {
	var flags []DataQualityFlag
	skipped := false
	clamped := false

	slices := make([]ForecastSlice, 0, len(daily))
	for _, entry := range daily {
		if entry.Dt == nil || entry.Temp == nil || entry.Temp.Day == nil || math.IsNaN(*entry.Temp.Day) {
			skipped = true
			continue
		}

		cond, label := conditionFrom(entry.Weather)
		s := ForecastSlice{
			Timestamp:       unixToUTC(*entry.Dt),
			TemperatureC:    *entry.Temp.Day,
			Condition:       cond,
			ConditionLabel:  label,
			MinTemperatureC: entry.Temp.Min,
			MaxTemperatureC: entry.Temp.Max,
		}
		if entry.FeelsLike != nil {
			s.FeelsLikeC = entry.FeelsLike.Day
		}
		if pct, wasClamped, ok := popToPct(entry.Pop); ok {
			s.PrecipProbabilityPct = &pct
			clamped = clamped || wasClamped
		}
		if entry.WindSpeed != nil {
			kmh := mpsToKmh(*entry.WindSpeed)
			s.WindSpeedKmh = &kmh
		}
		s.WindDirectionDeg = entry.WindDeg
		slices = append(slices, s)
	}

	if skipped {
		flags = append(flags, QualityPartial)
	}
	if clamped {
		flags = append(flags, QualityOutOfRange)
	}
	if len(flags) > 0 {
		return slices, &DataQuality{
			Flags:   flags,
			Message: "some daily forecast entries were unusable or clamped",
		}
	}
	return slices, nil
}

// popToPct converts the provider's 0..1 precipitation probability to a 0-100
// percentage, clamping out-of-range values.
func popToPct(pop *float64) (pct float64, clamped bool, ok bool) {
	if pop == nil || math.IsNaN(*pop) {
		return 0, false, false
	}
	pct = *pop * 100
	if pct < 0 {
		return 0, true, true
	}
	if pct > 100 {
		return 100, true, true
	}
	return pct, false, true
}
