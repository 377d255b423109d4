package weather

import (
	"math"
	"time"

	"github.com/avasiliev/weathercache/internal/common"
	"github.com/avasiliev/weathercache/internal/weather/owm"
)

// Plausibility bounds for temperatures, a defense against corrupted payloads.
const (
	minReasonableTempC = -90.0
	maxReasonableTempC = 60.0
)

const (
	providerName    = "openweather"
	providerVersion = "3.0"
)

// mpsToKmh is the single conversion point for provider wind speeds (m/s) into
// the domain unit (km/h). Both the current and forecast paths go through it.
func mpsToKmh(metersPerSecond float64) float64 {
	return metersPerSecond * 3.6
}

func unixToUTC(unixSeconds int64) time.Time {
	return time.Unix(unixSeconds, 0).UTC()
}

func buildProviderMetadata() ProviderMetadata {
	return ProviderMetadata{
		ProviderName:    providerName,
		ProviderVersion: providerVersion,
		FetchedAt:       time.Now().UTC(),
	}
}

// validateEnvelope checks the fields shared by every One Call document.
func validateEnvelope(raw *owm.Bundle) *Error {
	if raw == nil {
		return ContractError("invalid payload: expected non-null object")
	}
	if raw.Lat == nil || raw.Lon == nil || math.IsNaN(*raw.Lat) || math.IsNaN(*raw.Lon) {
		return ContractError("invalid payload: missing or invalid coordinates")
	}
	return nil
}

// envelopeLocation merges payload coordinates and timezone into the requested
// location. Caller-supplied identity (id, name, country) is kept so the cache
// key derivation stays in the caller's hands.
func envelopeLocation(raw *owm.Bundle, requested Location) Location {
	loc := requested
	loc.Lat = *raw.Lat
	loc.Lon = *raw.Lon
	if raw.Timezone != "" {
		loc.Timezone = raw.Timezone
	}
	return loc
}

func conditionFrom(entries []owm.WeatherEntry) (Condition, string) {
	if len(entries) == 0 {
		return ConditionUnknown, "Unknown"
	}
	primary := entries[0]
	label := primary.Description
	if label == "" {
		label = primary.Main
	}
	return ClassifyCondition(primary.ID, primary.Main), common.Capitalize(label)
}

// NormalizeCurrent validates a raw One Call document and produces the
// normalized current conditions. It fails with a contract error naming the
// first violated field when the entity cannot be constructed at all; lesser
// gaps are recorded as data-quality flags instead.
func NormalizeCurrent(raw *owm.Bundle, requested Location) (CurrentConditions, error) {
	if err := validateEnvelope(raw); err != nil {
		return CurrentConditions{}, err
	}
	cur := raw.Current
	if cur == nil {
		return CurrentConditions{}, ContractError("invalid payload: missing current block")
	}
	if cur.Dt == nil {
		return CurrentConditions{}, ContractError(`invalid payload: missing or invalid field "current.dt"`)
	}
	if cur.Temp == nil || math.IsNaN(*cur.Temp) {
		return CurrentConditions{}, ContractError(`invalid payload: missing or invalid field "current.temp"`)
	}
	if *cur.Temp < minReasonableTempC || *cur.Temp > maxReasonableTempC {
		return CurrentConditions{}, ContractError(
			`invalid payload: field "current.temp" outside plausible range (%.1f)`, *cur.Temp)
	}

	cond, label := conditionFrom(cur.Weather)

	var flags []DataQualityFlag
	if len(cur.Weather) == 0 || cur.Humidity == nil || cur.Pressure == nil || cur.WindSpeed == nil {
		flags = append(flags, QualityMissingOptional)
	}
	if cur.Humidity != nil && (*cur.Humidity < 0 || *cur.Humidity > 100) {
		flags = append(flags, QualityOutOfRange)
	}

	out := CurrentConditions{
		Location:       envelopeLocation(raw, requested),
		ObservedAt:     unixToUTC(*cur.Dt),
		TemperatureC:   *cur.Temp,
		FeelsLikeC:     cur.FeelsLike,
		Condition:      cond,
		ConditionLabel: label,
		HumidityPct:    cur.Humidity,
		PressureHpa:    cur.Pressure,
		Provider:       buildProviderMetadata(),
	}
	if cur.WindSpeed != nil {
		kmh := mpsToKmh(*cur.WindSpeed)
		out.WindSpeedKmh = &kmh
	}
	out.WindDirectionDeg = cur.WindDeg
	out.CloudCoverPct = cur.Clouds
	out.VisibilityM = cur.Visibility
	if cur.Rain != nil && cur.Rain.OneHour != nil {
		out.PrecipLastHourMm = cur.Rain.OneHour
	} else if cur.Snow != nil && cur.Snow.OneHour != nil {
		out.PrecipLastHourMm = cur.Snow.OneHour
	}
	if len(flags) > 0 {
		out.DataQuality = &DataQuality{
			Flags:   flags,
			Message: "current conditions have missing optional fields",
		}
	}
	return out, nil
}
