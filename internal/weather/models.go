package weather

import (
	"context"
	"fmt"
	"time"
)

// Condition is the normalized, provider-agnostic weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionDrizzle Condition = "drizzle"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionFog     Condition = "fog"
)

// Location identifies a place weather is tracked for. Lat/Lon are the only
// required fields; ID is an optional stable identifier supplied by the caller
// (e.g. a saved-place id) that keeps two nearby pins in separate cache entries.
type Location struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name,omitempty"`
	CountryCode string  `json:"countryCode,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
}

// Key returns the canonical cache key for this location. Coordinates are
// rounded to three decimals, so two raw locations that round identically
// share one cache entry on purpose.
func (l Location) Key() string {
	if l.ID != "" {
		return fmt.Sprintf("loc:%.3f,%.3f:%s", l.Lat, l.Lon, l.ID)
	}
	return fmt.Sprintf("loc:%.3f,%.3f", l.Lat, l.Lon)
}

// DataQualityFlag marks a payload that was usable but incomplete.
type DataQualityFlag string

const (
	QualityMissingRequired DataQualityFlag = "MISSING_REQUIRED"
	QualityMissingOptional DataQualityFlag = "MISSING_OPTIONAL"
	QualityOutOfRange      DataQualityFlag = "OUT_OF_RANGE"
	QualityPartial         DataQualityFlag = "PARTIAL"
)

// DataQuality describes how a normalized entity was degraded.
type DataQuality struct {
	Flags   []DataQualityFlag `json:"flags"`
	Message string            `json:"message,omitempty"`
}

// ProviderMetadata records which provider a normalized entity came from.
type ProviderMetadata struct {
	ProviderName    string    `json:"providerName"`
	ProviderVersion string    `json:"providerVersion"`
	FetchedAt       time.Time `json:"fetchedAt"`
}

// CurrentConditions is the normalized current-weather view.
// Temperatures are degrees Celsius, wind speeds km/h, pressure hPa.
type CurrentConditions struct {
	Location         Location         `json:"location"`
	ObservedAt       time.Time        `json:"observedAt"`
	TemperatureC     float64          `json:"temperatureC"`
	FeelsLikeC       *float64         `json:"feelsLikeC,omitempty"`
	Condition        Condition        `json:"condition"`
	ConditionLabel   string           `json:"conditionLabel"`
	HumidityPct      *float64         `json:"humidityPct,omitempty"`
	PressureHpa      *float64         `json:"pressureHpa,omitempty"`
	WindSpeedKmh     *float64         `json:"windSpeedKmh,omitempty"`
	WindDirectionDeg *float64         `json:"windDirectionDeg,omitempty"`
	CloudCoverPct    *float64         `json:"cloudCoverPct,omitempty"`
	VisibilityM      *float64         `json:"visibilityM,omitempty"`
	PrecipLastHourMm *float64         `json:"precipLastHourMm,omitempty"`
	Provider         ProviderMetadata `json:"provider"`
	DataQuality      *DataQuality     `json:"dataQuality,omitempty"`
}

// Granularity tags a forecast timeline cadence.
type Granularity string

const (
	GranularityFine  Granularity = "fine" // 3-hour steps
	GranularityDaily Granularity = "daily"
)

// ForecastSlice is one step of a forecast timeline. Min/Max temperatures are
// only populated on daily slices.
type ForecastSlice struct {
	Timestamp            time.Time `json:"timestamp"`
	TemperatureC         float64   `json:"temperatureC"`
	FeelsLikeC           *float64  `json:"feelsLikeC,omitempty"`
	Condition            Condition `json:"condition"`
	ConditionLabel       string    `json:"conditionLabel"`
	PrecipProbabilityPct *float64  `json:"precipProbabilityPct,omitempty"` // 0-100
	WindSpeedKmh         *float64  `json:"windSpeedKmh,omitempty"`
	WindDirectionDeg     *float64  `json:"windDirectionDeg,omitempty"`
	MinTemperatureC      *float64  `json:"minTemperatureC,omitempty"`
	MaxTemperatureC      *float64  `json:"maxTemperatureC,omitempty"`
}

// ForecastTimeline is an ordered run of slices at a single granularity.
// Slices are strictly ascending by timestamp; granularities never mix.
type ForecastTimeline struct {
	Location    Location         `json:"location"`
	Granularity Granularity      `json:"granularity"`
	Slices      []ForecastSlice  `json:"slices"`
	Provider    ProviderMetadata `json:"provider"`
	DataQuality *DataQuality     `json:"dataQuality,omitempty"`
}

// AlertSeverity is the closed severity scale for weather alerts.
type AlertSeverity string

const (
	SeverityMinor    AlertSeverity = "minor"
	SeverityModerate AlertSeverity = "moderate"
	SeveritySevere   AlertSeverity = "severe"
	SeverityExtreme  AlertSeverity = "extreme"
	SeverityUnknown  AlertSeverity = "unknown"
)

// WeatherAlert is a normalized provider alert. ID is deterministic for
// identical provider input so repeated fetches of the same event collapse
// to one list entry.
type WeatherAlert struct {
	ID          string           `json:"id"`
	Location    Location         `json:"location"`
	Category    string           `json:"category,omitempty"`
	Severity    AlertSeverity    `json:"severity"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	StartsAt    *time.Time       `json:"startsAt,omitempty"`
	EndsAt      *time.Time       `json:"endsAt,omitempty"`
	Source      string           `json:"source,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Provider    ProviderMetadata `json:"provider"`
	DataQuality *DataQuality     `json:"dataQuality,omitempty"`
}

// Bundle is the result of one combined provider fetch: all three resource
// kinds for a single location.
type Bundle struct {
	Current   CurrentConditions  `json:"current"`
	Forecasts []ForecastTimeline `json:"forecasts"`
	Alerts    []WeatherAlert     `json:"alerts"`
}

// BundleFetcher produces a normalized Bundle for a location. The cache calls
// it at most once per location per refresh cycle.
type BundleFetcher interface {
	FetchBundle(ctx context.Context, loc Location) (Bundle, error)
}
