package weather

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/avasiliev/weathercache/internal/common"
	"github.com/avasiliev/weathercache/internal/weather/owm"
)

// NormalizeAlerts validates a raw One Call document and produces the
// normalized alert list. A document without alerts is a successful empty
// result. Alert ids are deterministic over the provider input so repeated
// fetches of the same event collapse to one id.
func NormalizeAlerts(raw *owm.Bundle, requested Location) ([]WeatherAlert, error) {
	if err := validateEnvelope(raw); err != nil {
		return nil, err
	}
	if len(raw.Alerts) == 0 {
		return []WeatherAlert{}, nil
	}

	loc := envelopeLocation(raw, requested)
	meta := buildProviderMetadata()

	alerts := make([]WeatherAlert, 0, len(raw.Alerts))
	for i, entry := range raw.Alerts {
		title := strings.TrimSpace(entry.Event)
		if title == "" {
			title = "Weather alert"
		}

		a := WeatherAlert{
			ID:          buildAlertID(*raw.Lat, *raw.Lon, entry, i),
			Location:    loc,
			Category:    inferAlertCategory(entry),
			Severity:    mapAlertSeverity(entry),
			Title:       title,
			Description: strings.TrimSpace(entry.Description),
			Source:      strings.TrimSpace(entry.SenderName),
			Tags:        entry.Tags,
			Provider:    meta,
			DataQuality: alertDataQuality(entry),
		}
		if entry.Start != nil {
			t := unixToUTC(*entry.Start)
			a.StartsAt = &t
		}
		if entry.End != nil {
			t := unixToUTC(*entry.End)
			a.EndsAt = &t
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 40 {
		slug = slug[:40]
	}
	return slug
}

// buildAlertID derives a stable id from rounded coordinates, the event start
// (or list index when absent) and the slugged title.
func buildAlertID(lat, lon float64, entry owm.AlertEntry, index int) string {
	title := strings.TrimSpace(entry.Event)
	if title == "" {
		title = "weather-alert"
	}
	slug := slugify(title)
	if slug == "" {
		slug = fmt.Sprintf("alert-%d", index)
	}

	startPart := fmt.Sprintf("idx-%d", index)
	if entry.Start != nil {
		startPart = fmt.Sprintf("%d", *entry.Start)
	}

	return fmt.Sprintf("owm-alert:%d:%d:%s:%s",
		int(math.Round(lat*1000)), int(math.Round(lon*1000)), startPart, slug)
}

func mapAlertSeverity(entry owm.AlertEntry) AlertSeverity {
	tags := strings.ToLower(strings.Join(entry.Tags, " "))
	title := strings.ToLower(entry.Event)
	description := strings.ToLower(entry.Description)

	switch {
	case common.HasAny(tags, "extreme") ||
		common.HasAny(title, "red") ||
		common.HasAny(description, "red warning"):
		return SeverityExtreme
	case common.HasAny(tags, "severe") ||
		common.HasAny(title, "warning") ||
		common.HasAny(description, "warning"):
		return SeveritySevere
	case common.HasAny(tags, "moderate") || common.HasAny(title, "watch"):
		return SeverityModerate
	case common.HasAny(tags, "minor", "advisory"):
		return SeverityMinor
	}
	return SeverityUnknown
}

func inferAlertCategory(entry owm.AlertEntry) string {
	haystack := strings.ToLower(entry.Event + " " + entry.Description + " " + strings.Join(entry.Tags, " "))

	switch {
	case common.HasAny(haystack, "wind"):
		return "wind"
	case common.HasAny(haystack, "storm", "thunder"):
		return "storm"
	case common.HasAny(haystack, "rain", "flood"):
		return "rain"
	case common.HasAny(haystack, "snow", "ice"):
		return "snow"
	case common.HasAny(haystack, "heat"):
		return "heat"
	case common.HasAny(haystack, "cold", "frost"):
		return "cold"
	case common.HasAny(haystack, "fog"):
		return "fog"
	}
	return ""
}

func alertDataQuality(entry owm.AlertEntry) *DataQuality {
	var flags []DataQualityFlag
	if strings.TrimSpace(entry.Event) == "" {
		flags = append(flags, QualityMissingRequired)
	}
	if strings.TrimSpace(entry.Description) == "" {
		flags = append(flags, QualityMissingOptional)
	}
	if entry.Start == nil || entry.End == nil {
		flags = append(flags, QualityPartial)
	}
	if len(flags) == 0 {
		return nil
	}
	return &DataQuality{
		Flags:   flags,
		Message: "alert has missing or partial fields from provider payload",
	}
}
