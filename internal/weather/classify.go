package weather

import (
	"strings"

	"github.com/avasiliev/weathercache/internal/common"
)

// ClassifyCondition maps an OpenWeather condition code and main text to the
// closed Condition enum. The numeric code bands are the primary signal; the
// text is a fallback for absent or unrecognized codes. Total: unknown input
// always yields ConditionUnknown.
func ClassifyCondition(code int, mainText string) Condition {
	switch {
	case code >= 200 && code < 300:
		return ConditionStorm
	case code >= 300 && code < 400:
		return ConditionDrizzle
	case code >= 500 && code < 600:
		return ConditionRain
	case code >= 600 && code < 700:
		return ConditionSnow
	case code >= 700 && code < 800:
		return ConditionFog
	case code == 800:
		return ConditionClear
	case code > 800 && code < 900:
		return ConditionCloudy
	}

	text := strings.ToLower(mainText)
	switch {
	case common.HasAny(text, "drizzle"):
		return ConditionDrizzle
	case common.HasAny(text, "rain"):
		return ConditionRain
	case common.HasAny(text, "snow"):
		return ConditionSnow
	case common.HasAny(text, "storm", "thunder"):
		return ConditionStorm
	}

	return ConditionUnknown
}
