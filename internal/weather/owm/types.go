// Package owm holds the raw, provider-shaped structures of the OpenWeather
// One Call 3.0 response. Optional and possibly-absent fields are pointers so
// the normalizer can tell "missing" from zero. No behavior lives here.
package owm

// WeatherEntry is one element of a "weather" array.
type WeatherEntry struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Precip carries accumulated precipitation volumes.
type Precip struct {
	OneHour *float64 `json:"1h"`
}

// Current is the "current" block.
type Current struct {
	Dt         *int64         `json:"dt"`
	Temp       *float64       `json:"temp"`
	FeelsLike  *float64       `json:"feels_like"`
	Humidity   *float64       `json:"humidity"`
	Pressure   *float64       `json:"pressure"`
	WindSpeed  *float64       `json:"wind_speed"`
	WindDeg    *float64       `json:"wind_deg"`
	Clouds     *float64       `json:"clouds"`
	Visibility *float64       `json:"visibility"`
	Rain       *Precip        `json:"rain"`
	Snow       *Precip        `json:"snow"`
	Weather    []WeatherEntry `json:"weather"`
}

// Hourly is one entry of the "hourly" array.
type Hourly struct {
	Dt        *int64         `json:"dt"`
	Temp      *float64       `json:"temp"`
	FeelsLike *float64       `json:"feels_like"`
	Pop       *float64       `json:"pop"` // probability of precipitation, 0..1
	WindSpeed *float64       `json:"wind_speed"`
	WindDeg   *float64       `json:"wind_deg"`
	Weather   []WeatherEntry `json:"weather"`
}

// DailyTemp is the per-day temperature block.
type DailyTemp struct {
	Day *float64 `json:"day"`
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// DailyFeels is the per-day feels-like block.
type DailyFeels struct {
	Day *float64 `json:"day"`
}

// Daily is one entry of the "daily" array.
type Daily struct {
	Dt        *int64         `json:"dt"`
	Temp      *DailyTemp     `json:"temp"`
	FeelsLike *DailyFeels    `json:"feels_like"`
	Pop       *float64       `json:"pop"`
	WindSpeed *float64       `json:"wind_speed"`
	WindDeg   *float64       `json:"wind_deg"`
	Weather   []WeatherEntry `json:"weather"`
}

// AlertEntry is one entry of the "alerts" array.
type AlertEntry struct {
	SenderName  string   `json:"sender_name"`
	Event       string   `json:"event"`
	Start       *int64   `json:"start"`
	End         *int64   `json:"end"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Bundle is the full One Call 3.0 document.
type Bundle struct {
	Lat      *float64     `json:"lat"`
	Lon      *float64     `json:"lon"`
	Timezone string       `json:"timezone"`
	Current  *Current     `json:"current"`
	Hourly   []Hourly     `json:"hourly"`
	Daily    []Daily      `json:"daily"`
	Alerts   []AlertEntry `json:"alerts"`
}
