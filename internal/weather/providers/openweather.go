// Package providers contains raw HTTP clients for weather providers. Clients
// classify transport and HTTP failures into the typed error taxonomy and
// deserialize into provider-shaped structs; they carry no domain knowledge
// and never retry. Retry and backoff policy belongs to the resilience layer.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avasiliev/weathercache/internal/weather"
	"github.com/avasiliev/weathercache/internal/weather/owm"
)

const defaultOneCallURL = "https://api.openweathermap.org/data/3.0/onecall"

// OpenWeatherClient fetches the One Call 3.0 bundle: current conditions,
// hourly and daily series, and alerts in a single document.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	units   string
	lang    string
	client  *http.Client
}

// NewOpenWeatherClient creates a client. A nil http.Client falls back to a
// client with a 10 second timeout; empty units default to metric.
func NewOpenWeatherClient(client *http.Client, apiKey, units, lang string) *OpenWeatherClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if units == "" {
		units = "metric"
	}
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: defaultOneCallURL,
		units:   units,
		lang:    lang,
		client:  client,
	}
}

// SetBaseURL overrides the provider endpoint; used by tests.
func (c *OpenWeatherClient) SetBaseURL(u string) {
	c.baseURL = u
}

func (c *OpenWeatherClient) buildURL(loc weather.Location) string {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
	values.Set("appid", c.apiKey)
	values.Set("units", c.units)
	if c.lang != "" {
		values.Set("lang", c.lang)
	}
	return fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
}

// FetchRawBundle performs one provider round trip and returns the raw
// document. Failures come back as *weather.Error with the most specific kind
// observable at this boundary.
func (c *OpenWeatherClient) FetchRawBundle(ctx context.Context, loc weather.Location) (*owm.Bundle, error) {
	if c.apiKey == "" {
		return nil, weather.NewError(weather.ErrConfig, "openweather api key is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(loc), nil)
	if err != nil {
		return nil, weather.NewError(weather.ErrUnknown, "building request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, weather.NewError(weather.ErrNetwork, "calling openweather one call endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp)
	}

	var payload owm.Bundle
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, weather.ContractError("invalid JSON from openweather one call endpoint: %v", err)
	}
	return &payload, nil
}

func classifyStatus(resp *http.Response) *weather.Error {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		werr := weather.NewError(weather.ErrRateLimit, "openweather rate limit exceeded")
		werr.StatusCode = resp.StatusCode
		werr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		return werr
	case http.StatusUnauthorized, http.StatusForbidden:
		werr := weather.NewError(weather.ErrConfig,
			"openweather rejected the api key (status %d)", resp.StatusCode)
		werr.StatusCode = resp.StatusCode
		return werr
	default:
		werr := weather.NewError(weather.ErrHTTP,
			"openweather HTTP error: %d", resp.StatusCode)
		werr.StatusCode = resp.StatusCode
		return werr
	}
}

// parseRetryAfter reads a Retry-After header in delta-seconds form. Zero
// means no usable hint.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
