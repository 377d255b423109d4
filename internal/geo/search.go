// Package geo resolves free-text place queries into locations the weather
// cache can be asked about.
package geo

import (
	"errors"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/avasiliev/weathercache/internal/weather"
)

// ErrNoCredential is returned when no geocoder API key is configured.
var ErrNoCredential = errors.New("geocoder api key not configured")

// ErrNotFound is returned when the query resolves to nothing.
var ErrNotFound = errors.New("no location found for query")

// SearchService geocodes place queries. Queries are either a bare place name
// or "place, country".
type SearchService struct {
	apiKey string
}

// NewSearchService creates a SearchService. An empty key disables search.
func NewSearchService(apiKey string) *SearchService {
	return &SearchService{apiKey: apiKey}
}

// Enabled reports whether a geocoder credential is configured.
func (s *SearchService) Enabled() bool {
	return s.apiKey != ""
}

// Search resolves query into a Location.
func (s *SearchService) Search(query string) (weather.Location, error) {
	if !s.Enabled() {
		return weather.Location{}, ErrNoCredential
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return weather.Location{}, ErrNotFound
	}

	address := geocoder.Address{City: query}
	if city, country, found := strings.Cut(query, ","); found {
		address = geocoder.Address{
			City:    strings.TrimSpace(city),
			Country: strings.TrimSpace(country),
		}
	}

	geocoder.ApiKey = s.apiKey
	resolved, err := geocoder.Geocoding(address)
	if err != nil {
		return weather.Location{}, ErrNotFound
	}

	return weather.Location{
		Lat:  resolved.Latitude,
		Lon:  resolved.Longitude,
		Name: strings.TrimSpace(address.City),
	}, nil
}
