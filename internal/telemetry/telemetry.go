// Package telemetry carries structured observability events out of the fetch
// pipeline. Sinks are injected at construction time, never set through
// globals. Event locations are coarsened to two decimals before emission so
// sinks never see precise coordinates.
package telemetry

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Event is the common shape of a provider-request event.
type Event struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Operation string    `json:"operation"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Location  string    `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SuccessEvent reports a completed provider request.
type SuccessEvent struct {
	Event
	Duration time.Duration `json:"durationMs"`
}

// ErrorEvent reports a failed provider request.
type ErrorEvent struct {
	Event
	Duration   time.Duration `json:"durationMs"`
	ErrorKind  string        `json:"errorKind"`
	Message    string        `json:"message"`
	StatusCode int           `json:"statusCode,omitempty"`
}

// DegradedEvent reports data that arrived but could not be fully used.
type DegradedEvent struct {
	Provider  string    `json:"provider"`
	Operation string    `json:"operation"`
	Aspect    string    `json:"aspect"` // forecast_fine, forecast_daily, alerts
	Reason    string    `json:"reason"`
	HadInput  bool      `json:"hadInput"`
	HasOutput bool      `json:"hasOutput"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives telemetry events. Implementations must be safe for
// concurrent use.
type Sink interface {
	RequestStarted(e Event)
	RequestSucceeded(e SuccessEvent)
	RequestFailed(e ErrorEvent)
	DataDegraded(e DegradedEvent)
}

// CoarseCoord rounds a coordinate to two decimals (~1 km) for telemetry.
func CoarseCoord(v float64) float64 {
	return math.Round(v*100) / 100
}

// NewEvent builds a request event with a fresh id and coarsened coordinates.
func NewEvent(provider, operation string, lat, lon float64, locationName string) Event {
	return Event{
		ID:        uuid.NewString(),
		Provider:  provider,
		Operation: operation,
		Lat:       CoarseCoord(lat),
		Lon:       CoarseCoord(lon),
		Location:  locationName,
		Timestamp: time.Now().UTC(),
	}
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RequestStarted(Event)          {}
func (NopSink) RequestSucceeded(SuccessEvent) {}
func (NopSink) RequestFailed(ErrorEvent)      {}
func (NopSink) DataDegraded(DegradedEvent)    {}

// MultiSink fans events out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) RequestStarted(e Event) {
	for _, s := range m {
		s.RequestStarted(e)
	}
}

func (m MultiSink) RequestSucceeded(e SuccessEvent) {
	for _, s := range m {
		s.RequestSucceeded(e)
	}
}

func (m MultiSink) RequestFailed(e ErrorEvent) {
	for _, s := range m {
		s.RequestFailed(e)
	}
}

func (m MultiSink) DataDegraded(e DegradedEvent) {
	for _, s := range m {
		s.DataDegraded(e)
	}
}
