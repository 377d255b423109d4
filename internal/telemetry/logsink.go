package telemetry

import "log/slog"

// LogSink writes events as structured logs. It is the default sink wired in
// when nothing else is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink. A nil logger falls back to slog.Default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) RequestStarted(e Event) {
	s.logger.Debug("weather request started",
		"event_id", e.ID,
		"provider", e.Provider,
		"operation", e.Operation,
		"lat", e.Lat,
		"lon", e.Lon,
	)
}

func (s *LogSink) RequestSucceeded(e SuccessEvent) {
	s.logger.Info("weather request succeeded",
		"event_id", e.ID,
		"provider", e.Provider,
		"operation", e.Operation,
		"lat", e.Lat,
		"lon", e.Lon,
		"duration_ms", e.Duration.Milliseconds(),
	)
}

func (s *LogSink) RequestFailed(e ErrorEvent) {
	s.logger.Warn("weather request failed",
		"event_id", e.ID,
		"provider", e.Provider,
		"operation", e.Operation,
		"lat", e.Lat,
		"lon", e.Lon,
		"duration_ms", e.Duration.Milliseconds(),
		"error_kind", e.ErrorKind,
		"error", e.Message,
	)
}

func (s *LogSink) DataDegraded(e DegradedEvent) {
	s.logger.Warn("weather data degraded",
		"provider", e.Provider,
		"operation", e.Operation,
		"aspect", e.Aspect,
		"reason", e.Reason,
		"had_input", e.HadInput,
		"has_output", e.HasOutput,
	)
}
