// Package scheduler keeps the cache warm for a fixed set of tracked
// locations. It is the collaborator that decides when to call ensure; the
// cache itself never refetches on its own.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/avasiliev/weathercache/internal/resilience"
	"github.com/avasiliev/weathercache/internal/weather"
)

// Scheduler periodically refreshes weather data for configured locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher *resilience.Refresher
	locations []weather.Location
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler.
func New(locations []weather.Location, interval time.Duration, refresher *resilience.Refresher, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		locations: locations,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.logger.Info("scheduler: no tracked locations configured; nothing to schedule")
		return nil
	}

	seconds := int(s.interval.Seconds())
	if seconds <= 0 {
		seconds = int((10 * time.Minute).Seconds())
	}

	_, err := s.scheduler.Every(seconds).Seconds().Do(func() {
		var wg sync.WaitGroup
		for _, loc := range s.locations {
			loc := loc
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := s.refresher.Refresh(ctx, loc); err != nil {
					s.logger.Warn("scheduler: refresh failed",
						"location", loc.Key(), "error", err)
				}
			}()
		}
		wg.Wait()
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
