// Package cache implements the location-keyed weather resource cache. It
// owns three resource slots per location key (current, forecast, alerts),
// coalesces concurrent requests into one provider fetch per key, applies a
// TTL freshness policy, and refreshes stale-while-revalidate so previously
// shown data is never blanked by a failure.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/avasiliev/weathercache/internal/weather"
)

// Status is the lifecycle state of one resource slot.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Resource is one cache slot. Data from a prior success is never cleared by
// a later failure; a slot that has shown data once refreshes with Refreshing
// set instead of dropping back to loading.
type Resource[T any] struct {
	Status        Status         `json:"status"`
	Data          T              `json:"data,omitempty"`
	Err           *weather.Error `json:"error,omitempty"`
	LastUpdatedAt time.Time      `json:"lastUpdatedAt,omitzero"`
	Refreshing    bool           `json:"isRefreshing"`
}

type flight struct {
	done chan struct{}
	err  error
}

// Cache is the shared in-process weather cache. All mutations of the slot
// maps and the in-flight registry happen under one mutex, so no reader ever
// observes a half-updated triple.
type Cache struct {
	mu sync.Mutex

	fetcher      weather.BundleFetcher
	ttl          time.Duration
	maxLocations int // 0 = unbounded
	now          func() time.Time

	current  map[string]*Resource[*weather.CurrentConditions]
	forecast map[string]*Resource[[]weather.ForecastTimeline]
	alerts   map[string]*Resource[[]weather.WeatherAlert]

	inflight map[string]*flight
	gen      map[string]uint64
}

// New creates a Cache. ttl bounds bundle freshness; maxLocations, when
// positive, bounds the number of cached location keys (the key with the
// oldest update is evicted first).
func New(fetcher weather.BundleFetcher, ttl time.Duration, maxLocations int) *Cache {
	return &Cache{
		fetcher:      fetcher,
		ttl:          ttl,
		maxLocations: maxLocations,
		now:          time.Now,
		current:      make(map[string]*Resource[*weather.CurrentConditions]),
		forecast:     make(map[string]*Resource[[]weather.ForecastTimeline]),
		alerts:       make(map[string]*Resource[[]weather.WeatherAlert]),
		inflight:     make(map[string]*flight),
		gen:          make(map[string]uint64),
	}
}

// EnsureCurrent makes the current-conditions slot for loc fresh. The bundle
// is fetched as a whole, so one Ensure call freshens all three kinds.
func (c *Cache) EnsureCurrent(ctx context.Context, loc weather.Location) error {
	return c.ensureBundle(ctx, loc)
}

// EnsureForecast makes the forecast slot for loc fresh.
func (c *Cache) EnsureForecast(ctx context.Context, loc weather.Location) error {
	return c.ensureBundle(ctx, loc)
}

// EnsureAlerts makes the alerts slot for loc fresh.
func (c *Cache) EnsureAlerts(ctx context.Context, loc weather.Location) error {
	return c.ensureBundle(ctx, loc)
}

// ensureBundle is idempotent: a fresh slot returns immediately, an in-flight
// fetch for the same key is awaited and shared, and otherwise exactly one
// combined fetch runs for the key.
func (c *Cache) ensureBundle(ctx context.Context, loc weather.Location) error {
	key := loc.Key()

	c.mu.Lock()
	if res, ok := c.current[key]; ok &&
		res.Status == StatusSuccess &&
		c.now().Sub(res.LastUpdatedAt) < c.ttl {
		c.mu.Unlock()
		return nil
	}

	if fl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-fl.done:
			return fl.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	fl := &flight{done: make(chan struct{})}
	c.inflight[key] = fl
	c.gen[key]++
	stamp := c.gen[key]
	c.markFetchingLocked(key)
	c.mu.Unlock()

	bundle, err := c.fetcher.FetchBundle(ctx, loc)

	c.mu.Lock()
	delete(c.inflight, key)
	if err != nil {
		fl.err = weather.Classify(err)
	}
	// A fetch that lost its stamp settled after a newer one took over the
	// key; its result must not clobber the newer state.
	if c.gen[key] == stamp {
		if err != nil {
			c.applyErrorLocked(key, weather.Classify(err))
		} else {
			c.applySuccessLocked(key, bundle)
		}
	}
	c.mu.Unlock()
	close(fl.done)
	return fl.err
}

// markFetchingLocked transitions all three slots for key into their fetching
// state: loading when the slot has never held data, otherwise success with
// Refreshing set and the previous data retained.
func (c *Cache) markFetchingLocked(key string) {
	refreshing := hasData(c.current, key) || hasData(c.forecast, key) || hasData(c.alerts, key)
	markSlot(c.current, key, refreshing)
	markSlot(c.forecast, key, refreshing)
	markSlot(c.alerts, key, refreshing)
}

func (c *Cache) applySuccessLocked(key string, bundle weather.Bundle) {
	ts := c.now().UTC()
	current := bundle.Current
	setSlot(c.current, key, &Resource[*weather.CurrentConditions]{
		Status:        StatusSuccess,
		Data:          &current,
		LastUpdatedAt: ts,
	})
	setSlot(c.forecast, key, &Resource[[]weather.ForecastTimeline]{
		Status:        StatusSuccess,
		Data:          bundle.Forecasts,
		LastUpdatedAt: ts,
	})
	setSlot(c.alerts, key, &Resource[[]weather.WeatherAlert]{
		Status:        StatusSuccess,
		Data:          bundle.Alerts,
		LastUpdatedAt: ts,
	})
	c.evictLocked()
}

func (c *Cache) applyErrorLocked(key string, werr *weather.Error) {
	ts := c.now().UTC()
	failSlot(c.current, key, werr, ts)
	failSlot(c.forecast, key, werr, ts)
	failSlot(c.alerts, key, werr, ts)
}

// evictLocked drops the least recently updated location keys until the bound
// holds again. Keys with a fetch in flight are never evicted.
func (c *Cache) evictLocked() {
	if c.maxLocations <= 0 {
		return
	}
	for len(c.current) > c.maxLocations {
		victim := ""
		var oldest time.Time
		for key, res := range c.current {
			if _, busy := c.inflight[key]; busy {
				continue
			}
			if victim == "" || res.LastUpdatedAt.Before(oldest) {
				victim = key
				oldest = res.LastUpdatedAt
			}
		}
		if victim == "" {
			return
		}
		delete(c.current, victim)
		delete(c.forecast, victim)
		delete(c.alerts, victim)
		delete(c.gen, victim)
	}
}

// Current returns the current-conditions slot for key without fetching.
// An absent key reads as idle.
func (c *Cache) Current(key string) Resource[*weather.CurrentConditions] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readSlot(c.current, key)
}

// Forecast returns the forecast slot for key without fetching.
func (c *Cache) Forecast(key string) Resource[[]weather.ForecastTimeline] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readSlot(c.forecast, key)
}

// Alerts returns the alerts slot for key without fetching.
func (c *Cache) Alerts(key string) Resource[[]weather.WeatherAlert] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readSlot(c.alerts, key)
}

// ClearCurrent removes the current-conditions slot for key.
func (c *Cache) ClearCurrent(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.current, key)
}

// ClearForecast removes the forecast slot for key.
func (c *Cache) ClearForecast(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.forecast, key)
}

// ClearAlerts removes the alerts slot for key.
func (c *Cache) ClearAlerts(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.alerts, key)
}

// ---- generic slot helpers ----

func hasData[T any](m map[string]*Resource[T], key string) bool {
	if r, ok := m[key]; ok {
		return !isZeroData(r)
	}
	return false
}

// isZeroData reports whether the slot's Data is absent. All instantiations
// use nilable data types (pointer or slice), so a nil comparison through the
// any interface is sufficient.
func isZeroData[T any](r *Resource[T]) bool {
	switch v := any(r.Data).(type) {
	case *weather.CurrentConditions:
		return v == nil
	case []weather.ForecastTimeline:
		return v == nil
	case []weather.WeatherAlert:
		return v == nil
	default:
		return true
	}
}

func markSlot[T any](m map[string]*Resource[T], key string, refreshing bool) {
	prev, ok := m[key]
	if !ok {
		prev = &Resource[T]{}
	}
	next := &Resource[T]{
		Data:          prev.Data,
		LastUpdatedAt: prev.LastUpdatedAt,
		Refreshing:    refreshing,
	}
	if refreshing {
		next.Status = StatusSuccess
	} else {
		next.Status = StatusLoading
	}
	m[key] = next
}

func setSlot[T any](m map[string]*Resource[T], key string, next *Resource[T]) {
	m[key] = next
}

func failSlot[T any](m map[string]*Resource[T], key string, werr *weather.Error, ts time.Time) {
	prev, ok := m[key]
	if !ok {
		prev = &Resource[T]{}
	}
	m[key] = &Resource[T]{
		Status:        StatusError,
		Data:          prev.Data,
		Err:           werr,
		LastUpdatedAt: ts,
	}
}

func readSlot[T any](m map[string]*Resource[T], key string) Resource[T] {
	if r, ok := m[key]; ok {
		return *r
	}
	return Resource[T]{Status: StatusIdle}
}
