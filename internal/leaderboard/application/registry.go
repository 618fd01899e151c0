package application

import (
	"context"
	"log"
	"sync"
	"time"
)

// SchedulerRegistry lazily creates one scheduler per location and routes
// change notifications to them. Schedulers for different locations run
// independently, each computing its day window in the location's own
// timezone.
type SchedulerRegistry struct {
	tracker      *Tracker
	aggregator   *Aggregator
	locations    LocationRepository
	timezone     *time.Location
	debounce     time.Duration
	queryTimeout time.Duration
	logger       *log.Logger

	mu         sync.Mutex
	schedulers map[string]*Scheduler
}

// NewSchedulerRegistry creates an empty registry sharing one tracker and
// aggregator across all locations. The timezone is the fallback for
// locations that configure none of their own.
func NewSchedulerRegistry(tracker *Tracker, aggregator *Aggregator, locations LocationRepository, timezone *time.Location, debounce, queryTimeout time.Duration, logger *log.Logger) *SchedulerRegistry {
	return &SchedulerRegistry{
		tracker:      tracker,
		aggregator:   aggregator,
		locations:    locations,
		timezone:     timezone,
		debounce:     debounce,
		queryTimeout: queryTimeout,
		logger:       logger,
		schedulers:   make(map[string]*Scheduler),
	}
}

// For returns the location's scheduler, creating it (and its initial
// recompute) on first use. The timezone lookup happens outside the lock;
// a racing second creation loses and is discarded.
func (r *SchedulerRegistry) For(locationID string) *Scheduler {
	r.mu.Lock()
	if s, ok := r.schedulers[locationID]; ok {
		r.mu.Unlock()
		return s
	}
	r.mu.Unlock()

	zone := r.zoneFor(locationID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.schedulers[locationID]; ok {
		return s
	}
	s := NewScheduler(SchedulerConfig{
		LocationID:   locationID,
		Tracker:      r.tracker,
		Aggregator:   r.aggregator,
		Timezone:     zone,
		Debounce:     r.debounce,
		QueryTimeout: r.queryTimeout,
		Logger:       r.logger,
	})
	r.schedulers[locationID] = s
	return s
}

// zoneFor resolves the location's configured timezone, falling back to the
// registry default when the location is unknown, has no zone, or names one
// the host cannot load.
func (r *SchedulerRegistry) zoneFor(locationID string) *time.Location {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout)
	defer cancel()

	location, err := r.locations.FindByID(ctx, locationID)
	if err != nil || location.Timezone == "" {
		return r.timezone
	}
	zone, err := time.LoadLocation(location.Timezone)
	if err != nil {
		r.logger.Printf("location %s: timezone %s could not be loaded: %v", locationID, location.Timezone, err)
		return r.timezone
	}
	return zone
}

// Notify forwards a change notification to the affected location, or to all
// known locations when the event carries no location (e.g. a delete without
// an after-image). Redundant notifications are cheap; missed ones are not.
func (r *SchedulerRegistry) Notify(locationID string) {
	if locationID != "" {
		r.For(locationID).Notify()
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.schedulers {
		s.Notify()
	}
}

// Close shuts down every scheduler.
func (r *SchedulerRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.schedulers {
		s.Close()
		delete(r.schedulers, id)
	}
}
